package engine

import (
	"context"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Format is an output module format.
type Format string

const (
	FormatCJS Format = "cjs"
	FormatESM Format = "esm"
)

// Extension is the file extension of JavaScript outputs in this format.
func (f Format) Extension() string {
	if f == FormatCJS {
		return ".cjs"
	}
	return ".mjs"
}

// Loader tells the engine how to parse module contents.
type Loader string

const (
	LoaderJS   Loader = "js"
	LoaderJSX  Loader = "jsx"
	LoaderTS   Loader = "ts"
	LoaderTSX  Loader = "tsx"
	LoaderJSON Loader = "json"
	LoaderCSS  Loader = "css"
	LoaderText Loader = "text"
)

var loadersByExt = map[string]Loader{
	".js":   LoaderJS,
	".mjs":  LoaderJS,
	".cjs":  LoaderJS,
	".jsx":  LoaderJSX,
	".ts":   LoaderTS,
	".mts":  LoaderTS,
	".cts":  LoaderTS,
	".tsx":  LoaderTSX,
	".json": LoaderJSON,
	".css":  LoaderCSS,
	".txt":  LoaderText,
	".md":   LoaderText,
	".htm":  LoaderText,
	".html": LoaderText,
}

// LoaderForPath picks a loader from the file extension; ok is false for
// extensions the pipeline does not handle.
func LoaderForPath(p string) (Loader, bool) {
	l, ok := loadersByExt[strings.ToLower(path.Ext(p))]
	return l, ok
}

// ParseLoader maps a loader name from configuration.
func ParseLoader(name string) (Loader, bool) {
	l := Loader(strings.ToLower(strings.TrimSpace(name)))
	switch l {
	case LoaderJS, LoaderJSX, LoaderTS, LoaderTSX, LoaderJSON, LoaderCSS, LoaderText:
		return l, true
	}
	return "", false
}

func (l Loader) api() api.Loader {
	switch l {
	case LoaderJSX:
		return api.LoaderJSX
	case LoaderTS:
		return api.LoaderTS
	case LoaderTSX:
		return api.LoaderTSX
	case LoaderJSON:
		return api.LoaderJSON
	case LoaderCSS:
		return api.LoaderCSS
	case LoaderText:
		return api.LoaderText
	default:
		return api.LoaderJS
	}
}

// APILoader exposes the esbuild loader for stages that call esbuild directly.
func (l Loader) APILoader() api.Loader { return l.api() }

// Module is a source module on its way through the Transformer hooks.
type Module struct {
	ID      string
	Code    string
	Loader  Loader
	IsEntry bool
}

// ResolveKind says how a module was referenced.
type ResolveKind string

const (
	KindEntryPoint     ResolveKind = "entry-point"
	KindImport         ResolveKind = "import-statement"
	KindRequire        ResolveKind = "require-call"
	KindDynamicImport  ResolveKind = "dynamic-import"
	KindRequireResolve ResolveKind = "require-resolve"
	KindOther          ResolveKind = "other"
)

// ResolveArgs describes one module reference.
type ResolveArgs struct {
	Path       string
	Importer   string
	ResolveDir string
	Kind       ResolveKind
}

// ResolveResult is a Resolver verdict. An external result leaves Path in the output as written.
type ResolveResult struct {
	Path     string
	External bool
}

// ResolveFunc runs the engine's own resolution for a (rewritten) specifier.
type ResolveFunc func(path string, args ResolveArgs) (string, error)

// Stage is a named member of the transform pipeline.
type Stage interface {
	Name() string
}

// Configurer adjusts engine options before compilation.
type Configurer interface {
	Stage
	Configure(opts *api.BuildOptions)
}

// Resolver claims module references. A nil result passes to the next stage.
type Resolver interface {
	Stage
	ResolveID(args ResolveArgs, resolve ResolveFunc) (*ResolveResult, error)
}

// ModuleLoader supplies module contents. A nil module passes to the next stage.
type ModuleLoader interface {
	Stage
	Load(id string) (*Module, error)
}

// Transformer rewrites a loaded module in place.
type Transformer interface {
	Stage
	Transform(m *Module) error
}

// ChunkRenderer rewrites a rendered chunk before it is written.
type ChunkRenderer interface {
	Stage
	RenderChunk(chunk *OutputFile, format Format) error
}

// BundleGenerator may add, replace or drop output files before they are written.
type BundleGenerator interface {
	Stage
	GenerateBundle(ctx context.Context, out *Output, opts OutputOptions) error
}

// BundleWriter runs after the output files are on disk.
type BundleWriter interface {
	Stage
	WriteBundle(dir string, out *Output) error
}

// FileType classifies output files.
type FileType string

const (
	FileChunk FileType = "chunk"
	FileAsset FileType = "asset"
)

// OutputFile is one emitted unit. FileName is relative to the output directory.
type OutputFile struct {
	Type           FileType
	FileName       string
	Name           string
	IsEntry        bool
	FacadeModuleID string
	// Imports lists statically imported chunk file names and external specifiers.
	Imports        []string
	DynamicImports []string
	Exports        []string
	Code           []byte
}

// Output is the result of writing a bundle in one format.
type Output struct {
	Files []OutputFile
}

// Chunks returns pointers to the chunk-type files.
func (o *Output) Chunks() []*OutputFile {
	var out []*OutputFile
	for i := range o.Files {
		if o.Files[i].Type == FileChunk {
			out = append(out, &o.Files[i])
		}
	}
	return out
}

// OutputOptions selects the directory and format of one write.
type OutputOptions struct {
	Dir    string
	Format Format
}

// EntryFileNames is the naming pattern of entry outputs.
func (o OutputOptions) EntryFileNames() string { return "[name]" + o.Format.Extension() }

// Advisory is a non-fatal engine diagnostic.
type Advisory struct {
	Code    string
	Message string
	Plugin  string
	File    string
	Line    int
}

// AdvisoryCircularDependency marks import cycles between bundled modules.
// esbuild does not diagnose cycles; Esbuild.Compile reports them from the
// metafile input graph, one advisory per cycle.
const AdvisoryCircularDependency = "circular-dependency"

// Config is everything one compilation needs.
type Config struct {
	RootDir string
	// Input maps entry names (output stems) to source paths.
	Input map[string]string
	// ChunkPrefix names shared chunks "<prefix>.[hash]".
	ChunkPrefix string
	Outputs     []OutputOptions
	Stages      []Stage
	// External decides, per module specifier, whether it stays unbundled.
	External func(id string) bool
	// OnWarn receives every advisory raised during compilation and writes.
	OnWarn func(Advisory)
}

// Clone copies the config with its own stage, output and input collections.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Stages = append([]Stage(nil), c.Stages...)
	cp.Outputs = append([]OutputOptions(nil), c.Outputs...)
	cp.Input = make(map[string]string, len(c.Input))
	for k, v := range c.Input {
		cp.Input[k] = v
	}
	return &cp
}

// StageNames lists stage names in order.
func StageNames(stages []Stage) []string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.Name())
	}
	return names
}

// Compiler runs a compilation.
type Compiler interface {
	Compile(ctx context.Context, cfg *Config) (Bundle, error)
}

// Bundle is a finished compilation that can be written in any format.
type Bundle interface {
	Write(ctx context.Context, opts OutputOptions) (*Output, error)
}
