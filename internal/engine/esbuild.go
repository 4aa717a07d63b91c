package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
)

// stagingDir is the virtual output directory esbuild lays files out in;
// nothing is written there.
const stagingDir = ".unbuild-staging"

// Esbuild compiles with esbuild.
type Esbuild struct{}

// NewEsbuild returns the esbuild-backed Compiler.
func NewEsbuild() *Esbuild { return &Esbuild{} }

// Compile bundles cfg.Input once as code-split ESM.
func (e *Esbuild) Compile(ctx context.Context, cfg *Config) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cfg.Input) == 0 {
		return nil, errors.BuildError("nothing to compile: no input modules").Build()
	}

	outDir := filepath.Join(cfg.RootDir, stagingDir)
	opts := buildOptions(cfg, outDir)
	for _, s := range cfg.Stages {
		if c, ok := s.(Configurer); ok {
			c.Configure(&opts)
		}
	}
	opts.Plugins = append([]api.Plugin{newHost(cfg).plugin()}, opts.Plugins...)

	slog.Debug("Compiling", logfields.Count(len(cfg.Input)), slog.Any("stages", StageNames(cfg.Stages)))

	result := api.Build(opts)
	forwardWarnings(result.Warnings, cfg.OnWarn)
	if len(result.Errors) > 0 {
		return nil, errors.BuildError("compilation failed").
			WithContext("details", formatMessages(result.Errors)).
			Build()
	}

	meta, err := parseMetafile(result.Metafile)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to read compilation metafile").Build()
	}
	if cfg.OnWarn != nil {
		for _, cycle := range meta.circularDependencies() {
			cfg.OnWarn(Advisory{
				Code:    AdvisoryCircularDependency,
				Message: "Circular dependency: " + strings.Join(cycle, " -> "),
			})
		}
	}
	g := newGraphBuilder(cfg, outDir, meta)
	files := make([]OutputFile, 0, len(result.OutputFiles))
	for _, of := range result.OutputFiles {
		files = append(files, g.build(of.Path, of.Contents))
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].FileName < files[j].FileName })

	return &bundle{stages: cfg.Stages, files: files, onWarn: cfg.OnWarn}, nil
}

func buildOptions(cfg *Config, outDir string) api.BuildOptions {
	names := make([]string, 0, len(cfg.Input))
	for name := range cfg.Input {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]api.EntryPoint, 0, len(names))
	for _, name := range names {
		entries = append(entries, api.EntryPoint{InputPath: cfg.Input[name], OutputPath: name})
	}

	prefix := cfg.ChunkPrefix
	if prefix == "" {
		prefix = "chunk"
	}

	return api.BuildOptions{
		EntryPointsAdvanced: entries,
		AbsWorkingDir:       cfg.RootDir,
		Outdir:              outDir,
		Bundle:              true,
		Splitting:           true,
		Format:              api.FormatESModule,
		Platform:            api.PlatformNode,
		Target:              api.ESNext,
		Write:               false,
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
		ChunkNames:          prefix + ".[hash]",
		OutExtension:        map[string]string{".js": ".mjs"},
		Loader:              map[string]api.Loader{},
		Supported:           map[string]bool{},
		Define:              map[string]string{},
	}
}

func forwardWarnings(msgs []api.Message, onWarn func(Advisory)) {
	if onWarn == nil {
		return
	}
	for _, m := range msgs {
		a := Advisory{Code: m.ID, Message: m.Text, Plugin: m.PluginName}
		if m.Location != nil {
			a.File = m.Location.File
			a.Line = m.Location.Line
		}
		onWarn(a)
	}
}

func formatMessages(msgs []api.Message) string {
	return strings.TrimSpace(strings.Join(api.FormatMessages(msgs, api.FormatMessagesOptions{
		Kind: api.ErrorMessage,
	}), ""))
}

type bundle struct {
	stages []Stage
	files  []OutputFile
	onWarn func(Advisory)
}

// Write renders the compilation in opts.Format, runs the output hooks and
// writes every file below opts.Dir.
func (b *bundle) Write(ctx context.Context, opts OutputOptions) (*Output, error) {
	out := &Output{Files: make([]OutputFile, 0, len(b.files))}
	r := newRenamer(b.files, opts.Format)
	for _, f := range b.files {
		f.Code = append([]byte(nil), f.Code...)
		if opts.Format == FormatCJS && f.Type == FileChunk {
			converted, err := toCommonJS(f, r, b.onWarn)
			if err != nil {
				return nil, err
			}
			f = converted
		}
		out.Files = append(out.Files, f)
	}

	for _, s := range b.stages {
		cr, ok := s.(ChunkRenderer)
		if !ok {
			continue
		}
		for _, c := range out.Chunks() {
			if err := cr.RenderChunk(c, opts.Format); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range b.stages {
		if g, ok := s.(BundleGenerator); ok {
			if err := g.GenerateBundle(ctx, out, opts); err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range out.Files {
		dest := filepath.Join(opts.Dir, filepath.FromSlash(f.FileName))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				WithContext(logfields.KeyPath, filepath.Dir(dest)).
				Build()
		}
		if err := os.WriteFile(dest, f.Code, 0o644); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
				WithContext(logfields.KeyPath, dest).
				Build()
		}
	}

	for _, s := range b.stages {
		if w, ok := s.(BundleWriter); ok {
			if err := w.WriteBundle(opts.Dir, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
