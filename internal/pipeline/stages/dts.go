package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
)

// Declarations are generated type declaration files keyed by slash path
// relative to Root.
type Declarations struct {
	Root  string
	Files map[string][]byte
}

// DeclarationGenerator synthesizes type declarations for a set of sources.
type DeclarationGenerator interface {
	Generate(ctx context.Context, inputs []string) (*Declarations, error)
}

// TscGenerator runs the TypeScript compiler in declaration-only mode
// against a generated tsconfig that extends the project's own.
type TscGenerator struct {
	Command []string
	Dir     string
}

func NewTscGenerator(command []string, dir string) *TscGenerator {
	if len(command) == 0 {
		command = []string{"tsc"}
	}
	return &TscGenerator{Command: command, Dir: dir}
}

// tsconfig is the generated project file. include is always empty so the
// program is exactly files plus what they import.
type tsconfig struct {
	Extends         string            `json:"extends,omitempty"`
	CompilerOptions tsCompilerOptions `json:"compilerOptions"`
	Files           []string          `json:"files"`
	Include         []string          `json:"include"`
}

type tsCompilerOptions struct {
	Declaration         bool   `json:"declaration"`
	EmitDeclarationOnly bool   `json:"emitDeclarationOnly"`
	NoEmit              bool   `json:"noEmit"`
	DeclarationMap      bool   `json:"declarationMap"`
	Composite           bool   `json:"composite"`
	Incremental         bool   `json:"incremental"`
	SkipLibCheck        bool   `json:"skipLibCheck"`
	RootDir             string `json:"rootDir"`
	OutDir              string `json:"outDir"`
	DeclarationDir      string `json:"declarationDir"`
}

// projectConfig is the tsconfig.json the generated one extends, if any.
func (g *TscGenerator) projectConfig() string {
	p := filepath.Join(g.Dir, "tsconfig.json")
	if st, err := os.Stat(p); err == nil && !st.IsDir() {
		return p
	}
	return ""
}

func (g *TscGenerator) writeConfig(tmp string, inputs []string) (string, string, error) {
	outDir := filepath.Join(tmp, "out")
	cfg := tsconfig{
		Extends: g.projectConfig(),
		CompilerOptions: tsCompilerOptions{
			Declaration:         true,
			EmitDeclarationOnly: true,
			SkipLibCheck:        true,
			RootDir:             g.Dir,
			OutDir:              outDir,
			DeclarationDir:      outDir,
		},
		Files:   inputs,
		Include: []string{},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", "", err
	}
	configPath := filepath.Join(tmp, "tsconfig.json")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return "", "", err
	}
	return configPath, outDir, nil
}

func (g *TscGenerator) Generate(ctx context.Context, inputs []string) (*Declarations, error) {
	tmp, err := os.MkdirTemp("", "unbuild-dts-")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create declaration directory").Build()
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	configPath, outDir, err := g.writeConfig(tmp, inputs)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write declaration tsconfig").Build()
	}

	args := append([]string(nil), g.Command[1:]...)
	args = append(args, "-p", configPath)

	cmd := exec.CommandContext(ctx, g.Command[0], args...)
	cmd.Dir = g.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	slog.Debug("Generating declarations", slog.String("command", strings.Join(cmd.Args, " ")))
	if err := cmd.Run(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDeclaration, "declaration generation failed").
			WithContext("output", strings.TrimSpace(out.String())).
			Build()
	}

	decls := &Declarations{Root: g.Dir, Files: make(map[string][]byte)}
	err = filepath.WalkDir(outDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(p, ".d.ts") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			return err
		}
		decls.Files[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to collect declarations").Build()
	}
	return decls, nil
}

// SourceTypesDir holds the per-source declarations below the output
// directory; entry declarations re-export from it.
const SourceTypesDir = "_types"

// DTS replaces the JavaScript output of a compilation with one declaration
// file per entry, "<name>.d.ts", re-exporting the source declarations
// written below SourceTypesDir.
type DTS struct {
	generator DeclarationGenerator
}

func NewDTS(generator DeclarationGenerator) *DTS {
	return &DTS{generator: generator}
}

func (d *DTS) Name() string { return "dts" }

func (d *DTS) GenerateBundle(ctx context.Context, out *engine.Output, _ engine.OutputOptions) error {
	entries := make(map[string]string)
	var inputs []string
	for _, c := range out.Chunks() {
		if !c.IsEntry || c.FacadeModuleID == "" {
			continue
		}
		entries[strings.TrimSuffix(c.FileName, path.Ext(c.FileName))] = c.FacadeModuleID
		inputs = append(inputs, c.FacadeModuleID)
	}
	out.Files = nil
	if len(inputs) == 0 {
		return nil
	}
	sort.Strings(inputs)

	decls, err := d.generator.Generate(ctx, inputs)
	if err != nil {
		return err
	}

	files := make(map[string][]byte, len(decls.Files)+len(entries))
	for name, code := range decls.Files {
		files[path.Join(SourceTypesDir, name)] = code
	}
	for name, facade := range entries {
		rel, err := filepath.Rel(decls.Root, facade)
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "entry outside declaration root").
				WithContext(logfields.KeyEntry, name).
				Build()
		}
		source := strings.TrimSuffix(filepath.ToSlash(rel), path.Ext(rel)) + ".d.ts"
		code, ok := decls.Files[source]
		if !ok {
			return errors.DeclarationError("no declarations generated for entry").
				WithContext(logfields.KeyEntry, name).
				WithContext(logfields.KeyModule, facade).
				Build()
		}
		target := name + ".d.ts"
		files[target] = reexport(target, path.Join(SourceTypesDir, source), code)
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		out.Files = append(out.Files, engine.OutputFile{
			Type:     engine.FileAsset,
			FileName: n,
			Name:     strings.TrimSuffix(n, ".d.ts"),
			Code:     files[n],
		})
	}
	return nil
}

// reexport writes a declaration at target forwarding to the one at source.
func reexport(target, source string, sourceCode []byte) []byte {
	spec := strings.TrimSuffix(source, ".d.ts")
	if dir := path.Dir(target); dir != "." {
		rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(spec))
		if err == nil {
			spec = filepath.ToSlash(rel)
		}
	}
	if !strings.HasPrefix(spec, "../") {
		spec = "./" + spec
	}
	lines := []string{`export * from "` + spec + `";`}
	if bytes.Contains(sourceCode, []byte("export default")) {
		lines = append(lines, `export { default } from "`+spec+`";`)
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
