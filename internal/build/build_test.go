package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

type fakeBundle struct {
	outputs map[engine.Format]*engine.Output
	writes  []engine.OutputOptions
}

func (f *fakeBundle) Write(_ context.Context, o engine.OutputOptions) (*engine.Output, error) {
	f.writes = append(f.writes, o)
	out := f.outputs[o.Format]
	if out == nil {
		return &engine.Output{}, nil
	}
	cp := *out
	cp.Files = append([]engine.OutputFile(nil), out.Files...)
	return &cp, nil
}

type fakeCompiler struct {
	bundles []*fakeBundle
	configs []*engine.Config
	err     error
}

func (f *fakeCompiler) Compile(_ context.Context, cfg *engine.Config) (engine.Bundle, error) {
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	b := &fakeBundle{outputs: sampleOutputs()}
	f.bundles = append(f.bundles, b)
	return b, nil
}

func sampleOutputs() map[engine.Format]*engine.Output {
	mk := func(ext string) *engine.Output {
		return &engine.Output{Files: []engine.OutputFile{
			{Type: engine.FileChunk, FileName: "index" + ext, IsEntry: true, Imports: []string{"pkg.abc" + ext, "left-pad"}, Exports: []string{"foo"}, Code: []byte("12345")},
			{Type: engine.FileChunk, FileName: "cli" + ext, IsEntry: true, Imports: []string{"pkg.abc" + ext}, Code: []byte("123")},
			{Type: engine.FileChunk, FileName: "pkg.abc" + ext, Imports: []string{"node:fs"}, Code: []byte("1234567890")},
			{Type: engine.FileAsset, FileName: "style.css", Code: []byte("body{}")},
		}}
	}
	return map[engine.Format]*engine.Output{engine.FormatCJS: mk(".cjs"), engine.FormatESM: mk(".mjs")}
}

func bundleOptions(t *testing.T) *config.Options {
	t.Helper()
	opts := config.Defaults()
	opts.Name = "pkg"
	opts.RootDir = t.TempDir()
	opts.Bundle.EmitCJS = true
	opts.Entries = []config.Entry{
		{Name: "index", Input: "src/index.ts"},
		{Name: "cli", Input: "src/cli.ts"},
	}
	opts.Externals = []string{"left-pad", "node:fs"}
	opts.Dependencies = []string{"left-pad"}
	return opts
}

func TestExecuteFullBuild(t *testing.T) {
	opts := bundleOptions(t)
	compiler := &fakeCompiler{}
	bc := NewContext(opts, nil)

	var order []HookName
	record := func(_ context.Context, e Event) error {
		order = append(order, e.Hook())
		return nil
	}
	for _, h := range []HookName{HookOptionsPrepared, HookCompiled, HookDeclarationsOptionsPrepared, HookDeclarationsCompiled, HookFinished} {
		bc.Hooks.Subscribe(h, record)
	}

	require.NoError(t, NewBuilder(compiler).Execute(context.Background(), bc))

	require.Equal(t, []HookName{HookOptionsPrepared, HookCompiled, HookFinished}, order)
	require.Len(t, compiler.configs, 1)
	require.Len(t, compiler.configs[0].Input, 2)
	require.Equal(t, []engine.Format{engine.FormatCJS, engine.FormatESM}, formats(compiler.bundles[0].writes))

	require.Len(t, bc.BuildEntries, 6)
	require.Equal(t, BuildEntry{
		Path:              "index.cjs",
		ChunkDependencies: []string{"pkg.abc.cjs"},
		Bytes:             5,
		Exports:           []string{"foo"},
	}, bc.BuildEntries[0])
	require.Equal(t, BuildEntry{Path: "pkg.abc.mjs", IsChunk: true, Bytes: 10}, bc.BuildEntries[5])
	require.Equal(t, []string{"left-pad", "node:fs"}, sortedImports(bc))
}

func formats(writes []engine.OutputOptions) []engine.Format {
	var out []engine.Format
	for _, w := range writes {
		out = append(out, w.Format)
	}
	return out
}

func sortedImports(bc *Context) []string {
	var out []string
	for _, e := range []string{"left-pad", "node:fs", "pkg.abc.cjs", "pkg.abc.mjs"} {
		if bc.UsedImports.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

func TestExecuteOptionsPreparedCanMutateConfig(t *testing.T) {
	opts := bundleOptions(t)
	compiler := &fakeCompiler{}
	bc := NewContext(opts, nil)
	On(bc.Hooks, func(_ context.Context, e OptionsPrepared) error {
		e.Config.Outputs = e.Config.Outputs[1:]
		return nil
	})

	require.NoError(t, NewBuilder(compiler).Execute(context.Background(), bc))
	require.Equal(t, []engine.Format{engine.FormatESM}, formats(compiler.bundles[0].writes))
}

func TestExecuteWithoutBundleEntries(t *testing.T) {
	opts := bundleOptions(t)
	opts.Entries = []config.Entry{{Name: "types", Input: "src/types", Builder: "mkdist"}}
	compiler := &fakeCompiler{}
	bc := NewContext(opts, nil)
	finished := false
	On(bc.Hooks, func(context.Context, Finished) error { finished = true; return nil })

	require.NoError(t, NewBuilder(compiler).Execute(context.Background(), bc))
	require.Empty(t, compiler.configs)
	require.True(t, finished)
}

func TestExecuteCompileFailure(t *testing.T) {
	opts := bundleOptions(t)
	boom := errors.New("engine exploded")
	bc := NewContext(opts, nil)
	finished := false
	On(bc.Hooks, func(context.Context, Finished) error { finished = true; return nil })

	err := NewBuilder(&fakeCompiler{err: boom}).Execute(context.Background(), bc)
	require.ErrorIs(t, err, boom)
	require.False(t, finished)
}

func TestExecuteHookErrorAborts(t *testing.T) {
	opts := bundleOptions(t)
	compiler := &fakeCompiler{}
	bc := NewContext(opts, nil)
	stop := errors.New("stop")
	On(bc.Hooks, func(context.Context, OptionsPrepared) error { return stop })

	require.ErrorIs(t, NewBuilder(compiler).Execute(context.Background(), bc), stop)
	require.Empty(t, compiler.configs)
}

type staticGenerator struct{}

func (staticGenerator) Generate(context.Context, []string) (*stages.Declarations, error) {
	return &stages.Declarations{Files: map[string][]byte{}}, nil
}

func TestDeclarationPass(t *testing.T) {
	opts := bundleOptions(t)
	opts.Declaration = true
	compiler := &fakeCompiler{}
	bc := NewContext(opts, nil)

	var order []HookName
	var mainStages, dtsStages []string
	On(bc.Hooks, func(_ context.Context, e OptionsPrepared) error {
		order = append(order, e.Hook())
		mainStages = engine.StageNames(e.Config.Stages)
		return nil
	})
	On(bc.Hooks, func(_ context.Context, e DeclarationsOptionsPrepared) error {
		order = append(order, e.Hook())
		dtsStages = engine.StageNames(e.Config.Stages)
		for _, s := range e.Config.Stages {
			if sb, ok := s.(*stages.Shebang); ok {
				require.False(t, sb.Preserve())
			}
		}
		return nil
	})
	On(bc.Hooks, func(_ context.Context, e DeclarationsCompiled) error {
		order = append(order, e.Hook())
		return nil
	})

	b := NewBuilder(compiler).WithGenerator(func(string, []string) stages.DeclarationGenerator { return staticGenerator{} })
	require.NoError(t, b.Execute(context.Background(), bc))

	require.Equal(t, []HookName{HookOptionsPrepared, HookDeclarationsOptionsPrepared, HookDeclarationsCompiled}, order)
	require.Len(t, compiler.configs, 2)
	require.Equal(t, append(mainStages, "dts"), dtsStages)
	require.NotContains(t, mainStages, "dts")

	dtsWrites := compiler.bundles[1].writes
	require.Equal(t, []engine.OutputOptions{{Dir: filepath.Join(opts.RootDir, "dist"), Format: engine.FormatESM}}, dtsWrites)
	require.Len(t, bc.BuildEntries, 6)
}

func TestRunFailOnWarn(t *testing.T) {
	opts := bundleOptions(t)
	opts.Dependencies = []string{"left-pad", "unused-dep"}
	opts.FailOnWarn = true

	res, err := NewBuilder(&fakeCompiler{}).Run(context.Background(), opts, nil)
	require.Error(t, err)
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, []string{"Potential unused dependencies found: unused-dep"}, res.Warnings)
}

func TestRunCleansOutputDirectory(t *testing.T) {
	opts := bundleOptions(t)
	stale := filepath.Join(opts.RootDir, "dist", "stale.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	res, err := NewBuilder(&fakeCompiler{}).Run(context.Background(), opts, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.True(t, res.Status.IsSuccess())
	require.NoFileExists(t, stale)
}

func TestCleanDirRefusesRoot(t *testing.T) {
	root := t.TempDir()
	require.Error(t, cleanDir(root, "."))
	require.Error(t, cleanDir(root, ".."))
	require.Error(t, cleanDir(root, "../elsewhere"))
	require.NoError(t, cleanDir(root, "dist"))
}
