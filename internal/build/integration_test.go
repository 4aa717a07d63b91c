package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

func TestRunWithEsbuild(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"src/shared.ts": "export const greet = (name: string): string => `hi ${name}`\n",
		"src/index.ts":  "import { greet } from './shared'\nimport data from './data.json'\nexport const hello = greet(data.name)\n",
		"src/cli.ts":    "#!/usr/bin/env node\nimport { greet } from './shared'\nimport { readFileSync } from 'node:fs'\nconsole.log(greet('cli'), readFileSync)\n",
		"src/data.json": `{"name": "world"}`,
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	opts := config.Defaults()
	opts.Name = "demo"
	opts.RootDir = root
	opts.Bundle.EmitCJS = true
	opts.Entries = []config.Entry{
		{Name: "index", Input: "src/index"},
		{Name: "cli", Input: "src/cli.ts"},
	}
	config.Normalize(opts, &config.Package{})

	res, err := NewBuilder(engine.NewEsbuild()).Run(context.Background(), opts, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status, res.Warnings)

	dist := filepath.Join(root, "dist")
	for _, name := range []string{"index.mjs", "index.cjs", "cli.mjs", "cli.cjs"} {
		require.FileExists(t, filepath.Join(dist, name))
	}

	cli, err := os.ReadFile(filepath.Join(dist, "cli.cjs"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(cli), "#!/usr/bin/env node\n"))
	info, err := os.Stat(filepath.Join(dist, "cli.cjs"))
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o100)

	var chunks int
	for _, e := range res.Context.BuildEntries {
		if e.IsChunk {
			chunks++
			require.True(t, strings.HasPrefix(e.Path, "demo."), e.Path)
		}
		if e.Path == "index.mjs" {
			require.Equal(t, []string{"hello"}, e.Exports)
			require.Len(t, e.ChunkDependencies, 1)
		}
	}
	require.Equal(t, 2, chunks)
	require.True(t, res.Context.UsedImports.Has("node:fs"))
	for _, e := range res.Context.BuildEntries {
		require.False(t, res.Context.UsedImports.Has(e.Path))
	}
}

type recordingGenerator struct {
	root   string
	inputs []string
}

func (g *recordingGenerator) Generate(_ context.Context, inputs []string) (*stages.Declarations, error) {
	g.inputs = inputs
	return &stages.Declarations{Root: g.root, Files: map[string][]byte{
		"src/index.d.ts": []byte("export declare const load: () => Promise<typeof import(\"./lazy\")>;\n"),
		"src/lazy.d.ts":  []byte("export declare const lazy = 1;\n"),
	}}, nil
}

func TestRunWithDynamicImport(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"src/lazy.ts":  "export const lazy = 1\n",
		"src/index.ts": "export const load = () => import('./lazy')\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	opts := config.Defaults()
	opts.Name = "demo"
	opts.RootDir = root
	opts.Declaration = true
	opts.Entries = []config.Entry{{Name: "index", Input: "src/index"}}
	config.Normalize(opts, &config.Package{})

	gen := &recordingGenerator{root: root}
	b := NewBuilder(engine.NewEsbuild()).WithGenerator(func(string, []string) stages.DeclarationGenerator { return gen })
	res, err := b.Run(context.Background(), opts, nil)
	require.NoError(t, err)

	var entries []BuildEntry
	for _, e := range res.Context.BuildEntries {
		if !e.IsChunk {
			entries = append(entries, e)
			continue
		}
		require.True(t, strings.HasPrefix(e.Path, "demo."), e.Path)
		require.Empty(t, e.Exports)
	}
	require.Len(t, entries, 1)
	require.Equal(t, "index.mjs", entries[0].Path)
	require.Equal(t, []string{"load"}, entries[0].Exports)

	require.Equal(t, []string{filepath.Join(root, "src", "index.ts")}, gen.inputs)
	dist := filepath.Join(root, "dist")
	require.FileExists(t, filepath.Join(dist, "index.d.ts"))
	require.FileExists(t, filepath.Join(dist, stages.SourceTypesDir, "src", "lazy.d.ts"))
	stray, err := filepath.Glob(filepath.Join(dist, "demo.*.d.ts"))
	require.NoError(t, err)
	require.Empty(t, stray)
}

func TestRunDropsCircularDependencyAdvisories(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"src/a.ts":     "import { b } from './b'\nexport const a = () => b\n",
		"src/b.ts":     "import { a } from './a'\nexport const b = () => a\n",
		"src/index.ts": "export { a } from './a'\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	opts := config.Defaults()
	opts.Name = "demo"
	opts.RootDir = root
	opts.Entries = []config.Entry{{Name: "index", Input: "src/index"}}
	config.Normalize(opts, &config.Package{})

	var cycles []string
	hooks := NewHooks()
	On(hooks, func(_ context.Context, e OptionsPrepared) error {
		next := e.Config.OnWarn
		e.Config.OnWarn = func(a engine.Advisory) {
			if a.Code == engine.AdvisoryCircularDependency {
				cycles = append(cycles, a.Message)
			}
			next(a)
		}
		return nil
	})

	res, err := NewBuilder(engine.NewEsbuild()).Run(context.Background(), opts, hooks)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status, res.Warnings)
	require.Empty(t, res.Warnings)
	require.Equal(t, []string{"Circular dependency: src/a.ts -> src/b.ts -> src/a.ts"}, cycles)
}
