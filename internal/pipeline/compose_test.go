package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/engine"
)

func testOptions() *config.Options {
	opts := config.Defaults()
	opts.Name = "@acme/widgets"
	opts.RootDir = filepath.FromSlash("/proj")
	opts.Entries = []config.Entry{
		{Name: "index", Input: "src/index"},
		{Name: "cli", Input: filepath.FromSlash("/proj/src/cli.ts")},
		{Name: "types", Input: "src/types", Builder: "mkdist"},
	}
	return opts
}

func TestComposeDefaultOrder(t *testing.T) {
	p := Compose(testOptions(), nil)
	require.Equal(t, []string{
		"replace", "alias", "resolve", "json", "shebang", "transpile",
		"commonjs", "preserve-dynamic-import", "raw",
	}, engine.StageNames(p.Stages))
	require.NotNil(t, p.Shebang)
	require.True(t, p.Shebang.Preserve())
}

func TestComposeOptionalStages(t *testing.T) {
	opts := testOptions()
	opts.Bundle.Replace.Enabled = false
	opts.Bundle.Alias.Enabled = false
	opts.Bundle.Resolve.Enabled = false
	opts.Bundle.JSON.Enabled = false
	opts.Bundle.Transpile.Enabled = false
	opts.Bundle.CommonJS.Enabled = false
	opts.Bundle.CJSBridge = true

	p := Compose(opts, nil)
	require.Equal(t, []string{"shebang", "preserve-dynamic-import", "cjs-bridge", "raw"}, engine.StageNames(p.Stages))
}

func TestPipelineConfig(t *testing.T) {
	opts := testOptions()
	opts.Bundle.EmitCJS = true
	p := Compose(opts, nil)
	cfg := p.Config(opts, nil)

	require.Equal(t, map[string]string{
		"index": filepath.FromSlash("/proj/src/index"),
		"cli":   filepath.FromSlash("/proj/src/cli.ts"),
	}, cfg.Input)
	require.Equal(t, "acme-widgets", cfg.ChunkPrefix)
	require.Equal(t, []engine.OutputOptions{
		{Dir: filepath.FromSlash("/proj/dist"), Format: engine.FormatCJS},
		{Dir: filepath.FromSlash("/proj/dist"), Format: engine.FormatESM},
	}, cfg.Outputs)
	require.Len(t, cfg.Stages, len(p.Stages))
	require.False(t, cfg.External("./x"))
}

func TestPipelineConfigESMOnly(t *testing.T) {
	opts := testOptions()
	cfg := Compose(opts, nil).Config(opts, nil)
	require.Len(t, cfg.Outputs, 1)
	require.Equal(t, engine.FormatESM, cfg.Outputs[0].Format)
}

func TestAdvisoryFilter(t *testing.T) {
	var got []string
	f := AdvisoryFilter(func(m string) { got = append(got, m) })
	f(engine.Advisory{Code: engine.AdvisoryCircularDependency, Message: "cycle"})
	f(engine.Advisory{Code: "empty-import-meta", Message: "import.meta is empty", File: "src/a.ts", Line: 3})
	f(engine.Advisory{Message: "plain"})
	require.Equal(t, []string{"import.meta is empty (src/a.ts:3)", "plain"}, got)
}

func TestAliasEntriesOrder(t *testing.T) {
	opts := testOptions()
	opts.Alias = map[string]string{"b": "/b", "a": "/a"}
	opts.Bundle.Alias.Entries = map[string]string{"c": "/c"}

	entries := AliasEntries(opts)
	require.Len(t, entries, 4)
	require.Equal(t, "@acme/widgets", entries[0].Find)
	require.Equal(t, filepath.FromSlash("/proj"), entries[0].Replacement)
	require.Equal(t, "a", entries[1].Find)
	require.Equal(t, "b", entries[2].Find)
	require.Equal(t, "c", entries[3].Find)
}

func TestChunkPrefix(t *testing.T) {
	require.Equal(t, "widgets", ChunkPrefix("widgets"))
	require.Equal(t, "acme-widgets", ChunkPrefix("@acme/widgets"))
	require.Equal(t, "", ChunkPrefix(""))
}
