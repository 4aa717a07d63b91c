package build

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/util/sets"
)

func TestValidateDependencies(t *testing.T) {
	opts := config.Defaults()
	opts.Dependencies = []string{"left-pad", "lodash", "@scope/used"}
	opts.PeerDependencies = []string{"react"}
	opts.Externals = []string{"fs"}

	bc := NewContext(opts, nil)
	bc.UsedImports = sets.New("left-pad/utils", "@scope/used/deep", "react", "fs", "undeclared", "./local")
	validateDependencies(bc)

	require.Equal(t, []string{
		"Potential unused dependencies found: lodash",
		"Potential implicit dependencies found: undeclared",
	}, bc.Warnings())
}

func TestValidateDependenciesInline(t *testing.T) {
	opts := config.Defaults()
	opts.Bundle.InlineDependencies = true
	bc := NewContext(opts, nil)
	bc.UsedImports = sets.New("undeclared")
	validateDependencies(bc)
	require.Empty(t, bc.Warnings())
}

func TestSummarize(t *testing.T) {
	entries := []BuildEntry{
		{Path: "index.mjs", Bytes: 100, ChunkDependencies: []string{"pkg.a.mjs"}, Exports: []string{"foo"}},
		{Path: "pkg.a.mjs", IsChunk: true, Bytes: 50},
		{Path: "cli.mjs", Bytes: 10},
	}
	summaries, total := Summarize(entries, "dist")
	require.Equal(t, 160, total)
	require.Len(t, summaries, 2)
	require.Equal(t, EntrySummary{
		Path:       "dist/index.mjs",
		Bytes:      100,
		ChunkBytes: 50,
		Chunks:     []string{"dist/pkg.a.mjs"},
		Exports:    []string{"foo"},
	}, summaries[0])
	require.Equal(t, 150, summaries[0].TotalBytes())
	require.Equal(t, "dist/cli.mjs", summaries[1].Path)
}
