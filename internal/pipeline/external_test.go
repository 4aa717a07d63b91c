package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

func TestPackageName(t *testing.T) {
	require.Equal(t, "left-pad", PackageName("left-pad"))
	require.Equal(t, "left-pad", PackageName("left-pad/utils"))
	require.Equal(t, "@scope/pkg", PackageName("@scope/pkg/deep/x"))
	require.Equal(t, "@scope", PackageName("@scope"))
}

type warnings []string

func (w *warnings) add(msg string) { *w = append(*w, msg) }

func TestPolicyExplicitExternal(t *testing.T) {
	var w warnings
	p := NewPolicy("my-pkg", []string{"left-pad", "@scope/pkg"}, false, nil, w.add)

	require.True(t, p.IsExternal("left-pad/utils"))
	require.True(t, p.IsExternal("left-pad"))
	require.True(t, p.IsExternal("@scope/pkg/x"))
	require.Empty(t, w)
}

func TestPolicyInternalModules(t *testing.T) {
	var w warnings
	p := NewPolicy("my-pkg", nil, false, nil, w.add)

	require.False(t, p.IsExternal("./utils"))
	require.False(t, p.IsExternal("../shared"))
	require.False(t, p.IsExternal("/abs/path/mod.ts"))
	require.False(t, p.IsExternal("src/components/x"))
	require.False(t, p.IsExternal("my-pkg/sub"))
	require.Empty(t, w)
}

func TestPolicyImplicitExternal(t *testing.T) {
	var w warnings
	p := NewPolicy("my-pkg", nil, false, nil, w.add)

	require.True(t, p.IsExternal("some-untracked-pkg"))
	require.True(t, p.IsExternal("some-untracked-pkg"))
	require.Equal(t, warnings{"Implicit external some-untracked-pkg"}, w)
}

func TestPolicyInlineDependencies(t *testing.T) {
	var w warnings
	p := NewPolicy("my-pkg", []string{"fs"}, true, nil, w.add)

	require.False(t, p.IsExternal("some-untracked-pkg"))
	require.True(t, p.IsExternal("fs"))
	require.Empty(t, w)
}

func TestPolicyEmptyPackageName(t *testing.T) {
	var w warnings
	p := NewPolicy("", nil, false, nil, w.add)
	require.True(t, p.IsExternal("anything"))
	require.Len(t, w, 1)
}

func TestPolicyAlias(t *testing.T) {
	var w warnings
	alias := []stages.AliasEntry{
		{Find: "#lib", Replacement: "/proj/lib"},
		{Find: "react", Replacement: "preact/compat"},
	}
	p := NewPolicy("my-pkg", []string{"preact"}, false, alias, w.add)

	require.False(t, p.IsExternal("#lib/x"))
	require.True(t, p.IsExternal("react"))
	require.Empty(t, w)
}
