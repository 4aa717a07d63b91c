package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := New("left-pad", "pkg.abc.mjs")
	s.Add("defu")
	require.True(t, s.Has("defu"))
	require.Equal(t, 3, s.Len())

	s.Delete("pkg.abc.mjs")
	s.Delete("missing")
	require.False(t, s.Has("pkg.abc.mjs"))
	require.Equal(t, []string{"defu", "left-pad"}, Sorted(s))
}
