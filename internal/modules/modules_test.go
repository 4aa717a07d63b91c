package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var exts = []string{".ts", ".tsx", ".mjs", ".cjs", ".js", ".jsx", ".json"}

func touch(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestTryResolve(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "src/index.ts"), "")
	touch(t, filepath.Join(root, "src/lib/index.mjs"), "")
	touch(t, filepath.Join(root, "src/plain.js"), "")

	p, ok := TryResolve("src/index", root, exts)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "src/index.ts"), p)

	p, ok = TryResolve(filepath.Join(root, "src/lib"), root, exts)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "src/lib/index.mjs"), p)

	p, ok = TryResolve("src/plain.js", root, exts)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "src/plain.js"), p)

	_, ok = TryResolve("src/missing", root, exts)
	require.False(t, ok)
	require.Equal(t, filepath.Join(root, "src/missing"), ResolveOr("src/missing", root, exts))
}

func TestStripExt(t *testing.T) {
	require.Equal(t, "/p/src/index", StripExt("/p/src/index.ts"))
	require.Equal(t, "/p/src/index", StripExt("/p/src/index"))
}

func TestEsbuildAnalyzer(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "src/util.ts"), "export const helper = 1\nexport function other() {}\n")
	touch(t, filepath.Join(root, "src/index.ts"), "import dep from 'some-dep'\nexport * from './util'\nexport const foo = dep\nexport default 42\n")

	names, err := NewEsbuildAnalyzer(exts).Exports(context.Background(), filepath.Join(root, "src/index.ts"))
	require.NoError(t, err)
	require.Equal(t, []string{"default", "foo", "helper", "other"}, names)
}

func TestEsbuildAnalyzerSyntaxError(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "broken.ts"), "export const = ;\n")

	_, err := NewEsbuildAnalyzer(exts).Exports(context.Background(), filepath.Join(root, "broken.ts"))
	require.Error(t, err)
}
