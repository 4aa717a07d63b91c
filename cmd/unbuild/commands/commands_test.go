package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzt7/unbuild/internal/config"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestConfigPath(t *testing.T) {
	require.Equal(t, filepath.Join("proj", config.DefaultConfigFile), ConfigPath("proj", ""))
	require.Equal(t, filepath.Join("proj", "custom.yaml"), ConfigPath("proj", "custom.yaml"))
	require.Equal(t, "/etc/unbuild.yaml", ConfigPath("proj", "/etc/unbuild.yaml"))
}

func TestRunInit(t *testing.T) {
	root := t.TempDir()
	path := ConfigPath(root, "")

	require.NoError(t, RunInit(path, false))
	require.FileExists(t, path)
	require.Error(t, RunInit(path, false))
	require.NoError(t, RunInit(path, true))

	opts, err := config.Load(root, "")
	require.NoError(t, err)
	require.Len(t, opts.Entries, 1)
	require.Equal(t, "index", opts.Entries[0].Name)
}

func TestRunBuildWritesOutputsAndMetrics(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json":           `{"name": "demo"}`,
		config.DefaultConfigFile: "entries: [src/index]\n",
		"src/index.ts":           "export const answer: number = 42\n",
	})
	opts, err := config.Load(root, "")
	require.NoError(t, err)

	metricsFile := filepath.Join(t.TempDir(), "unbuild.prom")
	require.NoError(t, RunBuild(context.Background(), opts, false, metricsFile))

	require.FileExists(t, filepath.Join(root, "dist", "index.mjs"))
	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `unbuild_build_outcomes_total{outcome="success"} 1`)
}

func TestRunBuildStub(t *testing.T) {
	root := writeProject(t, map[string]string{
		config.DefaultConfigFile: "entries: [src/index]\nstub: true\n",
		"src/index.ts":           "export const answer = 42\n",
	})
	opts, err := config.Load(root, "")
	require.NoError(t, err)

	require.NoError(t, RunBuild(context.Background(), opts, true, ""))

	for _, name := range []string{"index.mjs", "index.d.ts"} {
		require.FileExists(t, filepath.Join(root, "dist", name))
	}
	require.NoFileExists(t, filepath.Join(root, "dist", "index.cjs"))
}
