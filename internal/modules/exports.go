package modules

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
)

// ExportAnalyzer lists the export names of a module.
type ExportAnalyzer interface {
	Exports(ctx context.Context, path string) ([]string, error)
}

// EsbuildAnalyzer bundles a module (dependencies left external) and reads
// the resulting export names, so `export *` re-exports are followed.
type EsbuildAnalyzer struct {
	Extensions []string
}

// NewEsbuildAnalyzer returns an analyzer resolving the given extensions.
func NewEsbuildAnalyzer(extensions []string) *EsbuildAnalyzer {
	return &EsbuildAnalyzer{Extensions: extensions}
}

type analysisMetafile struct {
	Outputs map[string]struct {
		Exports    []string `json:"exports"`
		EntryPoint string   `json:"entryPoint"`
	} `json:"outputs"`
}

func (a *EsbuildAnalyzer) Exports(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tmp, err := os.MkdirTemp("", "unbuild-exports-")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create analysis directory").Build()
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	res := api.Build(api.BuildOptions{
		EntryPoints:       []string{path},
		AbsWorkingDir:     filepath.Dir(path),
		Bundle:            true,
		Packages:          api.PackagesExternal,
		Format:            api.FormatESModule,
		Platform:          api.PlatformNode,
		Target:            api.ESNext,
		ResolveExtensions: a.Extensions,
		Outdir:            tmp,
		Write:             false,
		Metafile:          true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, errors.ResolveError("export analysis failed").
			WithContext(logfields.KeyModule, path).
			WithContext("details", res.Errors[0].Text).
			Build()
	}

	var meta analysisMetafile
	if err := json.Unmarshal([]byte(res.Metafile), &meta); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to read analysis metafile").Build()
	}
	var names []string
	for key, out := range meta.Outputs {
		if out.EntryPoint == "" || !strings.HasSuffix(key, ".js") {
			continue
		}
		names = append(names, out.Exports...)
	}
	sort.Strings(names)
	return names, nil
}
