package build

import (
	"path/filepath"
	"strings"

	"github.com/vzt7/unbuild/internal/pipeline"
	"github.com/vzt7/unbuild/internal/util/sets"
)

// validateDependencies compares what the outputs import with the declared
// dependencies and warns about both directions of mismatch.
func validateDependencies(bc *Context) {
	opts := bc.Options
	declared := sets.New(opts.Dependencies...)
	peers := sets.New(opts.PeerDependencies...)
	externals := sets.New(opts.Externals...)

	unused := sets.New(opts.Dependencies...)
	implicit := sets.New[string]()
	for id := range bc.UsedImports {
		if strings.HasPrefix(id, ".") || filepath.IsAbs(id) {
			continue
		}
		pkg := pipeline.PackageName(id)
		unused.Delete(pkg)
		unused.Delete(id)
		if externals.Has(id) || externals.Has(pkg) || declared.Has(pkg) || peers.Has(pkg) {
			continue
		}
		implicit.Add(id)
	}

	if unused.Len() > 0 {
		bc.Warn("Potential unused dependencies found: " + strings.Join(sets.Sorted(unused), ", "))
	}
	if implicit.Len() > 0 && !opts.Bundle.InlineDependencies {
		bc.Warn("Potential implicit dependencies found: " + strings.Join(sets.Sorted(implicit), ", "))
	}
}
