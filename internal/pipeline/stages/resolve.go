package stages

import (
	"github.com/evanw/esbuild/pkg/api"
)

// Resolve configures node-style resolution: extension probing, package
// main fields and export conditions.
type Resolve struct {
	Extensions []string
	MainFields []string
	Conditions []string
}

// NewResolve appends extra extensions to the defaults, keeping first occurrences.
func NewResolve(defaults, extra, mainFields, conditions []string) *Resolve {
	seen := make(map[string]bool)
	var exts []string
	for _, e := range append(append([]string(nil), defaults...), extra...) {
		if !seen[e] {
			seen[e] = true
			exts = append(exts, e)
		}
	}
	return &Resolve{Extensions: exts, MainFields: mainFields, Conditions: conditions}
}

func (r *Resolve) Name() string { return "resolve" }

func (r *Resolve) Configure(opts *api.BuildOptions) {
	opts.ResolveExtensions = r.Extensions
	if len(r.MainFields) > 0 {
		opts.MainFields = r.MainFields
	}
	if len(r.Conditions) > 0 {
		opts.Conditions = r.Conditions
	}
}
