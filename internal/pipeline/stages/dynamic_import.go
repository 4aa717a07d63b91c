package stages

import "github.com/evanw/esbuild/pkg/api"

// PreserveDynamicImport keeps import() expressions as written in every
// output format.
type PreserveDynamicImport struct{}

func NewPreserveDynamicImport() *PreserveDynamicImport { return &PreserveDynamicImport{} }

func (PreserveDynamicImport) Name() string { return "preserve-dynamic-import" }

func (PreserveDynamicImport) Configure(opts *api.BuildOptions) {
	if opts.Supported == nil {
		opts.Supported = map[string]bool{}
	}
	opts.Supported["dynamic-import"] = true
}
