package stages

import (
	"github.com/evanw/esbuild/pkg/api"

	"github.com/vzt7/unbuild/internal/engine"
)

// CommonJS enables interop with legacy CommonJS modules: their extensions
// load as JavaScript and ignored require() targets stay external.
type CommonJS struct {
	extensions []string
	ignore     map[string]bool
}

func NewCommonJS(extensions, ignore []string) *CommonJS {
	if len(extensions) == 0 {
		extensions = []string{".js", ".cjs"}
	}
	c := &CommonJS{extensions: extensions, ignore: make(map[string]bool, len(ignore))}
	for _, id := range ignore {
		c.ignore[id] = true
	}
	return c
}

func (c *CommonJS) Name() string { return "commonjs" }

func (c *CommonJS) Configure(opts *api.BuildOptions) {
	if opts.Loader == nil {
		opts.Loader = map[string]api.Loader{}
	}
	for _, ext := range c.extensions {
		if _, set := opts.Loader[ext]; !set {
			opts.Loader[ext] = api.LoaderJS
		}
	}
}

func (c *CommonJS) ResolveID(args engine.ResolveArgs, _ engine.ResolveFunc) (*engine.ResolveResult, error) {
	if args.Kind != engine.KindRequire || !c.ignore[args.Path] {
		return nil, nil
	}
	return &engine.ResolveResult{Path: args.Path, External: true}, nil
}
