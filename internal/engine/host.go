package engine

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vzt7/unbuild/internal/foundation/errors"
)

const hostPluginName = "unbuild:pipeline"

// nestedResolve marks resolutions started by a Resolver so they bypass the stages.
type nestedResolve struct{}

var resolveKinds = map[api.ResolveKind]ResolveKind{
	api.ResolveEntryPoint:        KindEntryPoint,
	api.ResolveJSImportStatement: KindImport,
	api.ResolveJSRequireCall:     KindRequire,
	api.ResolveJSDynamicImport:   KindDynamicImport,
	api.ResolveJSRequireResolve:  KindRequireResolve,
	api.ResolveCSSImportRule:     KindImport,
	api.ResolveCSSURLToken:       KindOther,
	api.ResolveCSSComposesFrom:   KindOther,
}

func (k ResolveKind) api() api.ResolveKind {
	switch k {
	case KindEntryPoint:
		return api.ResolveEntryPoint
	case KindRequire:
		return api.ResolveJSRequireCall
	case KindDynamicImport:
		return api.ResolveJSDynamicImport
	case KindRequireResolve:
		return api.ResolveJSRequireResolve
	default:
		return api.ResolveJSImportStatement
	}
}

// host runs the module-level stage hooks from inside one esbuild plugin,
// so transforms chain the way a pipeline expects instead of first-wins.
type host struct {
	cfg          *Config
	resolvers    []Resolver
	loaders      []ModuleLoader
	transformers []Transformer

	mu      sync.Mutex
	entries map[string]bool
}

func newHost(cfg *Config) *host {
	h := &host{cfg: cfg, entries: make(map[string]bool)}
	for _, s := range cfg.Stages {
		if r, ok := s.(Resolver); ok {
			h.resolvers = append(h.resolvers, r)
		}
		if l, ok := s.(ModuleLoader); ok {
			h.loaders = append(h.loaders, l)
		}
		if t, ok := s.(Transformer); ok {
			h.transformers = append(h.transformers, t)
		}
	}
	return h
}

func (h *host) isEntry(p string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[p]
}

func (h *host) plugin() api.Plugin {
	return api.Plugin{
		Name: hostPluginName,
		Setup: func(build api.PluginBuild) {
			resolve := func(p string, args ResolveArgs) (string, error) {
				r := build.Resolve(p, api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind.api(),
					PluginData: nestedResolve{},
				})
				if len(r.Errors) > 0 {
					return "", errors.ResolveError("could not resolve module").
						WithContext("module", p).
						WithContext("importer", args.Importer).
						WithContext("details", r.Errors[0].Text).
						Build()
				}
				return r.Path, nil
			}

			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if _, nested := args.PluginData.(nestedResolve); nested {
					return api.OnResolveResult{}, nil
				}
				if args.Kind == api.ResolveEntryPoint {
					return h.resolveEntry(build, args)
				}
				if h.cfg.External != nil && h.cfg.External(args.Path) {
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				}
				ra := ResolveArgs{
					Path:       args.Path,
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       resolveKinds[args.Kind],
				}
				for _, r := range h.resolvers {
					res, err := r.ResolveID(ra, resolve)
					if err != nil {
						return api.OnResolveResult{PluginName: r.Name()}, err
					}
					if res != nil {
						return api.OnResolveResult{Path: res.Path, External: res.External, PluginName: r.Name()}, nil
					}
				}
				return api.OnResolveResult{}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: "file"}, h.load)
		},
	}
}

func (h *host) resolveEntry(build api.PluginBuild, args api.OnResolveArgs) (api.OnResolveResult, error) {
	r := build.Resolve(args.Path, api.ResolveOptions{
		ResolveDir: args.ResolveDir,
		Kind:       api.ResolveEntryPoint,
		PluginData: nestedResolve{},
	})
	if len(r.Errors) > 0 {
		return api.OnResolveResult{}, errors.ResolveError("could not resolve entry").
			WithContext("entry", args.Path).
			WithContext("details", r.Errors[0].Text).
			Build()
	}
	h.mu.Lock()
	h.entries[r.Path] = true
	h.mu.Unlock()
	return api.OnResolveResult{Path: r.Path, Namespace: r.Namespace}, nil
}

func (h *host) load(args api.OnLoadArgs) (api.OnLoadResult, error) {
	var mod *Module
	for _, l := range h.loaders {
		m, err := l.Load(args.Path)
		if err != nil {
			return api.OnLoadResult{PluginName: l.Name()}, err
		}
		if m != nil {
			mod = m
			break
		}
	}
	if mod == nil {
		loader, ok := LoaderForPath(args.Path)
		if !ok {
			return api.OnLoadResult{}, nil
		}
		data, err := os.ReadFile(args.Path)
		if err != nil {
			return api.OnLoadResult{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read module").
				WithContext("module", args.Path).
				Build()
		}
		mod = &Module{ID: args.Path, Code: string(data), Loader: loader}
	}
	mod.IsEntry = h.isEntry(args.Path)

	for _, t := range h.transformers {
		if err := t.Transform(mod); err != nil {
			return api.OnLoadResult{PluginName: t.Name()}, err
		}
	}

	contents := mod.Code
	return api.OnLoadResult{
		Contents:   &contents,
		ResolveDir: filepath.Dir(args.Path),
		Loader:     mod.Loader.api(),
	}, nil
}
