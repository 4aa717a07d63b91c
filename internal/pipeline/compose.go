package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/foundation"
	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

// Pipeline is the ordered stage list of one build plus the handles the
// orchestrator needs afterwards.
type Pipeline struct {
	Stages  []engine.Stage
	Shebang *stages.Shebang
	Policy  *Policy
}

// Compose assembles the stages for opts in their fixed order. Disabled
// stages are left out entirely; shebang, preserve-dynamic-import and raw
// are always present.
func Compose(opts *config.Options, warn func(string)) *Pipeline {
	b := opts.Bundle
	aliases := AliasEntries(opts)
	sb := stages.NewShebang(true)

	list := foundation.Present(
		foundation.When(b.Replace.Enabled, func() engine.Stage {
			return stages.NewReplace(mergeMaps(opts.Replace, b.Replace.Values), b.Replace.PreventAssignment)
		}),
		foundation.When(b.Alias.Enabled, func() engine.Stage {
			return stages.NewAlias(aliases)
		}),
		foundation.When(b.Resolve.Enabled, func() engine.Stage {
			return stages.NewResolve(config.DefaultExtensions, b.Resolve.Extensions, b.Resolve.MainFields, b.Resolve.Conditions)
		}),
		foundation.When(b.JSON.Enabled, func() engine.Stage {
			return stages.NewJSON(b.JSON.PreferConst, b.JSON.NamedExports)
		}),
		foundation.Some[engine.Stage](sb),
		foundation.When(b.Transpile.Enabled, func() engine.Stage {
			t := b.Transpile
			return stages.NewTranspile(t.Target, t.Minify, t.JSXFactory, t.JSXFragment, t.Loaders, t.Define)
		}),
		foundation.When(b.CommonJS.Enabled, func() engine.Stage {
			return stages.NewCommonJS(b.CommonJS.Extensions, b.CommonJS.Ignore)
		}),
		foundation.Some[engine.Stage](stages.NewPreserveDynamicImport()),
		foundation.When(b.CJSBridge, func() engine.Stage {
			return stages.NewCJSBridge()
		}),
		foundation.Some[engine.Stage](stages.NewRaw()),
	)

	return &Pipeline{
		Stages:  list,
		Shebang: sb,
		Policy:  NewPolicy(opts.Name, opts.Externals, b.InlineDependencies, aliases, warn),
	}
}

// Config builds the engine configuration for opts. Engine advisories that
// pass AdvisoryFilter reach warn.
func (p *Pipeline) Config(opts *config.Options, warn func(string)) *engine.Config {
	input := make(map[string]string)
	for _, e := range opts.BundleEntries() {
		in := e.Input
		if !filepath.IsAbs(in) {
			in = filepath.Join(opts.RootDir, in)
		}
		input[e.Name] = in
	}

	outDir := filepath.Join(opts.RootDir, opts.OutDir)
	var outputs []engine.OutputOptions
	if opts.Bundle.EmitCJS {
		outputs = append(outputs, engine.OutputOptions{Dir: outDir, Format: engine.FormatCJS})
	}
	if opts.Bundle.EmitESM {
		outputs = append(outputs, engine.OutputOptions{Dir: outDir, Format: engine.FormatESM})
	}

	return &engine.Config{
		RootDir:     opts.RootDir,
		Input:       input,
		ChunkPrefix: ChunkPrefix(opts.Name),
		Outputs:     outputs,
		Stages:      append([]engine.Stage(nil), p.Stages...),
		External:    p.Policy.IsExternal,
		OnWarn:      AdvisoryFilter(warn),
	}
}

// AdvisoryFilter drops the engine's circular dependency advisories and
// forwards the rest.
func AdvisoryFilter(warn func(string)) func(engine.Advisory) {
	return func(a engine.Advisory) {
		if a.Code == engine.AdvisoryCircularDependency || warn == nil {
			return
		}
		msg := a.Message
		if a.File != "" {
			msg = fmt.Sprintf("%s (%s:%d)", msg, a.File, a.Line)
		}
		warn(msg)
	}
}

// ChunkPrefix makes a package name safe for shared chunk file names.
func ChunkPrefix(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "@", ""), "/", "-")
}

// AliasEntries is the alias table in match order: the package's own name
// first, then options.alias, then bundle.alias.entries.
func AliasEntries(opts *config.Options) []stages.AliasEntry {
	var entries []stages.AliasEntry
	if opts.Name != "" {
		entries = append(entries, stages.AliasEntry{Find: opts.Name, Replacement: opts.RootDir})
	}
	for _, m := range []map[string]string{opts.Alias, opts.Bundle.Alias.Entries} {
		for _, k := range sortedKeys(m) {
			entries = append(entries, stages.AliasEntry{Find: k, Replacement: m[k]})
		}
	}
	return entries
}

func mergeMaps(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
