// Package config holds the build options recognised by unbuild and loads them
// from build.config.yaml, package.json and the environment.
package config

import (
	"path"
	"strings"

	"github.com/vzt7/unbuild/internal/foundation"
)

// DefaultExtensions are probed, in order, when resolving extension-less module paths.
var DefaultExtensions = []string{".ts", ".tsx", ".mjs", ".cjs", ".js", ".jsx", ".json"}

// BuilderKind says which builder handles an entry.
type BuilderKind string

const (
	// BuilderBundle entries are compiled by the bundling engine.
	BuilderBundle BuilderKind = "bundle"
	// BuilderOther entries (mkdist, copy, untyped, ...) are left to other builders.
	BuilderOther BuilderKind = "other"
)

var builderKinds = foundation.NewNormalizer(map[string]BuilderKind{
	"":       BuilderBundle,
	"bundle": BuilderBundle,
	"rollup": BuilderBundle,
}, BuilderOther)

// Entry is a named source module that becomes a public build output.
type Entry struct {
	Name    string `yaml:"name"`
	Input   string `yaml:"input"`
	Builder string `yaml:"builder,omitempty"`
}

// Kind normalizes the configured builder name.
func (e Entry) Kind() BuilderKind {
	return builderKinds.Normalize(e.Builder)
}

// EntryFromInput derives an entry from a bare input path: "src/cli.ts" -> name "cli".
func EntryFromInput(input string) Entry {
	base := path.Base(strings.ReplaceAll(input, "\\", "/"))
	name := strings.TrimSuffix(base, path.Ext(base))
	return Entry{Name: name, Input: input}
}

// Options is the resolved configuration of one build.
type Options struct {
	// Name is the package name; it prefixes shared chunk file names and is
	// aliased to RootDir.
	Name    string  `yaml:"name"`
	RootDir string  `yaml:"rootDir"`
	OutDir  string  `yaml:"outDir"`
	Entries []Entry `yaml:"entries"`

	Clean       bool `yaml:"clean"`
	Stub        bool `yaml:"stub"`
	Declaration bool `yaml:"declaration"`
	FailOnWarn  bool `yaml:"failOnWarn"`

	// Externals are package names always left unbundled.
	Externals        []string `yaml:"externals"`
	Dependencies     []string `yaml:"dependencies"`
	PeerDependencies []string `yaml:"peerDependencies"`

	Alias   map[string]string `yaml:"alias"`
	Replace map[string]string `yaml:"replace"`

	// StubLoader is the runtime loader used by stub files: a bare package
	// specifier or an absolute path.
	StubLoader string `yaml:"stubLoader"`

	Bundle BundleOptions `yaml:"bundle"`
}

// BundleEntries returns the entries handled by the bundling engine, in declaration order.
func (o *Options) BundleEntries() []Entry {
	var out []Entry
	for _, e := range o.Entries {
		if e.Kind() == BuilderBundle {
			out = append(out, e)
		}
	}
	return out
}

// BundleOptions configures the compilation engine and its transform stages.
type BundleOptions struct {
	EmitCJS            bool `yaml:"emitCJS"`
	EmitESM            bool `yaml:"emitESM"`
	InlineDependencies bool `yaml:"inlineDependencies"`
	CJSBridge          bool `yaml:"cjsBridge"`

	Replace   ReplaceOptions   `yaml:"replace"`
	Alias     AliasOptions     `yaml:"alias"`
	Resolve   ResolveOptions   `yaml:"resolve"`
	JSON      JSONOptions      `yaml:"json"`
	Transpile TranspileOptions `yaml:"esbuild"`
	CommonJS  CommonJSOptions  `yaml:"commonjs"`
	DTS       DTSOptions       `yaml:"dts"`
}

// ReplaceOptions configures static value substitution.
type ReplaceOptions struct {
	Enabled           bool              `yaml:"enabled"`
	Values            map[string]string `yaml:"values"`
	PreventAssignment bool              `yaml:"preventAssignment"`
}

// AliasOptions configures module specifier rewriting.
type AliasOptions struct {
	Enabled bool              `yaml:"enabled"`
	Entries map[string]string `yaml:"entries"`
}

// ResolveOptions configures node-style module resolution.
type ResolveOptions struct {
	Enabled        bool     `yaml:"enabled"`
	Extensions     []string `yaml:"extensions"`
	MainFields     []string `yaml:"mainFields"`
	Conditions     []string `yaml:"conditions"`
	PreferBuiltins bool     `yaml:"preferBuiltins"`
}

// JSONOptions configures JSON module inlining.
type JSONOptions struct {
	Enabled      bool `yaml:"enabled"`
	PreferConst  bool `yaml:"preferConst"`
	NamedExports bool `yaml:"namedExports"`
}

// TranspileOptions configures per-module TypeScript/JSX transpilation.
type TranspileOptions struct {
	Enabled     bool              `yaml:"enabled"`
	Target      string            `yaml:"target"`
	Minify      bool              `yaml:"minify"`
	JSXFactory  string            `yaml:"jsxFactory"`
	JSXFragment string            `yaml:"jsxFragment"`
	Loaders     map[string]string `yaml:"loaders"`
	Define      map[string]string `yaml:"define"`
}

// CommonJSOptions configures legacy CommonJS interop.
type CommonJSOptions struct {
	Enabled    bool     `yaml:"enabled"`
	Extensions []string `yaml:"extensions"`
	Ignore     []string `yaml:"ignore"`
}

// DTSOptions configures the declaration synthesis stage.
type DTSOptions struct {
	// Command runs the declaration emitter; defaults to ["tsc"].
	Command []string `yaml:"command"`
}
