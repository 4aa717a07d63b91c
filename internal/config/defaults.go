package config

// Defaults returns the options every build starts from before the config
// file and package.json are applied.
func Defaults() *Options {
	return &Options{
		OutDir:     "dist",
		Clean:      true,
		StubLoader: "jiti",
		Alias:      map[string]string{},
		Replace:    map[string]string{},
		Bundle: BundleOptions{
			EmitESM: true,
			Replace: ReplaceOptions{Enabled: true, PreventAssignment: true},
			Alias:   AliasOptions{Enabled: true},
			Resolve: ResolveOptions{Enabled: true, PreferBuiltins: true},
			JSON:    JSONOptions{Enabled: true, PreferConst: true, NamedExports: true},
			Transpile: TranspileOptions{
				Enabled: true,
				Target:  "es2020",
			},
			CommonJS: CommonJSOptions{Enabled: true},
			DTS:      DTSOptions{Command: []string{"tsc"}},
		},
	}
}
