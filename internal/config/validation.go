package config

import (
	foundationerrors "github.com/vzt7/unbuild/internal/foundation/errors"
)

// Validate checks the invariants the build relies on. Entry names become map
// keys and output file stems, so they must be unique.
func Validate(opts *Options) error {
	if opts.OutDir == "" {
		return foundationerrors.ValidationError("outDir cannot be empty").Build()
	}
	if len(opts.Entries) == 0 {
		return foundationerrors.ValidationError("no build entries configured").
			WithContext("root", opts.RootDir).
			Build()
	}
	seen := make(map[string]bool, len(opts.Entries))
	for i, e := range opts.Entries {
		if e.Input == "" {
			return foundationerrors.ValidationError("entry input cannot be empty").
				WithContext("index", i).
				Build()
		}
		if e.Name == "" {
			return foundationerrors.ValidationError("entry name cannot be empty").
				WithContext("input", e.Input).
				Build()
		}
		if seen[e.Name] {
			return foundationerrors.ValidationError("duplicate entry name: " + e.Name).
				WithContext("input", e.Input).
				Build()
		}
		seen[e.Name] = true
	}
	if opts.Stub && opts.StubLoader == "" {
		return foundationerrors.ValidationError("stubLoader cannot be empty in stub mode").Build()
	}
	return nil
}
