package stages

import (
	"strings"

	"github.com/vzt7/unbuild/internal/engine"
)

// AliasEntry rewrites a specifier (or a specifier's leading path segment) to Replacement.
type AliasEntry struct {
	Find        string
	Replacement string
}

// Alias rewrites module specifiers before resolution. The first matching entry wins.
type Alias struct {
	entries []AliasEntry
}

func NewAlias(entries []AliasEntry) *Alias {
	return &Alias{entries: entries}
}

func (a *Alias) Name() string { return "alias" }

func (a *Alias) ResolveID(args engine.ResolveArgs, resolve engine.ResolveFunc) (*engine.ResolveResult, error) {
	for _, e := range a.entries {
		if e.Find == "" {
			continue
		}
		if args.Path != e.Find && !strings.HasPrefix(args.Path, e.Find+"/") {
			continue
		}
		target := e.Replacement + strings.TrimPrefix(args.Path, e.Find)
		resolved, err := resolve(target, args)
		if err != nil {
			return nil, err
		}
		return &engine.ResolveResult{Path: resolved}, nil
	}
	return nil, nil
}
