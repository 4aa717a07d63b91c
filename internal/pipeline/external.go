package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

const verdictCacheSize = 4096

var srcPathRe = regexp.MustCompile(`src[\\/]`)

// PackageName extracts the package part of a bare module specifier:
// "left-pad/utils" -> "left-pad", "@scope/pkg/x" -> "@scope/pkg".
func PackageName(id string) string {
	parts := strings.Split(id, "/")
	if strings.HasPrefix(id, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// Policy decides which module specifiers stay out of the bundle. Verdicts
// are deterministic per specifier and memoized.
type Policy struct {
	pkgName  string
	explicit map[string]bool
	inline   bool
	alias    []stages.AliasEntry
	warn     func(string)
	verdicts *lru.Cache[string, bool]
}

// NewPolicy builds a policy for pkgName. warn receives implicit-external notices.
func NewPolicy(pkgName string, externals []string, inline bool, alias []stages.AliasEntry, warn func(string)) *Policy {
	cache, err := lru.New[string, bool](verdictCacheSize)
	if err != nil {
		panic(err)
	}
	p := &Policy{
		pkgName:  pkgName,
		explicit: make(map[string]bool, len(externals)),
		inline:   inline,
		alias:    alias,
		warn:     warn,
		verdicts: cache,
	}
	for _, e := range externals {
		p.explicit[e] = true
	}
	return p
}

// IsExternal reports whether id is left unbundled.
func (p *Policy) IsExternal(id string) bool {
	if v, ok := p.verdicts.Get(id); ok {
		return v
	}
	v := p.decide(id)
	p.verdicts.Add(id, v)
	return v
}

func (p *Policy) decide(id string) bool {
	resolved := p.resolveAlias(id)
	if p.explicit[id] || p.explicit[resolved] || p.explicit[PackageName(id)] || p.explicit[PackageName(resolved)] {
		return true
	}
	if p.inline {
		return false
	}
	for _, candidate := range []string{id, resolved} {
		if p.isInternal(candidate) {
			return false
		}
	}
	if p.warn != nil {
		p.warn("Implicit external " + id)
	}
	return true
}

func (p *Policy) isInternal(id string) bool {
	switch {
	case strings.HasPrefix(id, "."):
		return true
	case filepath.IsAbs(id) || strings.HasPrefix(id, "/"):
		return true
	case srcPathRe.MatchString(id):
		return true
	case p.pkgName != "" && strings.HasPrefix(id, p.pkgName):
		return true
	}
	return false
}

func (p *Policy) resolveAlias(id string) string {
	for _, e := range p.alias {
		if e.Find == "" {
			continue
		}
		if id == e.Find || strings.HasPrefix(id, e.Find+"/") {
			return e.Replacement + strings.TrimPrefix(id, e.Find)
		}
	}
	return id
}
