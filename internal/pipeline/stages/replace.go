package stages

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vzt7/unbuild/internal/engine"
)

// Replace substitutes configured identifiers and expressions with literal code.
type Replace struct {
	values            map[string]string
	re                *regexp.Regexp
	preventAssignment bool
}

// NewReplace builds the stage; longer keys win over their prefixes.
func NewReplace(values map[string]string, preventAssignment bool) *Replace {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	r := &Replace{values: values, preventAssignment: preventAssignment}
	if len(keys) > 0 {
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = regexp.QuoteMeta(k)
		}
		r.re = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return r
}

func (r *Replace) Name() string { return "replace" }

func (r *Replace) Transform(m *engine.Module) error {
	if r.re == nil || !isScript(m.Loader) {
		return nil
	}
	code := m.Code
	matches := r.re.FindAllStringSubmatchIndex(code, -1)
	if len(matches) == 0 {
		return nil
	}
	var b strings.Builder
	last := 0
	for _, loc := range matches {
		start, end := loc[2], loc[3]
		if r.skip(code, end) {
			continue
		}
		b.WriteString(code[last:start])
		b.WriteString(r.values[code[start:end]])
		last = end
	}
	b.WriteString(code[last:])
	m.Code = b.String()
	return nil
}

// skip reports matches that continue into a member chain, and assignment
// targets when preventAssignment is set.
func (r *Replace) skip(code string, end int) bool {
	if end < len(code) && code[end] == '.' {
		return true
	}
	if !r.preventAssignment {
		return false
	}
	rest := strings.TrimLeft(code[end:], " \t")
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==") && !strings.HasPrefix(rest, "=>")
}

func isScript(l engine.Loader) bool {
	switch l {
	case engine.LoaderJS, engine.LoaderJSX, engine.LoaderTS, engine.LoaderTSX:
		return true
	}
	return false
}
