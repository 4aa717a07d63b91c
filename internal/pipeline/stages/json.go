package stages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "implements": true, "import": true, "in": true, "instanceof": true, "interface": true,
	"let": true, "new": true, "null": true, "package": true, "private": true, "protected": true,
	"public": true, "return": true, "static": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "await": true, "arguments": true, "eval": true,
}

// JSON turns JSON modules into ES modules with a default export and, for
// objects, one named export per identifier-safe key.
type JSON struct {
	PreferConst  bool
	NamedExports bool
}

func NewJSON(preferConst, namedExports bool) *JSON {
	return &JSON{PreferConst: preferConst, NamedExports: namedExports}
}

func (j *JSON) Name() string { return "json" }

func (j *JSON) Transform(m *engine.Module) error {
	if m.Loader != engine.LoaderJSON {
		return nil
	}
	code, err := j.render([]byte(m.Code))
	if err != nil {
		return errors.WrapError(err, errors.CategoryBuild, "invalid JSON module").
			WithContext(logfields.KeyModule, m.ID).
			Build()
	}
	m.Code = code
	m.Loader = engine.LoaderJS
	return nil
}

// render keeps the source text of every value, so key order and number
// spelling (1e400, 0.10) survive.
func (j *JSON) render(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", fmt.Errorf("malformed JSON")
	}
	trimmed := bytes.TrimSpace(data)
	if !j.NamedExports || len(trimmed) == 0 || trimmed[0] != '{' {
		lit, err := literal(trimmed)
		if err != nil {
			return "", err
		}
		return "export default " + lit + ";\n", nil
	}

	keys, values, err := decodeObject(trimmed)
	if err != nil {
		return "", err
	}

	decl := "var"
	if j.PreferConst {
		decl = "const"
	}
	var b strings.Builder
	props := make([]string, 0, len(keys))
	for _, k := range keys {
		lit, err := literal(values[k])
		if err != nil {
			return "", err
		}
		quoted, err := quote(k)
		if err != nil {
			return "", err
		}
		if identifierRe.MatchString(k) && !reservedWords[k] {
			fmt.Fprintf(&b, "export %s %s = %s;\n", decl, k, lit)
			props = append(props, fmt.Sprintf("\t%s: %s", quoted, k))
			continue
		}
		props = append(props, fmt.Sprintf("\t%s: %s", quoted, lit))
	}
	b.WriteString("export default {\n")
	b.WriteString(strings.Join(props, ",\n"))
	b.WriteString("\n};\n")
	return b.String(), nil
}

// decodeObject reads the top-level members in source order. A repeated key
// keeps its first position and its last value, as JSON.parse does.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	return keys, values, nil
}

// literal compacts a JSON value into a JavaScript expression.
func literal(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func quote(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
