package stages

import (
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
)

var targets = map[string]api.Target{
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es6":    api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
}

// ParseTarget maps a target name to the esbuild language target; unknown names are esnext.
func ParseTarget(name string) api.Target {
	if t, ok := targets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return api.ESNext
}

// Transpile compiles TypeScript and JSX modules to plain JavaScript one
// module at a time.
type Transpile struct {
	target      api.Target
	minify      bool
	jsxFactory  string
	jsxFragment string
	define      map[string]string
	loaders     map[string]engine.Loader
}

// NewTranspile builds the stage. loaders maps extensions (".js") to loader names ("jsx").
func NewTranspile(target string, minify bool, jsxFactory, jsxFragment string, loaders, define map[string]string) *Transpile {
	t := &Transpile{
		target:      ParseTarget(target),
		minify:      minify,
		jsxFactory:  jsxFactory,
		jsxFragment: jsxFragment,
		define:      define,
		loaders:     make(map[string]engine.Loader),
	}
	for ext, name := range loaders {
		if l, ok := engine.ParseLoader(name); ok {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			t.loaders[strings.ToLower(ext)] = l
		}
	}
	return t
}

func (t *Transpile) Name() string { return "transpile" }

func (t *Transpile) Transform(m *engine.Module) error {
	loader := m.Loader
	if l, ok := t.loaders[strings.ToLower(filepath.Ext(m.ID))]; ok {
		loader = l
	}
	switch loader {
	case engine.LoaderTS, engine.LoaderTSX, engine.LoaderJSX:
	default:
		return nil
	}

	res := api.Transform(m.Code, api.TransformOptions{
		Loader:            loader.APILoader(),
		Target:            t.target,
		Sourcefile:        m.ID,
		MinifyWhitespace:  t.minify,
		MinifySyntax:      t.minify,
		MinifyIdentifiers: t.minify,
		JSXFactory:        t.jsxFactory,
		JSXFragment:       t.jsxFragment,
		Define:            t.define,
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		e := res.Errors[0]
		b := errors.BuildError("transpile failed").
			WithContext(logfields.KeyModule, m.ID).
			WithContext("details", e.Text)
		if e.Location != nil {
			b = b.WithContext("line", e.Location.Line)
		}
		return b.Build()
	}
	m.Code = string(res.Code)
	m.Loader = engine.LoaderJS
	return nil
}
