package stages

import (
	"regexp"
	"strings"

	"github.com/vzt7/unbuild/internal/engine"
)

const cjsShim = `
// -- CommonJS Shims --
import __cjs_url__ from "url";
import __cjs_path__ from "path";
import __cjs_mod__ from "module";
const __filename = __cjs_url__.fileURLToPath(import.meta.url);
const __dirname = __cjs_path__.dirname(__filename);
const require = __cjs_mod__.createRequire(import.meta.url);
`

var (
	cjsSyntaxRe = regexp.MustCompile(`\b__filename\b|\b__dirname\b|\brequire\(|\brequire\.resolve\(`)
	esmImportRe = regexp.MustCompile(`(?m)^import\s+(?:[^;"']*?\s*from\s*)?"[^"]+";?`)
)

// CJSBridge gives ESM chunks that use CommonJS globals a local __filename,
// __dirname and require.
type CJSBridge struct{}

func NewCJSBridge() *CJSBridge { return &CJSBridge{} }

func (CJSBridge) Name() string { return "cjs-bridge" }

func (CJSBridge) RenderChunk(c *engine.OutputFile, format engine.Format) error {
	if format != engine.FormatESM {
		return nil
	}
	c.Code = []byte(InsertCJSShim(string(c.Code)))
	return nil
}

// InsertCJSShim places the shim after the last top-level import, or at the
// start of the code (after any interpreter directive) when there is none.
func InsertCJSShim(code string) string {
	if !cjsSyntaxRe.MatchString(code) {
		return code
	}
	at := 0
	if locs := esmImportRe.FindAllStringIndex(code, -1); len(locs) > 0 {
		at = locs[len(locs)-1][1]
	} else if strings.HasPrefix(code, "#!") {
		if nl := strings.IndexByte(code, '\n'); nl >= 0 {
			at = nl + 1
		}
	}
	return code[:at] + cjsShim + code[at:]
}
