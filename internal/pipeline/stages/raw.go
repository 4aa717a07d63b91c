package stages

import (
	"path/filepath"
	"strings"

	"github.com/vzt7/unbuild/internal/engine"
)

// DefaultRawExtensions load as a default-exported string.
var DefaultRawExtensions = []string{".md", ".txt", ".css", ".htm", ".html"}

// Raw exports text files as a string.
type Raw struct {
	extensions map[string]bool
}

func NewRaw(extensions ...string) *Raw {
	if len(extensions) == 0 {
		extensions = DefaultRawExtensions
	}
	r := &Raw{extensions: make(map[string]bool, len(extensions))}
	for _, e := range extensions {
		r.extensions[strings.ToLower(e)] = true
	}
	return r
}

func (r *Raw) Name() string { return "raw" }

func (r *Raw) Transform(m *engine.Module) error {
	if !r.extensions[strings.ToLower(filepath.Ext(m.ID))] {
		return nil
	}
	lit, err := quote(m.Code)
	if err != nil {
		return err
	}
	m.Code = "export default " + lit + ";\n"
	m.Loader = engine.LoaderJS
	return nil
}
