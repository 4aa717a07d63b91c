package stages

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
	"github.com/vzt7/unbuild/internal/shebang"
)

// Shebang lifts interpreter directives off entry modules and, while
// preserving, puts them back on the rendered entry chunks and marks the
// written files executable.
type Shebang struct {
	mu         sync.Mutex
	preserve   bool
	directives map[string]string
}

func NewShebang(preserve bool) *Shebang {
	return &Shebang{preserve: preserve, directives: make(map[string]string)}
}

func (s *Shebang) Name() string { return "shebang" }

// SetPreserve toggles re-emission; the declaration pass turns it off.
func (s *Shebang) SetPreserve(preserve bool) {
	s.mu.Lock()
	s.preserve = preserve
	s.mu.Unlock()
}

// Preserve reports whether directives are re-emitted.
func (s *Shebang) Preserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preserve
}

func (s *Shebang) Transform(m *engine.Module) error {
	if !m.IsEntry {
		return nil
	}
	directive := shebang.Get(m.Code)
	if directive == "" {
		return nil
	}
	s.mu.Lock()
	s.directives[filepath.Clean(m.ID)] = directive
	s.mu.Unlock()
	m.Code = shebang.Strip(m.Code)
	return nil
}

func (s *Shebang) RenderChunk(c *engine.OutputFile, _ engine.Format) error {
	if !c.IsEntry || !s.Preserve() || strings.HasPrefix(string(c.Code), "#!") {
		return nil
	}
	s.mu.Lock()
	directive := s.directives[filepath.Clean(c.FacadeModuleID)]
	s.mu.Unlock()
	if directive == "" {
		return nil
	}
	c.Code = append([]byte(directive), c.Code...)
	return nil
}

func (s *Shebang) WriteBundle(dir string, out *engine.Output) error {
	if !s.Preserve() {
		return nil
	}
	for _, c := range out.Chunks() {
		if !c.IsEntry || !strings.HasPrefix(string(c.Code), "#!") {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(c.FileName))
		if err := shebang.MakeExecutable(p); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to mark entry executable").
				WithContext(logfields.KeyPath, p).
				Build()
		}
	}
	return nil
}
