package build

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/observability"
	"github.com/vzt7/unbuild/internal/util/sets"
)

// BuildEntry is one emitted chunk as recorded by the chunk graph recorder.
type BuildEntry struct {
	// Path is the chunk file name relative to the output directory.
	Path    string
	IsChunk bool
	// ChunkDependencies lists the chunks of the same output pass this one imports.
	ChunkDependencies []string
	Bytes             int
	// Exports is set for entry chunks only.
	Exports []string
}

// Context is the state of one build shared by the orchestrator and hook listeners.
type Context struct {
	ID      string
	Options *config.Options
	Hooks   *Hooks

	BuildEntries []BuildEntry
	// UsedImports holds imported specifiers that did not turn out to be emitted chunks.
	UsedImports sets.Set[string]

	mu       sync.Mutex
	warnings []string
	seen     map[string]bool
}

// NewContext starts a build context; a nil hooks gets an empty bus.
func NewContext(opts *config.Options, hooks *Hooks) *Context {
	if hooks == nil {
		hooks = NewHooks()
	}
	return &Context{
		ID:          uuid.NewString(),
		Options:     opts,
		Hooks:       hooks,
		UsedImports: sets.New[string](),
		seen:        map[string]bool{},
	}
}

// Warn records a warning once and logs it. Safe for concurrent use.
func (c *Context) Warn(msg string) {
	c.WarnContext(observability.WithBuildID(context.Background(), c.ID), msg)
}

// WarnContext is Warn with extra log attributes; ctx supplies the build id
// and stage.
func (c *Context) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	c.mu.Lock()
	if c.seen[msg] {
		c.mu.Unlock()
		return
	}
	c.seen[msg] = true
	c.warnings = append(c.warnings, msg)
	c.mu.Unlock()
	observability.WarnContext(ctx, msg, attrs...)
}

// Warnings returns the recorded warnings in first-seen order.
func (c *Context) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.warnings...)
}
