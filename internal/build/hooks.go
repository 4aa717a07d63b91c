package build

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/logfields"
)

// HookName identifies a lifecycle point.
type HookName string

const (
	HookOptionsPrepared             HookName = "options-prepared"
	HookCompiled                    HookName = "compiled"
	HookDeclarationsOptionsPrepared HookName = "declarations-options-prepared"
	HookDeclarationsCompiled        HookName = "declarations-compiled"
	HookFinished                    HookName = "finished"
)

// Event is a lifecycle notification.
type Event interface {
	Hook() HookName
}

// OptionsPrepared fires once the engine configuration is composed;
// listeners may modify Config before compilation.
type OptionsPrepared struct {
	Build  *Context
	Config *engine.Config
}

// Compiled fires after the main compilation, before any output is written.
type Compiled struct {
	Build  *Context
	Bundle engine.Bundle
}

// DeclarationsOptionsPrepared fires before the declaration compilation.
type DeclarationsOptionsPrepared struct {
	Build  *Context
	Config *engine.Config
}

// DeclarationsCompiled fires after the declaration compilation.
type DeclarationsCompiled struct {
	Build  *Context
	Bundle engine.Bundle
}

// Finished fires at the end of a successful build, in both modes.
type Finished struct {
	Build *Context
}

func (OptionsPrepared) Hook() HookName             { return HookOptionsPrepared }
func (Compiled) Hook() HookName                    { return HookCompiled }
func (DeclarationsOptionsPrepared) Hook() HookName { return HookDeclarationsOptionsPrepared }
func (DeclarationsCompiled) Hook() HookName        { return HookDeclarationsCompiled }
func (Finished) Hook() HookName                    { return HookFinished }

// Listener handles an Event; return error to abort the build.
type Listener func(ctx context.Context, e Event) error

// Hooks is a synchronous lifecycle event bus.
type Hooks struct {
	mu        sync.RWMutex
	listeners map[HookName][]Listener
}

func NewHooks() *Hooks { return &Hooks{listeners: map[HookName][]Listener{}} }

// Subscribe registers a listener for a hook.
func (h *Hooks) Subscribe(name HookName, l Listener) {
	if l == nil {
		return
	}
	h.mu.Lock()
	h.listeners[name] = append(h.listeners[name], l)
	h.mu.Unlock()
}

// On registers a listener typed to one event.
func On[E Event](h *Hooks, fn func(ctx context.Context, e E) error) {
	var zero E
	h.Subscribe(zero.Hook(), func(ctx context.Context, e Event) error {
		typed, ok := e.(E)
		if !ok {
			return nil
		}
		return fn(ctx, typed)
	})
}

// Call delivers e to its listeners in registration order, stopping at the first error.
func (h *Hooks) Call(ctx context.Context, e Event) error {
	h.mu.RLock()
	ls := append([]Listener(nil), h.listeners[e.Hook()]...)
	h.mu.RUnlock()
	if len(ls) > 0 {
		slog.Debug("Calling hook", logfields.Hook(string(e.Hook())), logfields.Count(len(ls)))
	}
	for _, l := range ls {
		if err := l(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of listeners registered for name.
func (h *Hooks) Len(name HookName) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[name])
}
