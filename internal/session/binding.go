package session

import (
	"fmt"
	"log/slog"
)

// MissingError names a host identifier a subsystem needs but could not
// resolve.
type MissingError struct {
	Kind string
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Missing returns a *MissingError for a host identifier of the given kind
// ("dataref", "command", "shared value").
func Missing(kind, name string) error {
	return &MissingError{Kind: kind, Name: name}
}

// Unbinder is anything whose resolved handles are dropped on Reset.
type Unbinder interface {
	Unbind()
}

// Binding holds the handles of one subsystem. It starts Unbound, becomes
// Bound on the first successful resolution and only goes back to Unbound
// when the owning Context is Reset.
type Binding[T any] struct {
	name    string
	log     *slog.Logger
	bound   bool
	handles T
}

// NewBinding creates an unbound binding named after its subsystem and
// registers it with c so Reset unbinds it.
func NewBinding[T any](c *Context, name string) *Binding[T] {
	b := &Binding[T]{name: name, log: c.log}
	c.Register(b)
	return b
}

// Name returns the subsystem name.
func (b *Binding[T]) Name() string { return b.name }

// Bound reports whether the handles are resolved.
func (b *Binding[T]) Bound() bool { return b.bound }

// EnsureBound returns the handles, resolving them first when unbound. A
// failed resolution leaves the binding unbound; the next call tries again.
func (b *Binding[T]) EnsureBound(resolve func() (T, error)) (T, bool) {
	if b.bound {
		return b.handles, true
	}
	h, err := resolve()
	if err != nil {
		var zero T
		b.log.Debug("Subsystem not ready", "subsystem", b.name, "error", err)
		return zero, false
	}
	b.handles = h
	b.bound = true
	b.log.Debug("Subsystem bound", "subsystem", b.name)
	return h, true
}

// Unbind drops the handles.
func (b *Binding[T]) Unbind() {
	var zero T
	b.handles = zero
	b.bound = false
}
