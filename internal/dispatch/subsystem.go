package dispatch

import (
	"fmt"

	"acfkit/internal/session"
	"acfkit/internal/xplm"
)

// Subsystem names the host identifiers one group of actions needs for a
// variant. Its handles are resolved together on first use and dropped when
// the aircraft changes.
type Subsystem struct {
	Name         string
	DataRefs     []string
	Commands     []string
	SharedValues []string
}

// Handles are the resolved identifiers of a Subsystem.
type Handles struct {
	refs   map[string]xplm.DataRef
	cmds   map[string]xplm.CommandRef
	ids    map[string]int
	shared xplm.SharedValues
}

// DataRef returns the handle of a dataref the subsystem declared.
func (h Handles) DataRef(name string) xplm.DataRef { return h.refs[name] }

// Command returns the handle of a command the subsystem declared.
func (h Handles) Command(name string) xplm.CommandRef { return h.cmds[name] }

// SetValue writes a shared value the subsystem declared.
func (h Handles) SetValue(path string, v float64) {
	if id, ok := h.ids[path]; ok && h.shared != nil {
		h.shared.SetFloat(id, v)
	}
}

// Value reads a shared value the subsystem declared.
func (h Handles) Value(path string) float64 {
	if id, ok := h.ids[path]; ok && h.shared != nil {
		return h.shared.GetFloat(id)
	}
	return 0
}

// bind returns the handles of sub, resolving them when the subsystem is
// unbound. A failed resolution is retried on the next call.
func (d *Dispatcher) bind(sub *Subsystem) (Handles, error) {
	b, ok := d.bindings[sub.Name]
	if !ok {
		b = session.NewBinding[Handles](d.ctx, sub.Name)
		d.bindings[sub.Name] = b
	}
	h, ok := b.EnsureBound(func() (Handles, error) { return d.resolve(sub) })
	if !ok {
		return Handles{}, fmt.Errorf("%s: %w", sub.Name, ErrUnavailable)
	}
	return h, nil
}

// Bound reports whether the named subsystem currently holds handles.
func (d *Dispatcher) Bound(name string) bool {
	b, ok := d.bindings[name]
	return ok && b.Bound()
}

func (d *Dispatcher) resolve(sub *Subsystem) (Handles, error) {
	h := Handles{
		refs: make(map[string]xplm.DataRef, len(sub.DataRefs)),
		cmds: make(map[string]xplm.CommandRef, len(sub.Commands)),
	}
	for _, name := range sub.DataRefs {
		ref := d.host.FindDataRef(name)
		if !ref.Valid() {
			return Handles{}, session.Missing("dataref", name)
		}
		h.refs[name] = ref
	}
	for _, name := range sub.Commands {
		ref, err := d.findCommand(name)
		if err != nil {
			return Handles{}, err
		}
		h.cmds[name] = ref
	}
	if len(sub.SharedValues) > 0 {
		sv, err := d.ctx.SharedValues()
		if err != nil {
			return Handles{}, err
		}
		h.shared = sv
		h.ids = make(map[string]int, len(sub.SharedValues))
		for _, path := range sub.SharedValues {
			id := sv.ValueID(path)
			if id < 0 {
				return Handles{}, session.Missing("shared value", path)
			}
			h.ids[path] = id
		}
	}
	return h, nil
}

// findCommand resolves a command by name through the name cache. Missing
// commands are not cached so they are looked up again next time.
func (d *Dispatcher) findCommand(name string) (xplm.CommandRef, error) {
	if ref, ok := d.commands.Get(name); ok {
		return ref, nil
	}
	ref := d.host.FindCommand(name)
	if !ref.Valid() {
		return 0, session.Missing("command", name)
	}
	d.commands.Add(name, ref)
	return ref, nil
}
