package memhost

import "acfkit/internal/xplm"

// DefineCommand makes a command resolvable, as if a plugin had created it.
func (h *Host) DefineCommand(name string) xplm.CommandRef {
	return h.CreateCommand(name, name)
}

// RemoveCommand makes a command unresolvable by name. Handles resolved
// earlier keep working, like in the simulator.
func (h *Host) RemoveCommand(name string) { delete(h.commandIndex, name) }

func (h *Host) FindCommand(name string) xplm.CommandRef { return h.commandIndex[name] }

func (h *Host) CreateCommand(name, description string) xplm.CommandRef {
	if ref, ok := h.commandIndex[name]; ok {
		return ref
	}
	h.commands = append(h.commands, &command{name: name, description: description})
	ref := xplm.CommandRef(len(h.commands))
	h.commandIndex[name] = ref
	return ref
}

func (h *Host) RegisterCommandHandler(ref xplm.CommandRef, before bool, handler xplm.CommandHandler) func() {
	c := h.command(ref)
	if c == nil || handler == nil {
		return func() {}
	}
	h.nextHandler++
	id := h.nextHandler
	c.handlers = append(c.handlers, handlerEntry{id: id, before: before, h: handler})
	return func() {
		for i, e := range c.handlers {
			if e.id == id {
				c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
				return
			}
		}
	}
}

func (h *Host) command(ref xplm.CommandRef) *command {
	if !ref.Valid() || int(ref) > len(h.commands) {
		return nil
	}
	return h.commands[ref-1]
}

func (h *Host) run(ref xplm.CommandRef, phase xplm.Phase) {
	c := h.command(ref)
	if c == nil {
		return
	}
	h.invocations = append(h.invocations, Invocation{Name: c.name, Phase: phase})
	for _, before := range []bool{true, false} {
		for _, e := range append([]handlerEntry(nil), c.handlers...) {
			if e.before != before {
				continue
			}
			if !e.h(ref, phase) {
				return
			}
		}
	}
}

func (h *Host) CommandOnce(ref xplm.CommandRef) {
	h.run(ref, xplm.PhaseBegin)
	h.run(ref, xplm.PhaseEnd)
}

func (h *Host) CommandBegin(ref xplm.CommandRef) { h.run(ref, xplm.PhaseBegin) }

func (h *Host) CommandEnd(ref xplm.CommandRef) { h.run(ref, xplm.PhaseEnd) }

// Fire runs a command by name, as a key binding in the simulator would.
// It reports false when the command does not exist.
func (h *Host) Fire(name string, phase xplm.Phase) bool {
	ref := h.FindCommand(name)
	if !ref.Valid() {
		return false
	}
	h.run(ref, phase)
	return true
}

// Invocations returns every command phase issued so far.
func (h *Host) Invocations() []Invocation {
	return append([]Invocation(nil), h.invocations...)
}

// Count returns how many times the named command began.
func (h *Host) Count(name string) int {
	n := 0
	for _, inv := range h.invocations {
		if inv.Name == name && inv.Phase == xplm.PhaseBegin {
			n++
		}
	}
	return n
}

// ResetInvocations clears the invocation log.
func (h *Host) ResetInvocations() { h.invocations = nil }
