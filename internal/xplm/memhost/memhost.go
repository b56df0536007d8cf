// Package memhost is an in-memory implementation of the xplm host surface.
// It backs the offline scenario mode and every test that needs a host.
//
// A Host is not safe for concurrent use; like a real simulator it expects
// all calls from one thread.
package memhost

import (
	"acfkit/internal/xplm"
)

type kind int

const (
	kindInt kind = iota
	kindFloat
	kindInts
	kindFloats
	kindBytes
)

type field struct {
	name   string
	kind   kind
	i      int
	f      float32
	ints   []int
	floats []float32
	bytes  []byte
}

type handlerEntry struct {
	id     int
	before bool
	h      xplm.CommandHandler
}

type command struct {
	name        string
	description string
	handlers    []handlerEntry
}

// Invocation records one phase of a command sent through the host.
type Invocation struct {
	Name  string
	Phase xplm.Phase
}

// Host is an in-memory simulator host.
type Host struct {
	fieldIndex map[string]xplm.DataRef
	fields     []*field
	writes     map[string]int

	commandIndex map[string]xplm.CommandRef
	commands     []*command
	invocations  []Invocation
	nextHandler  int

	plugins map[string]bool

	modelFile string
	modelPath string

	shared     *SharedValues
	handshakes int
}

var (
	_ xplm.Host                 = (*Host)(nil)
	_ xplm.SharedValuesProvider = (*Host)(nil)
)

// New creates an empty host.
func New() *Host {
	return &Host{
		fieldIndex:   make(map[string]xplm.DataRef),
		writes:       make(map[string]int),
		commandIndex: make(map[string]xplm.CommandRef),
		plugins:      make(map[string]bool),
	}
}

func (h *Host) define(name string, k kind) *field {
	if ref, ok := h.fieldIndex[name]; ok {
		f := h.fields[ref-1]
		f.kind = k
		return f
	}
	f := &field{name: name, kind: k}
	h.fields = append(h.fields, f)
	h.fieldIndex[name] = xplm.DataRef(len(h.fields))
	return f
}

// DefineInt creates (or retypes) an int field.
func (h *Host) DefineInt(name string, v int) { h.define(name, kindInt).i = v }

// DefineFloat creates (or retypes) a float field.
func (h *Host) DefineFloat(name string, v float32) { h.define(name, kindFloat).f = v }

// DefineInts creates an int array field.
func (h *Host) DefineInts(name string, v []int) {
	h.define(name, kindInts).ints = append([]int(nil), v...)
}

// DefineFloats creates a float array field.
func (h *Host) DefineFloats(name string, v []float32) {
	h.define(name, kindFloats).floats = append([]float32(nil), v...)
}

// DefineString creates a byte field of the given size holding s.
func (h *Host) DefineString(name, s string, size int) {
	if size <= len(s) {
		size = len(s) + 1
	}
	b := make([]byte, size)
	copy(b, s)
	h.define(name, kindBytes).bytes = b
}

// Remove deletes a field; handles resolved earlier become dangling and read
// as zero.
func (h *Host) Remove(name string) {
	ref, ok := h.fieldIndex[name]
	if !ok {
		return
	}
	delete(h.fieldIndex, name)
	h.fields[ref-1] = &field{name: name, kind: -1}
}

func (h *Host) lookup(name string) *field {
	ref, ok := h.fieldIndex[name]
	if !ok {
		return nil
	}
	return h.fields[ref-1]
}

// Int returns the current value of an int field.
func (h *Host) Int(name string) int {
	if f := h.lookup(name); f != nil {
		return f.i
	}
	return 0
}

// Float returns the current value of a float field.
func (h *Host) Float(name string) float32 {
	if f := h.lookup(name); f != nil {
		return f.f
	}
	return 0
}

// Floats returns a copy of a float array field.
func (h *Host) Floats(name string) []float32 {
	if f := h.lookup(name); f != nil {
		return append([]float32(nil), f.floats...)
	}
	return nil
}

// String returns a byte field up to its first NUL.
func (h *Host) String(name string) string {
	f := h.lookup(name)
	if f == nil {
		return ""
	}
	for i, c := range f.bytes {
		if c == 0 {
			return string(f.bytes[:i])
		}
	}
	return string(f.bytes)
}

// Writes returns how many times a field was written through the host
// interface.
func (h *Host) Writes(name string) int { return h.writes[name] }

// AddPlugin marks a plugin signature as loaded.
func (h *Host) AddPlugin(signature string) { h.plugins[signature] = true }

// RemovePlugin marks a plugin signature as not loaded.
func (h *Host) RemovePlugin(signature string) { delete(h.plugins, signature) }

// SetModel sets the user aircraft model file name and path.
func (h *Host) SetModel(fileName, path string) {
	h.modelFile = fileName
	h.modelPath = path
}

func (h *Host) get(ref xplm.DataRef, k kind) *field {
	if !ref.Valid() || int(ref) > len(h.fields) {
		return nil
	}
	f := h.fields[ref-1]
	if f.kind != k {
		return nil
	}
	return f
}

func (h *Host) FindDataRef(name string) xplm.DataRef { return h.fieldIndex[name] }

func (h *Host) GetInt(ref xplm.DataRef) int {
	if f := h.get(ref, kindInt); f != nil {
		return f.i
	}
	return 0
}

func (h *Host) SetInt(ref xplm.DataRef, v int) {
	if f := h.get(ref, kindInt); f != nil {
		f.i = v
		h.writes[f.name]++
	}
}

func (h *Host) GetFloat(ref xplm.DataRef) float32 {
	if f := h.get(ref, kindFloat); f != nil {
		return f.f
	}
	return 0
}

func (h *Host) SetFloat(ref xplm.DataRef, v float32) {
	if f := h.get(ref, kindFloat); f != nil {
		f.f = v
		h.writes[f.name]++
	}
}

func (h *Host) GetIntArray(ref xplm.DataRef, dst []int, offset int) int {
	f := h.get(ref, kindInts)
	if f == nil || offset < 0 || offset >= len(f.ints) {
		return 0
	}
	return copy(dst, f.ints[offset:])
}

func (h *Host) GetFloatArray(ref xplm.DataRef, dst []float32, offset int) int {
	f := h.get(ref, kindFloats)
	if f == nil || offset < 0 || offset >= len(f.floats) {
		return 0
	}
	return copy(dst, f.floats[offset:])
}

func (h *Host) SetFloatArray(ref xplm.DataRef, src []float32, offset int) {
	f := h.get(ref, kindFloats)
	if f == nil || offset < 0 || offset >= len(f.floats) {
		return
	}
	copy(f.floats[offset:], src)
	h.writes[f.name]++
}

func (h *Host) GetBytes(ref xplm.DataRef, dst []byte, offset int) int {
	f := h.get(ref, kindBytes)
	if f == nil || offset < 0 || offset >= len(f.bytes) {
		return 0
	}
	return copy(dst, f.bytes[offset:])
}

func (h *Host) SetBytes(ref xplm.DataRef, src []byte, offset int) {
	f := h.get(ref, kindBytes)
	if f == nil || offset < 0 || offset >= len(f.bytes) {
		return
	}
	n := copy(f.bytes[offset:], src)
	// Keep the field terminated when the write fills it completely.
	if offset+n == len(f.bytes) && n > 0 {
		f.bytes[len(f.bytes)-1] = 0
	}
	h.writes[f.name]++
}

func (h *Host) UserAircraftModel() (string, string) { return h.modelFile, h.modelPath }

func (h *Host) FindPluginBySignature(signature string) bool { return h.plugins[signature] }
