package memhost

import (
	"sort"

	"acfkit/internal/xplm"
)

// SharedValues is an in-memory vendor value tree.
type SharedValues struct {
	version string
	ids     map[string]int
	paths   []string
	values  []float64
}

var _ xplm.SharedValues = (*SharedValues)(nil)

// EnableSharedValues installs a shared value interface reporting version,
// populated with values. It replaces any previous tree.
func (h *Host) EnableSharedValues(version string, values map[string]float64) *SharedValues {
	sv := &SharedValues{version: version, ids: make(map[string]int)}
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		sv.ids[p] = len(sv.paths)
		sv.paths = append(sv.paths, p)
		sv.values = append(sv.values, values[p])
	}
	h.shared = sv
	return sv
}

// DisableSharedValues removes the interface; later handshakes fail.
func (h *Host) DisableSharedValues() { h.shared = nil }

// Handshakes returns how many handshakes were attempted.
func (h *Host) Handshakes() int { return h.handshakes }

func (h *Host) SharedValues() (xplm.SharedValues, error) {
	h.handshakes++
	if h.shared == nil {
		return nil, xplm.ErrNoSharedValues
	}
	return h.shared, nil
}

func (s *SharedValues) Version() string { return s.version }

func (s *SharedValues) ValueID(path string) int {
	if id, ok := s.ids[path]; ok {
		return id
	}
	return -1
}

func (s *SharedValues) valid(id int) bool { return id >= 0 && id < len(s.values) }

func (s *SharedValues) GetFloat(id int) float64 {
	if !s.valid(id) {
		return 0
	}
	return s.values[id]
}

func (s *SharedValues) SetFloat(id int, v float64) {
	if s.valid(id) {
		s.values[id] = v
	}
}

func (s *SharedValues) GetInt(id int) int { return int(s.GetFloat(id)) }

func (s *SharedValues) SetInt(id int, v int) { s.SetFloat(id, float64(v)) }

// Value returns a value by path, for assertions.
func (s *SharedValues) Value(path string) float64 { return s.GetFloat(s.ValueID(path)) }
