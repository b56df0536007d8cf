package memhost

import (
	"testing"

	"acfkit/internal/xplm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFieldRoundTrip(t *testing.T) {
	h := New()
	h.DefineString("sim/aircraft/view/acf_ICAO", "B738", xplm.ICAOSize)

	ref := h.FindDataRef("sim/aircraft/view/acf_ICAO")
	require.True(t, ref.Valid())
	assert.Equal(t, "B738", xplm.ReadString(h, ref, xplm.ICAOSize))

	xplm.WriteString(h, ref, "A20N", xplm.ICAOSize)
	assert.Equal(t, "A20N", h.String("sim/aircraft/view/acf_ICAO"))
	assert.Equal(t, 1, h.Writes("sim/aircraft/view/acf_ICAO"))
}

func TestReadStringTruncates(t *testing.T) {
	h := New()
	h.DefineString("x/long", "ABCDEFGH", 16)
	ref := h.FindDataRef("x/long")

	assert.Equal(t, "ABC", xplm.ReadString(h, ref, 4))
	assert.Equal(t, "", xplm.ReadString(h, xplm.DataRef(0), 4))
}

func TestMistypedAccessReadsZero(t *testing.T) {
	h := New()
	h.DefineFloat("x/f", 1.5)
	ref := h.FindDataRef("x/f")

	assert.Equal(t, 0, h.GetInt(ref))
	h.SetInt(ref, 3)
	assert.Equal(t, float32(1.5), h.Float("x/f"))
	assert.Equal(t, 0, h.Writes("x/f"))
}

func TestCommandHandlersAndLog(t *testing.T) {
	h := New()
	ref := h.CreateCommand("acfkit/test", "test")

	var phases []xplm.Phase
	unregister := h.RegisterCommandHandler(ref, true, func(_ xplm.CommandRef, p xplm.Phase) bool {
		phases = append(phases, p)
		return true
	})

	h.CommandOnce(ref)
	assert.Equal(t, []xplm.Phase{xplm.PhaseBegin, xplm.PhaseEnd}, phases)
	assert.Equal(t, 1, h.Count("acfkit/test"))

	unregister()
	h.CommandOnce(ref)
	assert.Len(t, phases, 2)
	assert.Equal(t, 2, h.Count("acfkit/test"))
}

func TestSharedValuesHandshake(t *testing.T) {
	h := New()
	_, err := h.SharedValues()
	assert.ErrorIs(t, err, xplm.ErrNoSharedValues)

	h.EnableSharedValues("2.1.0", map[string]float64{"A.B": 1})
	sv, err := h.SharedValues()
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", sv.Version())
	id := sv.ValueID("A.B")
	require.GreaterOrEqual(t, id, 0)
	sv.SetInt(id, 0)
	assert.Equal(t, 0.0, sv.GetFloat(id))
	assert.Equal(t, -1, sv.ValueID("A.C"))
	assert.Equal(t, 2, h.Handshakes())
}

func TestParseScenarioYAML(t *testing.T) {
	doc := []byte(`
version: 1
model:
  file: "b738.acf"
  path: "Aircraft/B737-800X/b738.acf"
plugins: ["zibomod.by.Zibo"]
strings:
  sim/aircraft/view/acf_descrip: "Boeing 737-800X"
ints:
  sim/aircraft/engine/acf_num_engines: 2
int_arrays:
  sim/aircraft/prop/acf_en_type: [5, 5]
commands: ["laminar/B738/push_button/park_brake_on_off"]
`)
	s, err := ParseScenarioYAML(doc)
	require.NoError(t, err)

	h := New()
	s.Apply(h)
	assert.True(t, h.FindPluginBySignature("zibomod.by.Zibo"))
	assert.Equal(t, "Boeing 737-800X", h.String("sim/aircraft/view/acf_descrip"))
	assert.Equal(t, 2, h.Int("sim/aircraft/engine/acf_num_engines"))
	assert.True(t, h.FindCommand("laminar/B738/push_button/park_brake_on_off").Valid())
	file, path := h.UserAircraftModel()
	assert.Equal(t, "b738.acf", file)
	assert.Equal(t, "Aircraft/B737-800X/b738.acf", path)
}

func TestParseScenarioYAML_Invalid(t *testing.T) {
	_, err := ParseScenarioYAML([]byte("version: 2\n"))
	assert.EqualError(t, err, "unsupported scenario version 2")

	_, err = ParseScenarioYAML([]byte("shared_values:\n  values: {}\n"))
	assert.EqualError(t, err, "shared_values.version is required")
}
