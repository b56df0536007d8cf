package xplane

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRREF(t *testing.T) {
	pkt, err := EncodeRREF(5, 7, "sim/flightmodel/controls/parkbrake")
	require.NoError(t, err)
	assert.Len(t, pkt, RREFRequestLen)
	assert.Equal(t, "RREF\x00", string(pkt[:HeaderLen]))

	freq, index, name, err := ParseRREFRequest(pkt)
	require.NoError(t, err)
	assert.Equal(t, int32(5), freq)
	assert.Equal(t, int32(7), index)
	assert.Equal(t, "sim/flightmodel/controls/parkbrake", name)

	_, err = EncodeRREF(1, 0, strings.Repeat("x", RREFNameLen))
	assert.Error(t, err)
}

func TestParseRREF(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		checkFunc func(*testing.T, []Value, error)
	}{
		{
			name: "two values",
			data: EncodeRREFResponse([]Value{{Index: 0, Value: 1}, {Index: 3, Value: 29.92}}),
			checkFunc: func(t *testing.T, v []Value, err error) {
				require.NoError(t, err)
				assert.Equal(t, []Value{{Index: 0, Value: 1}, {Index: 3, Value: 29.92}}, v)
			},
		},
		{
			name: "partial trailing entry ignored",
			data: append(EncodeRREFResponse([]Value{{Index: 1, Value: 2}}), 0x01, 0x02, 0x03),
			checkFunc: func(t *testing.T, v []Value, err error) {
				require.NoError(t, err)
				assert.Equal(t, []Value{{Index: 1, Value: 2}}, v)
			},
		},
		{
			name: "header only",
			data: []byte("RREF,"),
			checkFunc: func(t *testing.T, v []Value, err error) {
				require.NoError(t, err)
				assert.Empty(t, v)
			},
		},
		{
			name: "too short",
			data: []byte("RRE"),
			checkFunc: func(t *testing.T, v []Value, err error) {
				assert.Error(t, err)
				assert.Nil(t, v)
			},
		},
		{
			name: "wrong label",
			data: []byte("DATA*\x00\x00\x00\x00\x00\x00\x00\x00"),
			checkFunc: func(t *testing.T, v []Value, err error) {
				assert.Error(t, err)
				assert.Nil(t, v)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseRREF(tt.data)
			tt.checkFunc(t, v, err)
		})
	}
}

func TestDREF(t *testing.T) {
	pkt, err := EncodeDREF("sim/aircraft/view/acf_ICAO[2]", 51)
	require.NoError(t, err)
	assert.Len(t, pkt, DREFLen)

	name, v, err := ParseDREF(pkt)
	require.NoError(t, err)
	assert.Equal(t, "sim/aircraft/view/acf_ICAO[2]", name)
	assert.Equal(t, float32(51), v)

	_, _, err = ParseDREF(pkt[:20])
	assert.Error(t, err)
}

func TestCMND(t *testing.T) {
	pkt := EncodeCMND("sim/flight_controls/brakes_max")
	assert.Equal(t, LabelCMND, Label(pkt))

	name, err := ParseCMND(pkt)
	require.NoError(t, err)
	assert.Equal(t, "sim/flight_controls/brakes_max", name)

	_, err = ParseCMND([]byte("RREF,x"))
	assert.Error(t, err)
	assert.Equal(t, "", Label([]byte("CM")))
}
