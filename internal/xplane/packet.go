package xplane

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// UDP packet layout constants
const (
	// HeaderLen is the four letter label plus one pad byte.
	HeaderLen = 5

	RREFNameLen = 400
	DREFNameLen = 500

	// RREFRequestLen is header + frequency + index + name (413 bytes).
	RREFRequestLen = HeaderLen + 4 + 4 + RREFNameLen
	// DREFLen is header + value + name (509 bytes).
	DREFLen = HeaderLen + 4 + DREFNameLen

	rrefEntryLen = 8
)

// Packet labels
const (
	LabelRREF = "RREF"
	LabelDREF = "DREF"
	LabelCMND = "CMND"
)

// Value is one entry of an RREF response.
type Value struct {
	Index int32
	Value float32
}

// EncodeRREF builds a subscription for name at freq packets per second. A
// frequency of zero cancels the subscription with that index.
func EncodeRREF(freq, index int32, name string) ([]byte, error) {
	if len(name) >= RREFNameLen {
		return nil, fmt.Errorf("dataref name too long for RREF: %d bytes", len(name))
	}
	buf := make([]byte, RREFRequestLen)
	copy(buf[0:4], LabelRREF)
	binary.LittleEndian.PutUint32(buf[5:9], uint32(freq))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(index))
	copy(buf[13:], name)
	return buf, nil
}

// ParseRREFRequest decodes a subscription built by EncodeRREF.
func ParseRREFRequest(data []byte) (freq, index int32, name string, err error) {
	if len(data) < RREFRequestLen {
		return 0, 0, "", fmt.Errorf("RREF request too short: %d bytes", len(data))
	}
	if string(data[0:4]) != LabelRREF {
		return 0, 0, "", fmt.Errorf("invalid label: %q", data[0:4])
	}
	freq = int32(binary.LittleEndian.Uint32(data[5:9]))
	index = int32(binary.LittleEndian.Uint32(data[9:13]))
	return freq, index, cString(data[13:RREFRequestLen]), nil
}

// ParseRREF decodes an RREF response into its index/value pairs. Trailing
// bytes that do not form a whole entry are ignored.
func ParseRREF(data []byte) ([]Value, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("RREF packet too short: %d bytes", len(data))
	}
	if string(data[0:4]) != LabelRREF {
		return nil, fmt.Errorf("invalid label: %q", data[0:4])
	}
	values := make([]Value, 0, (len(data)-HeaderLen)/rrefEntryLen)
	for off := HeaderLen; off+rrefEntryLen <= len(data); off += rrefEntryLen {
		values = append(values, Value{
			Index: int32(binary.LittleEndian.Uint32(data[off : off+4])),
			Value: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4 : off+8])),
		})
	}
	return values, nil
}

// EncodeRREFResponse builds an RREF response, as the simulator sends it.
func EncodeRREFResponse(values []Value) []byte {
	buf := make([]byte, HeaderLen+len(values)*rrefEntryLen)
	copy(buf[0:4], LabelRREF)
	buf[4] = ','
	for i, v := range values {
		off := HeaderLen + i*rrefEntryLen
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v.Index))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(v.Value))
	}
	return buf
}

// EncodeDREF builds a write of v to name. Array elements are addressed as
// "name[i]".
func EncodeDREF(name string, v float32) ([]byte, error) {
	if len(name) >= DREFNameLen {
		return nil, fmt.Errorf("dataref name too long for DREF: %d bytes", len(name))
	}
	buf := make([]byte, DREFLen)
	copy(buf[0:4], LabelDREF)
	binary.LittleEndian.PutUint32(buf[5:9], math.Float32bits(v))
	copy(buf[9:], name)
	return buf, nil
}

// ParseDREF decodes a packet built by EncodeDREF.
func ParseDREF(data []byte) (string, float32, error) {
	if len(data) < DREFLen {
		return "", 0, fmt.Errorf("DREF packet too short: %d bytes", len(data))
	}
	if string(data[0:4]) != LabelDREF {
		return "", 0, fmt.Errorf("invalid label: %q", data[0:4])
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(data[5:9]))
	return cString(data[9:DREFLen]), v, nil
}

// EncodeCMND builds a one-shot command invocation.
func EncodeCMND(name string) []byte {
	buf := make([]byte, HeaderLen+len(name)+1)
	copy(buf[0:4], LabelCMND)
	copy(buf[HeaderLen:], name)
	return buf
}

// ParseCMND decodes a packet built by EncodeCMND.
func ParseCMND(data []byte) (string, error) {
	if len(data) < HeaderLen+1 {
		return "", fmt.Errorf("CMND packet too short: %d bytes", len(data))
	}
	if string(data[0:4]) != LabelCMND {
		return "", fmt.Errorf("invalid label: %q", data[0:4])
	}
	return cString(data[HeaderLen:]), nil
}

// Label returns the four letter label of a packet, or "" when too short.
func Label(data []byte) string {
	if len(data) < 4 {
		return ""
	}
	return string(data[0:4])
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
