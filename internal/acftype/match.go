package acftype

import "strings"

// Field selects which piece of evidence a probe looks at.
type Field int

const (
	FieldAuthor Field = iota
	FieldDescription
	FieldICAO
	FieldTailNumber
	FieldFileName
	FieldFilePath
)

func (f Field) String() string {
	switch f {
	case FieldAuthor:
		return "author"
	case FieldDescription:
		return "description"
	case FieldICAO:
		return "icao"
	case FieldTailNumber:
		return "tail_number"
	case FieldFileName:
		return "file_name"
	case FieldFilePath:
		return "file_path"
	default:
		return "unknown"
	}
}

// Op is the comparison a probe applies.
type Op int

const (
	// Contains matches when the candidate appears anywhere in the field.
	Contains Op = iota
	// HasPrefix matches when the field starts with the candidate.
	HasPrefix
	// Equals matches the whole field.
	Equals
)

// Probe is one secondary evidence test.
type Probe struct {
	Field Field
	Op    Op
	Text  string
}

// Match applies the probe to the evidence.
func (p Probe) Match(ev Evidence) bool {
	return match(p.Op, ev.Field(p.Field), p.Text)
}

func (p Probe) String() string {
	var op string
	switch p.Op {
	case HasPrefix:
		op = "prefix"
	case Equals:
		op = "equals"
	default:
		op = "contains"
	}
	return p.Field.String() + " " + op + " " + `"` + p.Text + `"`
}

// trimField drops the padding add-ons leave at the end of their fields.
func trimField(s string) string {
	return strings.TrimRight(s, " \t\r\n\x00")
}

// match compares case-insensitively using the candidate's own length as the
// compare length.
func match(op Op, field, candidate string) bool {
	n := len(candidate)
	if n == 0 {
		return false
	}
	f := trimField(field)
	switch op {
	case HasPrefix:
		f = strings.TrimLeft(f, " \t")
		return len(f) >= n && strings.EqualFold(f[:n], candidate)
	case Equals:
		return strings.EqualFold(strings.TrimSpace(f), candidate)
	default:
		for i := 0; i+n <= len(f); i++ {
			if strings.EqualFold(f[i:i+n], candidate) {
				return true
			}
		}
		return false
	}
}
