package dispatch

import (
	"fmt"
	"math"
	"strings"

	"acfkit/internal/acftype"
	"acfkit/internal/radio"
	"acfkit/internal/xplm"
)

// BrakeLevel selects regular or maximum braking.
type BrakeLevel int

const (
	BrakeRegular BrakeLevel = iota
	BrakeMax
)

func (l BrakeLevel) String() string {
	if l == BrakeMax {
		return "max"
	}
	return "regular"
}

// Radio is a tunable receiver.
type Radio int

const (
	COM1 Radio = iota
	COM2
	NAV1
	NAV2
	ADF1
	ADF2
)

var radioNames = [...]string{COM1: "com1", COM2: "com2", NAV1: "nav1", NAV2: "nav2", ADF1: "adf1", ADF2: "adf2"}

func (r Radio) String() string {
	if r >= 0 && int(r) < len(radioNames) {
		return radioNames[r]
	}
	return "unknown"
}

// Band returns the band the radio tunes.
func (r Radio) Band() radio.Band {
	switch r {
	case NAV1, NAV2:
		return radio.NAV
	case ADF1, ADF2:
		return radio.ADF
	default:
		return radio.COM
	}
}

// ParseRadio looks a radio up by name, case-insensitively.
func ParseRadio(s string) (Radio, error) {
	for r, name := range radioNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Radio(r), nil
		}
	}
	return 0, fmt.Errorf("unknown radio %q: %w", s, radio.ErrInvalid)
}

// TransponderMode is a transponder function switch position.
type TransponderMode int

const (
	XPDROff TransponderMode = iota
	XPDRStandby
	XPDROn
	XPDRAlt
	XPDRTARA
)

var modeNames = [...]string{XPDROff: "off", XPDRStandby: "stby", XPDROn: "on", XPDRAlt: "alt", XPDRTARA: "tara"}

func (m TransponderMode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseTransponderMode looks a mode up by name, case-insensitively.
func ParseTransponderMode(s string) (TransponderMode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return TransponderMode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown transponder mode %q: %w", s, radio.ErrInvalid)
}

// Strategy holds how one variant, group or the default performs each
// action. A nil hook defers to the next strategy in the chain.
type Strategy struct {
	Name string
	// Eager subsystems are bound right after classification.
	Eager []*Subsystem

	ParkBrake        func(d *Dispatcher, set bool) error
	Brake            func(d *Dispatcher, level BrakeLevel, phase xplm.Phase) error
	APDisconnect     func(d *Dispatcher) error
	ATDisconnect     func(d *Dispatcher) error
	ATToga           func(d *Dispatcher) error
	TuneRadio        func(d *Dispatcher, r Radio, f radio.Frequency) error
	SetBaro          func(d *Dispatcher, b radio.Baro) error
	TransponderMode  func(d *Dispatcher, m TransponderMode) error
	TransponderIdent func(d *Dispatcher) error
	TransponderCode  func(d *Dispatcher, code int) error
	Volume           *Volume
}

// GroupStrategy applies to every member of a group.
type GroupStrategy struct {
	Group    acftype.Group
	Strategy *Strategy
}

// Table maps classifications to strategies. Lookup goes variant record,
// then group records in declared order, then Default.
type Table struct {
	Variants map[acftype.Variant]*Strategy
	Groups   []GroupStrategy
	Default  *Strategy
}

// chain returns the strategies that apply to v, most specific first.
func (t *Table) chain(v acftype.Variant) []*Strategy {
	var out []*Strategy
	if s, ok := t.Variants[v]; ok && s != nil {
		out = append(out, s)
	}
	for _, g := range t.Groups {
		if g.Strategy != nil && v.In(g.Group) {
			out = append(out, g.Strategy)
		}
	}
	if t.Default != nil {
		out = append(out, t.Default)
	}
	return out
}

// find returns the first strategy in the chain of v for which has holds.
func (t *Table) find(v acftype.Variant, has func(*Strategy) bool) *Strategy {
	for _, s := range t.chain(v) {
		if has(s) {
			return s
		}
	}
	return nil
}

// Volume scales a requested radio volume by a gain before writing it to
// every field in Refs.
type Volume struct {
	Sub  *Subsystem
	Refs []string
	Gain float64
	// Max is the largest value the fields accept; zero means 1.
	Max float64
}

func (v *Volume) max() float64 {
	if v.Max <= 0 {
		return 1
	}
	return v.Max
}

func (v *Volume) set(d *Dispatcher, level float64) error {
	h, err := d.bind(v.Sub)
	if err != nil {
		return err
	}
	out := math.Min(math.Max(level*v.Gain, 0), v.max())
	for _, name := range v.Refs {
		d.host.SetFloat(h.DataRef(name), float32(out))
	}
	return nil
}

func (v *Volume) adjust(d *Dispatcher, delta float64) error {
	h, err := d.bind(v.Sub)
	if err != nil {
		return err
	}
	if len(v.Refs) == 0 || v.Gain == 0 {
		return nil
	}
	level := float64(d.host.GetFloat(h.DataRef(v.Refs[0]))) / v.Gain
	return v.set(d, level+delta)
}

// Knob is a rotary control without an absolute set primitive, turned one
// detent per command.
type Knob struct {
	Up     string
	Down   string
	Detent float64
}

// Steps returns the signed number of whole detents between current and
// target, truncated toward zero so the knob never passes the target.
func Steps(current, target, detent float64) int {
	if detent <= 0 {
		return 0
	}
	n := (target - current) / detent
	return int(math.Trunc(n + math.Copysign(1e-6, n)))
}

// walk turns k from current toward target and returns the number of
// nudges issued. Both commands must be in h.
func (d *Dispatcher) walk(h Handles, k Knob, current, target float64) int {
	n := Steps(current, target, k.Detent)
	cmd := h.Command(k.Up)
	if n < 0 {
		cmd = h.Command(k.Down)
		n = -n
	}
	for i := 0; i < n; i++ {
		d.host.CommandOnce(cmd)
	}
	return n
}
