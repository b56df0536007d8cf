// Package radio parses user-entered radio frequencies, barometric settings
// and transponder codes.
package radio

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalid is returned for text that is not a number.
	ErrInvalid = errors.New("invalid value")
	// ErrOutOfRange is returned for numbers outside the band.
	ErrOutOfRange = errors.New("value out of range")
)

// Band is a radio band with its own channel spacing and rounding policy.
type Band int

const (
	COM Band = iota
	NAV
	ADF
)

type bandSpec struct {
	name string
	// scale converts the typed unit to kHz.
	scale float64
	// maxTyped is the largest plausible typed value, in typed units.
	maxTyped float64
	minKHz   float64
	maxKHz   float64
	tickKHz  float64
	roundUp  bool
}

var bands = map[Band]bandSpec{
	COM: {name: "com", scale: 1000, maxTyped: 136.99, minKHz: 118000, maxKHz: 136990, tickKHz: 25.0 / 3.0, roundUp: true},
	NAV: {name: "nav", scale: 1000, maxTyped: 117.95, minKHz: 108000, maxKHz: 117950, tickKHz: 25, roundUp: true},
	ADF: {name: "adf", scale: 1, maxTyped: 1750, minKHz: 190, maxKHz: 1750, tickKHz: 0.5, roundUp: false},
}

const eps = 1e-6

func (b Band) String() string {
	if s, ok := bands[b]; ok {
		return s.name
	}
	return "unknown"
}

// Frequency is a channel of a band.
type Frequency struct {
	Band Band
	kHz  float64
}

// KHz returns the frequency in kHz.
func (f Frequency) KHz() float64 { return f.kHz }

// MHz returns the frequency in MHz.
func (f Frequency) MHz() float64 { return f.kHz / 1000 }

// KHzInt returns the frequency as a whole kHz, the unit host radio fields
// take. ADF channels round down like the parser does.
func (f Frequency) KHzInt() int {
	if f.Band == ADF {
		return int(math.Floor(f.kHz + eps))
	}
	return int(math.Round(f.kHz))
}

// SnapUp moves f up to the next multiple of stepKHz, for radios whose
// tuning knobs cannot reach every channel of the band.
func (f Frequency) SnapUp(stepKHz float64) (Frequency, error) {
	kHz := math.Ceil(f.kHz/stepKHz-eps) * stepKHz
	if s, ok := bands[f.Band]; ok && kHz > s.maxKHz+eps {
		return f, fmt.Errorf("%.3f kHz above %s band: %w", kHz, s.name, ErrOutOfRange)
	}
	return Frequency{Band: f.Band, kHz: kHz}, nil
}

func (f Frequency) String() string {
	switch f.Band {
	case COM:
		return strconv.FormatFloat(f.MHz(), 'f', 3, 64)
	case NAV:
		return strconv.FormatFloat(f.MHz(), 'f', 2, 64)
	default:
		return strconv.FormatFloat(f.kHz, 'f', 1, 64)
	}
}

// ParseFrequency parses text for band b. COM and NAV are typed in MHz, ADF
// in kHz. When the text has no decimal separator and is above the band, it
// is divided by ten until it fits. The value is then moved onto the band's
// channel grid (up for COM and NAV, down for ADF) and range checked.
func ParseFrequency(b Band, text string) (Frequency, error) {
	spec, ok := bands[b]
	if !ok {
		return Frequency{}, fmt.Errorf("unknown band %d: %w", b, ErrInvalid)
	}
	v, hasSep, err := parseNumber(text)
	if err != nil {
		return Frequency{}, err
	}
	if !hasSep {
		for v > spec.maxTyped+eps {
			v /= 10
		}
	}

	units := v * spec.scale / spec.tickKHz
	if spec.roundUp {
		units = math.Ceil(units - eps)
	} else {
		units = math.Floor(units + eps)
	}
	kHz := units * spec.tickKHz

	if kHz < spec.minKHz-eps || kHz > spec.maxKHz+eps {
		return Frequency{}, fmt.Errorf("%s frequency %q: %w", spec.name, text, ErrOutOfRange)
	}
	return Frequency{Band: b, kHz: kHz}, nil
}

// FromKHz builds a frequency from a value read back from the host, without
// rounding.
func FromKHz(b Band, kHz float64) Frequency { return Frequency{Band: b, kHz: kHz} }

// parseNumber accepts digits with at most one '.' or ',' separator.
func parseNumber(text string) (float64, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false, fmt.Errorf("empty value: %w", ErrInvalid)
	}
	s = strings.Replace(s, ",", ".", 1)
	seps := 0
	for _, c := range s {
		switch {
		case c == '.':
			seps++
		case c < '0' || c > '9':
			return 0, false, fmt.Errorf("%q: %w", text, ErrInvalid)
		}
	}
	if seps > 1 || s == "." {
		return 0, false, fmt.Errorf("%q: %w", text, ErrInvalid)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%q: %w", text, ErrInvalid)
	}
	return v, seps == 1, nil
}
