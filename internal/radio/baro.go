package radio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const hPaToInHg = 0.0295299830714

// Baro is an altimeter setting.
type Baro struct {
	// Std selects standard pressure; InHg is then 29.92.
	Std  bool
	InHg float64
}

// StandardInHg is standard sea level pressure.
const StandardInHg = 29.92

// HPa returns the setting in hectopascal, rounded to a whole unit.
func (b Baro) HPa() int { return int(math.Round(b.InHg / hPaToInHg)) }

func (b Baro) String() string {
	if b.Std {
		return "STD"
	}
	return strconv.FormatFloat(b.InHg, 'f', 2, 64)
}

// ParseBaro accepts "STD", inches of mercury (28.00 to 31.50) or
// hectopascal (940 to 1060). Inches typed without separator ("2992") are
// rescaled.
func ParseBaro(text string) (Baro, error) {
	if strings.EqualFold(strings.TrimSpace(text), "std") {
		return Baro{Std: true, InHg: StandardInHg}, nil
	}
	v, hasSep, err := parseNumber(text)
	if err != nil {
		return Baro{}, err
	}
	switch {
	case v >= 940 && v <= 1060:
		return Baro{InHg: roundInHg(v * hPaToInHg)}, nil
	case !hasSep:
		for v > 31.5 {
			v /= 10
		}
	}
	if v < 28-eps || v > 31.5+eps {
		return Baro{}, fmt.Errorf("baro %q: %w", text, ErrOutOfRange)
	}
	return Baro{InHg: roundInHg(v)}, nil
}

func roundInHg(v float64) float64 { return math.Round(v*100) / 100 }

// ParseSquawk parses a four digit octal transponder code and returns it as
// the decimal number it reads as (7700 for "7700").
func ParseSquawk(text string) (int, error) {
	s := strings.TrimSpace(text)
	if len(s) != 4 {
		return 0, fmt.Errorf("squawk %q: %w", text, ErrInvalid)
	}
	code := 0
	for _, c := range s {
		if c < '0' || c > '7' {
			return 0, fmt.Errorf("squawk %q: %w", text, ErrInvalid)
		}
		code = code*10 + int(c-'0')
	}
	return code, nil
}
