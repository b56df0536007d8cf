package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"acfkit/internal/radio"
	"acfkit/internal/xplm"
)

// Action names accepted by Do.
const (
	ActionParkBrakeSet     = "park_brake_set"
	ActionParkBrakeRelease = "park_brake_release"
	ActionBrakeMax         = "brake_max"
	ActionBrakeRegular     = "brake_regular"
	ActionAPDisconnect     = "ap_disconnect"
	ActionATDisconnect     = "at_disconnect"
	ActionATToga           = "at_toga"
	ActionTune             = "tune"
	ActionBaro             = "baro"
	ActionTransponderMode  = "xpdr_mode"
	ActionTransponderIdent = "xpdr_ident"
	ActionSquawk           = "squawk"
	ActionVolumeSet        = "volume_set"
	ActionVolumeAdjust     = "volume_adjust"
)

// Actions lists the action names Do accepts.
func Actions() []string {
	return []string{
		ActionParkBrakeSet, ActionParkBrakeRelease,
		ActionBrakeMax, ActionBrakeRegular,
		ActionAPDisconnect, ActionATDisconnect, ActionATToga,
		ActionTune, ActionBaro,
		ActionTransponderMode, ActionTransponderIdent, ActionSquawk,
		ActionVolumeSet, ActionVolumeAdjust,
	}
}

// Do performs an action given by name with a textual argument:
//
//	brake_max, brake_regular   "begin" or "end"
//	tune                       "<radio> <frequency>", e.g. "com1 123.45"
//	baro                       "29.92", "1013" or "std"
//	xpdr_mode                  off, stby, on, alt or tara
//	squawk                     four octal digits
//	volume_set, volume_adjust  a number
func (d *Dispatcher) Do(action, arg string) error {
	switch action {
	case ActionParkBrakeSet:
		return d.ParkBrake(true)
	case ActionParkBrakeRelease:
		return d.ParkBrake(false)
	case ActionBrakeMax, ActionBrakeRegular:
		level := BrakeRegular
		if action == ActionBrakeMax {
			level = BrakeMax
		}
		phase, err := ParsePhase(arg)
		if err != nil {
			return err
		}
		return d.Brake(level, phase)
	case ActionAPDisconnect:
		return d.APDisconnect()
	case ActionATDisconnect:
		return d.ATDisconnect()
	case ActionATToga:
		return d.ATToga()
	case ActionTune:
		name, freq, ok := strings.Cut(strings.TrimSpace(arg), " ")
		if !ok {
			return fmt.Errorf("tune %q: expected radio and frequency: %w", arg, radio.ErrInvalid)
		}
		r, err := ParseRadio(name)
		if err != nil {
			return err
		}
		return d.TuneRadio(r, freq)
	case ActionBaro:
		return d.SetBaro(arg)
	case ActionTransponderMode:
		m, err := ParseTransponderMode(arg)
		if err != nil {
			return err
		}
		return d.SetTransponderMode(m)
	case ActionTransponderIdent:
		return d.TransponderIdent()
	case ActionSquawk:
		return d.Squawk(arg)
	case ActionVolumeSet, ActionVolumeAdjust:
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return fmt.Errorf("%s %q: %w", action, arg, radio.ErrInvalid)
		}
		if action == ActionVolumeSet {
			return d.SetVolume(v)
		}
		return d.AdjustVolume(v)
	default:
		return fmt.Errorf("action %q: %w", action, ErrUnsupported)
	}
}

// ParsePhase parses "begin" or "end".
func ParsePhase(s string) (xplm.Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "begin":
		return xplm.PhaseBegin, nil
	case "end":
		return xplm.PhaseEnd, nil
	default:
		return 0, fmt.Errorf("phase %q: %w", s, radio.ErrInvalid)
	}
}
