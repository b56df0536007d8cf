package dispatch

import (
	"acfkit/internal/acftype"
	"acfkit/internal/radio"
	"acfkit/internal/xplm"
)

// Host identifiers used by the default strategy.
const (
	ParkBrakeDataRef       = "sim/flightmodel/controls/parkbrake"
	BaroDataRef            = "sim/cockpit2/gauges/actuators/barometer_setting_in_hg_pilot"
	TransponderModeDataRef = "sim/cockpit2/radios/actuators/transponder_mode"
	TransponderCodeDataRef = "sim/cockpit2/radios/actuators/transponder_code"
	COM1VolumeDataRef      = "sim/cockpit2/radios/actuators/audio_volume_com1"
	COM2VolumeDataRef      = "sim/cockpit2/radios/actuators/audio_volume_com2"

	BrakesRegularCommand    = "sim/flight_controls/brakes_regular"
	BrakesMaxCommand        = "sim/flight_controls/brakes_max"
	ServosOffCommand        = "sim/autopilot/servos_off_any"
	AutothrottleOffCommand  = "sim/autopilot/autothrottle_off"
	TOGACommand             = "sim/engines/TOGA_power"
	TransponderIdentCommand = "sim/transponder/transponder_ident"
)

// RadioDataRefs are the frequency fields of each radio, in kHz.
var RadioDataRefs = map[Radio]string{
	COM1: "sim/cockpit2/radios/actuators/com1_frequency_hz_833",
	COM2: "sim/cockpit2/radios/actuators/com2_frequency_hz_833",
	NAV1: "sim/cockpit2/radios/actuators/nav1_frequency_khz",
	NAV2: "sim/cockpit2/radios/actuators/nav2_frequency_khz",
	ADF1: "sim/cockpit2/radios/actuators/adf1_frequency_hz",
	ADF2: "sim/cockpit2/radios/actuators/adf2_frequency_hz",
}

var (
	subParkBrake = &Subsystem{Name: "default/park-brake", DataRefs: []string{ParkBrakeDataRef}}
	subBrakes    = &Subsystem{Name: "default/brakes", Commands: []string{BrakesRegularCommand, BrakesMaxCommand}}
	subSwitches  = &Subsystem{Name: "default/switches", Commands: []string{ServosOffCommand, AutothrottleOffCommand, TOGACommand}}
	subRadios    = &Subsystem{Name: "default/radios", DataRefs: []string{
		RadioDataRefs[COM1], RadioDataRefs[COM2],
		RadioDataRefs[NAV1], RadioDataRefs[NAV2],
		RadioDataRefs[ADF1], RadioDataRefs[ADF2],
	}}
	subBaro        = &Subsystem{Name: "default/baro", DataRefs: []string{BaroDataRef}}
	subTransponder = &Subsystem{
		Name:     "default/transponder",
		DataRefs: []string{TransponderModeDataRef, TransponderCodeDataRef},
		Commands: []string{TransponderIdentCommand},
	}
	subVolume = &Subsystem{Name: "default/volume", DataRefs: []string{COM1VolumeDataRef, COM2VolumeDataRef}}
)

func defaultVolume(gain float64) *Volume {
	return &Volume{Sub: subVolume, Refs: []string{COM1VolumeDataRef, COM2VolumeDataRef}, Gain: gain}
}

// DefaultTable returns the built-in strategy table.
func DefaultTable() *Table {
	return &Table{
		Variants: map[acftype.Variant]*Strategy{
			acftype.A320FF: ffA320(),
			acftype.B77LFF: {Name: "flightfactor-b77l", Volume: defaultVolume(0.6)},
		},
		// ToLiSS is a QPAC derivative and must come first.
		Groups: []GroupStrategy{
			{Group: acftype.GroupToLiSS, Strategy: toliss()},
			{Group: acftype.GroupQPAC, Strategy: qpac()},
			{Group: acftype.GroupZibo, Strategy: zibo()},
			{Group: acftype.GroupX737, Strategy: x737()},
			{Group: acftype.GroupFF75x, Strategy: ff75x()},
			{Group: acftype.GroupXCrafts, Strategy: xcrafts()},
			{Group: acftype.GroupRotate, Strategy: rotate()},
		},
		Default: defaultStrategy(),
	}
}

func defaultStrategy() *Strategy {
	return &Strategy{
		Name:             "default",
		Eager:            []*Subsystem{subParkBrake, subBrakes, subSwitches, subRadios, subBaro, subTransponder, subVolume},
		ParkBrake:        setRatio(subParkBrake, ParkBrakeDataRef, false),
		Brake:            bracketBrake,
		APDisconnect:     once(subSwitches, ServosOffCommand),
		ATDisconnect:     once(subSwitches, AutothrottleOffCommand),
		ATToga:           once(subSwitches, TOGACommand),
		TuneRadio:        tuneDirect,
		SetBaro:          setBaro,
		TransponderMode:  setTransponderMode,
		TransponderIdent: once(subTransponder, TransponderIdentCommand),
		TransponderCode: func(d *Dispatcher, code int) error {
			h, err := d.bind(subTransponder)
			if err != nil {
				return err
			}
			d.host.SetInt(h.DataRef(TransponderCodeDataRef), code)
			return nil
		},
		Volume: defaultVolume(1),
	}
}

// once runs cmd, which must be one of sub's commands.
func once(sub *Subsystem, cmd string) func(d *Dispatcher) error {
	return func(d *Dispatcher) error {
		h, err := d.bind(sub)
		if err != nil {
			return err
		}
		d.host.CommandOnce(h.Command(cmd))
		return nil
	}
}

// setRatio writes 1 for set and 0 for released, the other way round when
// inverted.
func setRatio(sub *Subsystem, ref string, inverted bool) func(d *Dispatcher, set bool) error {
	return func(d *Dispatcher, set bool) error {
		h, err := d.bind(sub)
		if err != nil {
			return err
		}
		var v float32
		if set != inverted {
			v = 1
		}
		d.host.SetFloat(h.DataRef(ref), v)
		return nil
	}
}

// toggleIfDiffers fires a toggle command only when the state field
// disagrees with the requested state.
func toggleIfDiffers(sub *Subsystem, state, cmd string) func(d *Dispatcher, set bool) error {
	return func(d *Dispatcher, set bool) error {
		h, err := d.bind(sub)
		if err != nil {
			return err
		}
		if on := d.host.GetFloat(h.DataRef(state)) > 0.5; on == set {
			return nil
		}
		d.host.CommandOnce(h.Command(cmd))
		return nil
	}
}

// bracketBrake holds the brake command for as long as the pulse lasts.
func bracketBrake(d *Dispatcher, level BrakeLevel, phase xplm.Phase) error {
	h, err := d.bind(subBrakes)
	if err != nil {
		return err
	}
	cmd := h.Command(BrakesRegularCommand)
	if level == BrakeMax {
		cmd = h.Command(BrakesMaxCommand)
	}
	switch phase {
	case xplm.PhaseBegin:
		d.host.CommandBegin(cmd)
	case xplm.PhaseEnd:
		d.host.CommandEnd(cmd)
	}
	return nil
}

func tuneDirect(d *Dispatcher, r Radio, f radio.Frequency) error {
	h, err := d.bind(subRadios)
	if err != nil {
		return err
	}
	d.host.SetInt(h.DataRef(RadioDataRefs[r]), f.KHzInt())
	return nil
}

func setBaro(d *Dispatcher, b radio.Baro) error {
	h, err := d.bind(subBaro)
	if err != nil {
		return err
	}
	d.host.SetFloat(h.DataRef(BaroDataRef), float32(b.InHg))
	return nil
}

var xplaneTransponderModes = map[TransponderMode]int{
	XPDROff:     0,
	XPDRStandby: 1,
	XPDROn:      2,
	XPDRAlt:     3,
	XPDRTARA:    3,
}

func setTransponderMode(d *Dispatcher, m TransponderMode) error {
	h, err := d.bind(subTransponder)
	if err != nil {
		return err
	}
	d.host.SetInt(h.DataRef(TransponderModeDataRef), xplaneTransponderModes[m])
	return nil
}
