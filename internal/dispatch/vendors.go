package dispatch

import (
	"acfkit/internal/radio"
	"acfkit/internal/xplm"
)

func qpac() *Strategy {
	const (
		parkBrake = "AirbusFBW/ParkBrake"
		apDisc    = "airbus_qpac/ap_disc_left_stick"
		atDisc    = "airbus_qpac/ATDisconnectLeft"
	)
	brakes := &Subsystem{Name: "qpac/park-brake", DataRefs: []string{parkBrake}}
	switches := &Subsystem{Name: "qpac/switches", Commands: []string{apDisc, atDisc}}
	return &Strategy{
		Name: "qpac",
		ParkBrake: func(d *Dispatcher, set bool) error {
			h, err := d.bind(brakes)
			if err != nil {
				return err
			}
			v := 0
			if set {
				v = 1
			}
			d.host.SetInt(h.DataRef(parkBrake), v)
			return nil
		},
		APDisconnect: once(switches, apDisc),
		ATDisconnect: once(switches, atDisc),
	}
}

func toliss() *Strategy {
	const (
		apDisc   = "toliss_airbus/ap_disc_left_stick"
		atDisc   = "toliss_airbus/at_disconnect_left"
		baroStd  = "AirbusFBW/BaroStdCapt"
		baroPush = "toliss_airbus/capt_baro_push"
		baroPull = "toliss_airbus/capt_baro_pull"
	)
	switches := &Subsystem{Name: "toliss/switches", Commands: []string{apDisc, atDisc}}
	baro := &Subsystem{
		Name:     "toliss/baro",
		DataRefs: []string{baroStd, BaroDataRef},
		Commands: []string{baroPush, baroPull},
	}
	return &Strategy{
		Name:         "toliss",
		APDisconnect: once(switches, apDisc),
		ATDisconnect: once(switches, atDisc),
		// The baro knob is pulled for standard and pushed back for QNH.
		SetBaro: func(d *Dispatcher, b radio.Baro) error {
			h, err := d.bind(baro)
			if err != nil {
				return err
			}
			std := d.host.GetInt(h.DataRef(baroStd)) != 0
			if b.Std {
				if !std {
					d.host.CommandOnce(h.Command(baroPull))
				}
				return nil
			}
			if std {
				d.host.CommandOnce(h.Command(baroPush))
			}
			d.host.SetFloat(h.DataRef(BaroDataRef), float32(b.InHg))
			return nil
		},
	}
}

// ffA320 drives the FlightFactor A320 through its shared value interface.
func ffA320() *Strategy {
	const (
		parkBrake  = "Aircraft.Cockpit.Pedestal.BrakeParking"
		brakeLeft  = "Aircraft.Cockpit.Pedals.BrakeLeft"
		brakeRight = "Aircraft.Cockpit.Pedals.BrakeRight"
	)
	brakes := &Subsystem{Name: "ff-a320/brakes", SharedValues: []string{parkBrake, brakeLeft, brakeRight}}
	return &Strategy{
		Name: "flightfactor-a320",
		ParkBrake: func(d *Dispatcher, set bool) error {
			h, err := d.bind(brakes)
			if err != nil {
				return err
			}
			v := 0.0
			if set {
				v = 1
			}
			h.SetValue(parkBrake, v)
			return nil
		},
		Brake: func(d *Dispatcher, level BrakeLevel, phase xplm.Phase) error {
			h, err := d.bind(brakes)
			if err != nil {
				return err
			}
			var v float64
			switch phase {
			case xplm.PhaseBegin:
				v = 0.5
				if level == BrakeMax {
					v = 1
				}
			case xplm.PhaseEnd:
				v = 0
			default:
				return nil
			}
			h.SetValue(brakeLeft, v)
			h.SetValue(brakeRight, v)
			return nil
		},
	}
}

func zibo() *Strategy {
	const (
		parkBrakePos    = "laminar/B738/parking_brake_pos"
		parkBrakeToggle = "laminar/B738/push_button/park_brake_on_off"
		apDisc          = "laminar/B738/autopilot/capt_disco_press"
		atDisc          = "laminar/B738/autopilot/left_at_dis_press"
		toga            = "laminar/B738/autopilot/left_toga_press"
		xpdrPos         = "laminar/B738/knob/transponder_pos"
	)
	knob := Knob{
		Up:     "laminar/B738/knob/transponder_mode_up",
		Down:   "laminar/B738/knob/transponder_mode_dn",
		Detent: 1,
	}
	brakes := &Subsystem{Name: "zibo/park-brake", DataRefs: []string{parkBrakePos}, Commands: []string{parkBrakeToggle}}
	switches := &Subsystem{Name: "zibo/switches", Commands: []string{apDisc, atDisc, toga}}
	xpdr := &Subsystem{Name: "zibo/transponder", DataRefs: []string{xpdrPos}, Commands: []string{knob.Up, knob.Down}}
	// Knob positions: 0 test, 1 stby, 2 alt off, 3 alt on, 4 ta, 5 ta/ra.
	positions := map[TransponderMode]int{
		XPDROff:     1,
		XPDRStandby: 1,
		XPDROn:      2,
		XPDRAlt:     3,
		XPDRTARA:    5,
	}
	return &Strategy{
		Name:         "zibo",
		ParkBrake:    toggleIfDiffers(brakes, parkBrakePos, parkBrakeToggle),
		APDisconnect: once(switches, apDisc),
		ATDisconnect: once(switches, atDisc),
		ATToga:       once(switches, toga),
		TransponderMode: func(d *Dispatcher, m TransponderMode) error {
			h, err := d.bind(xpdr)
			if err != nil {
				return err
			}
			cur := d.host.GetInt(h.DataRef(xpdrPos))
			d.walk(h, knob, float64(cur), float64(positions[m]))
			return nil
		},
	}
}

func x737() *Strategy {
	const (
		apDisc = "x737/yoke/capt_AP_disengage_button"
		atDisc = "x737/mcp/ATHR_disengage"
		toga   = "x737/mcp/TOGA_press"
	)
	switches := &Subsystem{Name: "x737/switches", Commands: []string{apDisc, atDisc, toga}}
	return &Strategy{
		Name:         "x737",
		APDisconnect: once(switches, apDisc),
		ATDisconnect: once(switches, atDisc),
		ATToga:       once(switches, toga),
	}
}

func ff75x() *Strategy {
	const (
		parkBrake       = "1-sim/parckBrake"
		parkBrakeToggle = "1-sim/command/parkBrakeToggle"
		apDisc          = "1-sim/comm/AP/ap_disc"
		atDisc          = "1-sim/comm/AP/at_disc"
		toga            = "1-sim/comm/AP/at_toga"
	)
	brakes := &Subsystem{Name: "ff75x/park-brake", DataRefs: []string{parkBrake}, Commands: []string{parkBrakeToggle}}
	switches := &Subsystem{Name: "ff75x/switches", Commands: []string{apDisc, atDisc, toga}}
	return &Strategy{
		Name:         "ff75x",
		ParkBrake:    toggleIfDiffers(brakes, parkBrake, parkBrakeToggle),
		APDisconnect: once(switches, apDisc),
		ATDisconnect: once(switches, atDisc),
		ATToga:       once(switches, toga),
		Volume:       defaultVolume(0.8),
	}
}

func xcrafts() *Strategy {
	// The X-Crafts rack reads 1 as released.
	const parkBrake = "XCrafts/ERJ/brakes/parking_brake"
	brakes := &Subsystem{Name: "xcrafts/park-brake", DataRefs: []string{parkBrake}}
	return &Strategy{
		Name:      "xcrafts",
		ParkBrake: setRatio(brakes, parkBrake, true),
		Volume:    defaultVolume(1.25),
	}
}

type radioKnobs struct {
	coarse Knob
	fine   Knob
}

// rotate walks the MD-88 radio knobs: 1 MHz per coarse detent and 25 kHz
// per fine detent.
func rotate() *Strategy {
	knobs := make(map[Radio]radioKnobs)
	sub := &Subsystem{Name: "rotate/radios"}
	for _, r := range []Radio{COM1, COM2, NAV1, NAV2} {
		prefix := "Rotate/md80/radios/" + r.String()
		k := radioKnobs{
			coarse: Knob{Up: prefix + "_coarse_up", Down: prefix + "_coarse_down", Detent: 1000},
			fine:   Knob{Up: prefix + "_fine_up", Down: prefix + "_fine_down", Detent: 25},
		}
		knobs[r] = k
		sub.DataRefs = append(sub.DataRefs, RadioDataRefs[r])
		sub.Commands = append(sub.Commands, k.coarse.Up, k.coarse.Down, k.fine.Up, k.fine.Down)
	}
	return &Strategy{
		Name: "rotate",
		TuneRadio: func(d *Dispatcher, r Radio, f radio.Frequency) error {
			k, ok := knobs[r]
			if !ok {
				return tuneDirect(d, r, f)
			}
			h, err := d.bind(sub)
			if err != nil {
				return err
			}
			// The fine knob only lands on its own detents.
			snapped, err := f.SnapUp(k.fine.Detent)
			if err != nil {
				return err
			}
			cur := d.host.GetInt(h.DataRef(RadioDataRefs[r]))
			tgt := snapped.KHzInt()
			coarse := d.walk(h, k.coarse, float64(cur/1000*1000), float64(tgt/1000*1000))
			fine := d.walk(h, k.fine, float64(cur%1000), float64(tgt%1000))
			d.log.Debug("Walked radio knobs", "radio", r.String(), "from", cur, "to", tgt,
				"coarse", coarse, "fine", fine)
			return nil
		},
	}
}
