package plugin

import (
	"errors"

	"acfkit/internal/dispatch"
	"acfkit/internal/xplm"
)

// pluginCommand is a command the plugin creates. Held commands follow the
// key: begin on press, end on release.
type pluginCommand struct {
	action      string
	description string
	held        bool
}

var pluginCommands = []pluginCommand{
	{dispatch.ActionParkBrakeSet, "Set parking brake", false},
	{dispatch.ActionParkBrakeRelease, "Release parking brake", false},
	{dispatch.ActionBrakeRegular, "Hold regular brakes", true},
	{dispatch.ActionBrakeMax, "Hold maximum brakes", true},
	{dispatch.ActionAPDisconnect, "Disconnect autopilot", false},
	{dispatch.ActionATDisconnect, "Disconnect autothrottle", false},
	{dispatch.ActionATToga, "Autothrottle TOGA", false},
	{dispatch.ActionTransponderIdent, "Transponder ident", false},
}

// CommandName returns the name of the command created for action.
func (p *Plugin) CommandName(action string) string {
	return p.cfg.CommandPrefix + "/" + action
}

func (p *Plugin) createCommands() {
	for _, pc := range pluginCommands {
		name := p.CommandName(pc.action)
		ref := p.host.CreateCommand(name, pc.description)
		if !ref.Valid() {
			p.log.Warn("Failed to create command", "command", name)
			continue
		}
		p.unregister = append(p.unregister, p.host.RegisterCommandHandler(ref, true, p.handler(pc)))
	}
}

func (p *Plugin) handler(pc pluginCommand) xplm.CommandHandler {
	return func(_ xplm.CommandRef, phase xplm.Phase) bool {
		d := p.disp
		if d == nil {
			return true
		}
		var arg string
		switch {
		case pc.held && phase == xplm.PhaseBegin:
			arg = "begin"
		case pc.held && phase == xplm.PhaseEnd:
			arg = "end"
		case !pc.held && phase == xplm.PhaseBegin:
		default:
			return false
		}
		err := d.Do(pc.action, arg)
		switch {
		case err == nil:
		case errors.Is(err, dispatch.ErrUnavailable):
			// The loaded aircraft simply lacks the control.
			p.log.Debug("Command skipped, action unavailable", "command", p.CommandName(pc.action), "error", err)
		default:
			p.log.Warn("Command failed", "command", p.CommandName(pc.action), "phase", phase.String(), "error", err)
		}
		return false
	}
}
