// Package dispatch routes user actions to the host primitive the loaded
// aircraft expects, through a table of strategies keyed by variant, then
// group, then a default.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"acfkit/internal/acftype"
	"acfkit/internal/radio"
	"acfkit/internal/session"
	"acfkit/internal/xplm"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrUnavailable is returned when the handles an action needs are not
	// resolvable yet. The action did nothing and may be retried.
	ErrUnavailable = errors.New("action unavailable")
	// ErrUnsupported is returned when no strategy implements the action for
	// the loaded aircraft.
	ErrUnsupported = errors.New("action not supported")
)

// DefaultCommandCacheSize bounds the command name cache.
const DefaultCommandCacheSize = 256

// Dispatcher performs actions for the aircraft of one session Context.
type Dispatcher struct {
	ctx      *session.Context
	host     xplm.Host
	table    *Table
	log      *slog.Logger
	commands *lru.Cache[string, xplm.CommandRef]
	bindings map[string]*session.Binding[Handles]
}

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	table     *Table
	cacheSize int
}

// WithTable replaces the built-in strategy table.
func WithTable(t *Table) Option { return func(o *options) { o.table = t } }

// WithCommandCacheSize sets the size of the command name cache.
func WithCommandCacheSize(n int) Option { return func(o *options) { o.cacheSize = n } }

// New creates a dispatcher bound to ctx. Cheap handles declared as eager by
// the strategies of the classified variant are resolved right after each
// classification; everything else on first use.
func New(ctx *session.Context, opts ...Option) (*Dispatcher, error) {
	o := options{table: DefaultTable(), cacheSize: DefaultCommandCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	cache, err := lru.New[string, xplm.CommandRef](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create command cache: %w", err)
	}
	d := &Dispatcher{
		ctx:      ctx,
		host:     ctx.Host(),
		table:    o.table,
		log:      ctx.Logger().With("component", "dispatch"),
		commands: cache,
		bindings: make(map[string]*session.Binding[Handles]),
	}
	ctx.Register(d)
	ctx.OnUpdate(d.bindEager)
	return d, nil
}

// Unbind forgets cached command handles. The session calls it on reset.
func (d *Dispatcher) Unbind() { d.commands.Purge() }

// Host returns the host actions are performed on.
func (d *Dispatcher) Host() xplm.Host { return d.host }

func (d *Dispatcher) bindEager(cl acftype.Classification) {
	for _, s := range d.table.chain(cl.Variant) {
		for _, sub := range s.Eager {
			// Failures are logged by the binding and retried on use.
			_, _ = d.bind(sub)
		}
	}
}

// strategy classifies the aircraft if needed and returns the first strategy
// in its chain that implements the action.
func (d *Dispatcher) strategy(action string, has func(*Strategy) bool) (*Strategy, error) {
	cl := d.ctx.Update()
	s := d.table.find(cl.Variant, has)
	if s == nil {
		return nil, fmt.Errorf("%s on %s: %w", action, cl.Variant, ErrUnsupported)
	}
	d.log.Debug("Dispatching action", "action", action, "variant", cl.Variant.String(), "strategy", s.Name)
	return s, nil
}

// ParkBrake sets or releases the parking brake.
func (d *Dispatcher) ParkBrake(set bool) error {
	s, err := d.strategy("park brake", func(s *Strategy) bool { return s.ParkBrake != nil })
	if err != nil {
		return err
	}
	return s.ParkBrake(d, set)
}

// Brake begins or ends a braking pulse.
func (d *Dispatcher) Brake(level BrakeLevel, phase xplm.Phase) error {
	s, err := d.strategy("brake", func(s *Strategy) bool { return s.Brake != nil })
	if err != nil {
		return err
	}
	return s.Brake(d, level, phase)
}

// APDisconnect disconnects the autopilot.
func (d *Dispatcher) APDisconnect() error {
	s, err := d.strategy("autopilot disconnect", func(s *Strategy) bool { return s.APDisconnect != nil })
	if err != nil {
		return err
	}
	return s.APDisconnect(d)
}

// ATDisconnect disconnects the autothrottle.
func (d *Dispatcher) ATDisconnect() error {
	s, err := d.strategy("autothrottle disconnect", func(s *Strategy) bool { return s.ATDisconnect != nil })
	if err != nil {
		return err
	}
	return s.ATDisconnect(d)
}

// ATToga engages takeoff/go-around thrust.
func (d *Dispatcher) ATToga() error {
	s, err := d.strategy("autothrottle toga", func(s *Strategy) bool { return s.ATToga != nil })
	if err != nil {
		return err
	}
	return s.ATToga(d)
}

// TuneRadio parses text for the band of r and tunes r to it.
func (d *Dispatcher) TuneRadio(r Radio, text string) error {
	f, err := radio.ParseFrequency(r.Band(), text)
	if err != nil {
		return fmt.Errorf("tune %s: %w", r, err)
	}
	s, err := d.strategy("tune "+r.String(), func(s *Strategy) bool { return s.TuneRadio != nil })
	if err != nil {
		return err
	}
	return s.TuneRadio(d, r, f)
}

// SetBaro parses text as an altimeter setting and applies it.
func (d *Dispatcher) SetBaro(text string) error {
	b, err := radio.ParseBaro(text)
	if err != nil {
		return fmt.Errorf("baro: %w", err)
	}
	s, err := d.strategy("baro", func(s *Strategy) bool { return s.SetBaro != nil })
	if err != nil {
		return err
	}
	return s.SetBaro(d, b)
}

// SetTransponderMode selects the transponder mode.
func (d *Dispatcher) SetTransponderMode(m TransponderMode) error {
	s, err := d.strategy("transponder mode", func(s *Strategy) bool { return s.TransponderMode != nil })
	if err != nil {
		return err
	}
	return s.TransponderMode(d, m)
}

// TransponderIdent pushes the ident button.
func (d *Dispatcher) TransponderIdent() error {
	s, err := d.strategy("transponder ident", func(s *Strategy) bool { return s.TransponderIdent != nil })
	if err != nil {
		return err
	}
	return s.TransponderIdent(d)
}

// Squawk parses text as a transponder code and sets it.
func (d *Dispatcher) Squawk(text string) error {
	code, err := radio.ParseSquawk(text)
	if err != nil {
		return fmt.Errorf("squawk: %w", err)
	}
	s, err := d.strategy("transponder code", func(s *Strategy) bool { return s.TransponderCode != nil })
	if err != nil {
		return err
	}
	return s.TransponderCode(d, code)
}

// SetVolume sets the ATC radio volume, level being 0 to 1.
func (d *Dispatcher) SetVolume(level float64) error {
	s, err := d.strategy("volume", func(s *Strategy) bool { return s.Volume != nil })
	if err != nil {
		return err
	}
	return s.Volume.set(d, level)
}

// AdjustVolume changes the ATC radio volume by delta.
func (d *Dispatcher) AdjustVolume(delta float64) error {
	s, err := d.strategy("volume", func(s *Strategy) bool { return s.Volume != nil })
	if err != nil {
		return err
	}
	return s.Volume.adjust(d, delta)
}

// Command begins or ends a host command by name. The name is resolved
// through the command cache.
func (d *Dispatcher) Command(name string, phase xplm.Phase) error {
	ref, err := d.findCommand(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch phase {
	case xplm.PhaseBegin:
		d.host.CommandBegin(ref)
	case xplm.PhaseEnd:
		d.host.CommandEnd(ref)
	default:
		return fmt.Errorf("command %s: phase %s cannot be issued", name, phase)
	}
	return nil
}

// CommandOnce runs a host command by name once.
func (d *Dispatcher) CommandOnce(name string) error {
	ref, err := d.findCommand(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	d.host.CommandOnce(ref)
	return nil
}
