// Package plugin ties the aircraft session and the dispatcher to the host
// lifecycle: start, enable, disable, stop and inter-plugin messages.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"

	"acfkit/internal/dispatch"
	"acfkit/internal/session"
	"acfkit/internal/xplm"
)

// DefaultCommandPrefix prefixes the commands the plugin creates.
const DefaultCommandPrefix = "acfkit"

var (
	// ErrNotStarted is returned by Enable before Start.
	ErrNotStarted = errors.New("plugin not started")
	// ErrDisabled is returned when an action is requested while disabled.
	ErrDisabled = errors.New("plugin disabled")
)

// Config holds the plugin dependencies.
type Config struct {
	// Session configures the aircraft session; its Host is required.
	Session session.Config
	// Table overrides the dispatch table; nil means dispatch.DefaultTable.
	Table *dispatch.Table
	// CommandCacheSize overrides the dispatcher command cache size.
	CommandCacheSize int
	// CommandPrefix names the created commands, "<prefix>/<action>".
	CommandPrefix string
	// Observers are notified after every classification.
	Observers []func(session.Snapshot)
	Logger    *slog.Logger
}

// Plugin is the lifecycle owner of the aircraft session. Its methods must
// be called from the goroutine that owns the host.
type Plugin struct {
	cfg     Config
	host    xplm.Host
	log     *slog.Logger
	manager *session.Manager

	started    bool
	disp       *dispatch.Dispatcher
	unregister []func()
}

// New creates a plugin. Nothing touches the host before Start.
func New(cfg Config) (*Plugin, error) {
	if cfg.Session.Host == nil {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = DefaultCommandPrefix
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Session.Logger == nil {
		cfg.Session.Logger = log
	}
	return &Plugin{
		cfg:  cfg,
		host: cfg.Session.Host,
		log:  log.With("component", "plugin"),
	}, nil
}

// Start prepares the session manager.
func (p *Plugin) Start() error {
	if p.started {
		return nil
	}
	p.manager = session.NewManager(p.cfg.Session)
	p.started = true
	p.log.Info("Plugin started", "command_prefix", p.cfg.CommandPrefix)
	return nil
}

// Enable creates the aircraft session, the dispatcher and the plugin
// commands. Enabling twice is a no-op.
func (p *Plugin) Enable() error {
	if !p.started {
		return ErrNotStarted
	}
	if p.disp != nil {
		return nil
	}

	ctx := p.manager.GetOrCreate()
	if ctx == nil {
		return fmt.Errorf("failed to create aircraft session")
	}
	ctx.Reset()
	for _, fn := range p.cfg.Observers {
		ctx.Observe(fn)
	}

	opts := []dispatch.Option{}
	if p.cfg.Table != nil {
		opts = append(opts, dispatch.WithTable(p.cfg.Table))
	}
	if p.cfg.CommandCacheSize > 0 {
		opts = append(opts, dispatch.WithCommandCacheSize(p.cfg.CommandCacheSize))
	}
	disp, err := dispatch.New(ctx, opts...)
	if err != nil {
		p.manager.Destroy()
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	p.disp = disp
	p.createCommands()

	p.log.Info("Plugin enabled", "commands", len(p.unregister))
	return nil
}

// Disable removes the plugin commands and destroys the session.
func (p *Plugin) Disable() {
	if p.disp == nil {
		return
	}
	for _, fn := range p.unregister {
		fn()
	}
	p.unregister = nil
	p.disp = nil
	p.manager.Destroy()
	p.log.Info("Plugin disabled")
}

// Stop disables the plugin if needed and drops the session manager.
func (p *Plugin) Stop() {
	if !p.started {
		return
	}
	p.Disable()
	p.manager = nil
	p.started = false
	p.log.Info("Plugin stopped")
}

// Enabled reports whether the plugin holds a session.
func (p *Plugin) Enabled() bool { return p.disp != nil }

// Host returns the host the plugin runs against.
func (p *Plugin) Host() xplm.Host { return p.host }

// Session returns the aircraft session, or nil while disabled.
func (p *Plugin) Session() *session.Context {
	if p.manager == nil {
		return nil
	}
	return p.manager.Current()
}

// Dispatcher returns the dispatcher, or ErrDisabled.
func (p *Plugin) Dispatcher() (*dispatch.Dispatcher, error) {
	if p.disp == nil {
		return nil, ErrDisabled
	}
	return p.disp, nil
}

// ReceiveMessage handles a host message. Aircraft and livery changes of the
// user aircraft invalidate the session; everything else is only logged.
func (p *Plugin) ReceiveMessage(msg xplm.Message, param int) {
	ctx := p.Session()
	switch msg {
	case xplm.MsgPlaneLoaded, xplm.MsgLiveryLoaded, xplm.MsgPlaneUnloaded, xplm.MsgPlaneCountChanged:
		if param != xplm.UserAircraft {
			p.log.Debug("Ignoring message for other aircraft", "message", msg.String(), "plane", param)
			return
		}
		if ctx == nil {
			return
		}
		p.log.Info("User aircraft changed", "message", msg.String())
		ctx.Reset()
	case xplm.MsgAirportLoaded, xplm.MsgSceneryLoaded:
		p.log.Debug("Scenery changed", "message", msg.String())
	default:
		p.log.Debug("Unhandled message", "message", msg.String(), "param", param)
	}
}
