package session

import "log/slog"

// Manager owns at most one Context, tied to the plugin being enabled.
type Manager struct {
	cfg Config
	ctx *Context
	log *slog.Logger
}

// NewManager returns a manager that creates contexts from cfg.
func NewManager(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Manager{cfg: cfg, log: log}
}

// GetOrCreate returns the existing context or creates it. It returns nil
// when the context cannot be created; callers must not start anything that
// depends on it.
func (m *Manager) GetOrCreate() *Context {
	if m.ctx != nil {
		return m.ctx
	}
	ctx, err := New(m.cfg)
	if err != nil {
		m.log.Error("Failed to create aircraft session", "error", err)
		return nil
	}
	m.ctx = ctx
	return ctx
}

// Current returns the context, or nil when none exists.
func (m *Manager) Current() *Context { return m.ctx }

// Destroy resets and drops the context.
func (m *Manager) Destroy() {
	if m.ctx == nil {
		return
	}
	m.ctx.Reset()
	m.ctx = nil
}
