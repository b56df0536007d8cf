package plugin

import (
	"bytes"
	"log/slog"
	"testing"

	"acfkit/internal/acftype"
	"acfkit/internal/dispatch"
	"acfkit/internal/session"
	"acfkit/internal/xplm"
	"acfkit/internal/xplm/memhost"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost() *memhost.Host {
	h := memhost.New()
	h.DefineFloat(dispatch.ParkBrakeDataRef, 0)
	for _, cmd := range []string{
		dispatch.BrakesRegularCommand, dispatch.BrakesMaxCommand,
		dispatch.ServosOffCommand, dispatch.AutothrottleOffCommand, dispatch.TOGACommand,
		"toliss_airbus/ap_disc_left_stick", "toliss_airbus/at_disconnect_left",
	} {
		h.DefineCommand(cmd)
	}
	return h
}

func newPlugin(t *testing.T, h *memhost.Host, observers ...func(session.Snapshot)) *Plugin {
	t.Helper()
	p, err := New(Config{
		Session: session.Config{
			Host:         h,
			Classifier:   acftype.NewClassifier(nil),
			SharedValues: h,
		},
		Observers: observers,
	})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresHost(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	h := newHost()
	p := newPlugin(t, h)

	assert.ErrorIs(t, p.Enable(), ErrNotStarted)

	require.NoError(t, p.Start())
	assert.False(t, p.Enabled())
	_, err := p.Dispatcher()
	assert.ErrorIs(t, err, ErrDisabled)

	require.NoError(t, p.Enable())
	require.NoError(t, p.Enable())
	assert.True(t, p.Enabled())
	require.NotNil(t, p.Session())
	assert.False(t, p.Session().UpToDate())

	for _, pc := range pluginCommands {
		assert.True(t, h.FindCommand(p.CommandName(pc.action)).Valid(), pc.action)
	}

	p.Disable()
	assert.False(t, p.Enabled())
	assert.Nil(t, p.Session())

	// Handlers are gone: the command no longer does anything.
	require.True(t, h.Fire("acfkit/park_brake_set", xplm.PhaseBegin))
	assert.Equal(t, float32(0), h.Float(dispatch.ParkBrakeDataRef))

	p.Stop()
	p.Stop()
	assert.ErrorIs(t, p.Enable(), ErrNotStarted)
}

func TestCommands(t *testing.T) {
	h := newHost()
	p := newPlugin(t, h)
	require.NoError(t, p.Start())
	require.NoError(t, p.Enable())

	require.True(t, h.Fire("acfkit/park_brake_set", xplm.PhaseBegin))
	assert.Equal(t, float32(1), h.Float(dispatch.ParkBrakeDataRef))
	require.True(t, h.Fire("acfkit/park_brake_release", xplm.PhaseEnd))
	assert.Equal(t, float32(1), h.Float(dispatch.ParkBrakeDataRef))
	require.True(t, h.Fire("acfkit/park_brake_release", xplm.PhaseBegin))
	assert.Equal(t, float32(0), h.Float(dispatch.ParkBrakeDataRef))

	h.ResetInvocations()
	require.True(t, h.Fire("acfkit/brake_max", xplm.PhaseBegin))
	require.True(t, h.Fire("acfkit/brake_max", xplm.PhaseContinue))
	require.True(t, h.Fire("acfkit/brake_max", xplm.PhaseEnd))
	assert.Equal(t, []memhost.Invocation{
		{Name: "acfkit/brake_max", Phase: xplm.PhaseBegin},
		{Name: dispatch.BrakesMaxCommand, Phase: xplm.PhaseBegin},
		{Name: "acfkit/brake_max", Phase: xplm.PhaseContinue},
		{Name: "acfkit/brake_max", Phase: xplm.PhaseEnd},
		{Name: dispatch.BrakesMaxCommand, Phase: xplm.PhaseEnd},
	}, h.Invocations())

	// Unavailable actions are logged, never fatal.
	require.True(t, h.Fire("acfkit/xpdr_ident", xplm.PhaseBegin))
}

func TestCommand_UnavailableLogsAtDebug(t *testing.T) {
	// No park brake dataref on this aircraft.
	h := memhost.New()
	var buf bytes.Buffer
	p, err := New(Config{
		Session: session.Config{
			Host:         h,
			Classifier:   acftype.NewClassifier(nil),
			SharedValues: h,
		},
		Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	require.NoError(t, p.Start())
	require.NoError(t, p.Enable())

	require.True(t, h.Fire("acfkit/park_brake_set", xplm.PhaseBegin))
	assert.Contains(t, buf.String(), "action unavailable")
	assert.NotContains(t, buf.String(), "level=WARN")
}

func TestReceiveMessage(t *testing.T) {
	h := newHost()
	var snaps []session.Snapshot
	p := newPlugin(t, h, func(s session.Snapshot) { snaps = append(snaps, s) })
	require.NoError(t, p.Start())

	// Messages before enable are ignored.
	p.ReceiveMessage(xplm.MsgPlaneLoaded, xplm.UserAircraft)

	require.NoError(t, p.Enable())
	d, err := p.Dispatcher()
	require.NoError(t, err)

	require.NoError(t, d.APDisconnect())
	require.Len(t, snaps, 1)
	assert.Equal(t, acftype.Generic, snaps[0].Classification.Variant)
	assert.Equal(t, 1, h.Count(dispatch.ServosOffCommand))

	tests := []struct {
		name       string
		msg        xplm.Message
		param      int
		invalidate bool
	}{
		{"other aircraft loaded", xplm.MsgPlaneLoaded, 3, false},
		{"airport loaded", xplm.MsgAirportLoaded, 0, false},
		{"scenery loaded", xplm.MsgSceneryLoaded, 0, false},
		{"crash", xplm.MsgPlaneCrashed, 0, false},
		{"user aircraft loaded", xplm.MsgPlaneLoaded, xplm.UserAircraft, true},
		{"livery loaded", xplm.MsgLiveryLoaded, xplm.UserAircraft, true},
		{"plane count changed", xplm.MsgPlaneCountChanged, xplm.UserAircraft, true},
		{"plane unloaded", xplm.MsgPlaneUnloaded, xplm.UserAircraft, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Session().Update()
			require.True(t, p.Session().UpToDate())
			p.ReceiveMessage(tt.msg, tt.param)
			assert.Equal(t, !tt.invalidate, p.Session().UpToDate())
		})
	}
}

func TestAircraftChangeSwitchesStrategy(t *testing.T) {
	h := newHost()
	p := newPlugin(t, h)
	require.NoError(t, p.Start())
	require.NoError(t, p.Enable())

	require.True(t, h.Fire("acfkit/ap_disconnect", xplm.PhaseBegin))
	assert.Equal(t, 1, h.Count(dispatch.ServosOffCommand))

	h.AddPlugin("XP11.ToLiss.A319.systems")
	require.True(t, h.Fire("acfkit/ap_disconnect", xplm.PhaseBegin))
	// Still the cached generic session until the host says otherwise.
	assert.Equal(t, 2, h.Count(dispatch.ServosOffCommand))

	p.ReceiveMessage(xplm.MsgPlaneLoaded, xplm.UserAircraft)
	require.True(t, h.Fire("acfkit/ap_disconnect", xplm.PhaseBegin))
	assert.Equal(t, 2, h.Count(dispatch.ServosOffCommand))
	assert.Equal(t, 1, h.Count("toliss_airbus/ap_disc_left_stick"))

	cl, ok := p.Session().Classification()
	require.True(t, ok)
	assert.Equal(t, acftype.A319TL, cl.Variant)
}
