package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"acfkit/internal/acftype"
	"acfkit/internal/database"
	"acfkit/internal/dispatch"
	"acfkit/internal/models"
	"acfkit/internal/plugin"
	"acfkit/internal/scheduler"
	"acfkit/internal/session"
	"acfkit/internal/xplm"
	"acfkit/internal/xplm/memhost"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineExecutor struct{}

func (inlineExecutor) Do(ctx context.Context, fn func()) error {
	fn()
	return nil
}

type fixture struct {
	host   *memhost.Host
	plugin *plugin.Plugin
	db     *database.DB
	server *httptest.Server
	logs   *logBuffer
}

// logBuffer is written by server goroutines and read by the test.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := memhost.New()
	h.DefineFloat(dispatch.ParkBrakeDataRef, 0)
	for _, ref := range dispatch.RadioDataRefs {
		h.DefineInt(ref, 0)
	}
	h.DefineString(acftype.ICAODataRef, "B738", xplm.ICAOSize)
	for _, cmd := range []string{
		dispatch.BrakesRegularCommand, dispatch.BrakesMaxCommand,
		dispatch.ServosOffCommand, dispatch.AutothrottleOffCommand, dispatch.TOGACommand,
	} {
		h.DefineCommand(cmd)
	}

	dbPath := "/tmp/test_acfkit_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	os.Remove(dbPath)
	db, err := database.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	})
	require.NoError(t, db.DesignatorRepository().InsertBatch([]*models.TypeDesignator{
		{ICAO: "B738", Manufacturer: "BOEING", Model: "737-800", Description: "L2J", EngineType: "Jet", EngineCount: 2, WTC: "M"},
	}))

	p, err := plugin.New(plugin.Config{Session: session.Config{
		Host:        h,
		Classifier:  acftype.NewClassifier(nil),
		Designators: db,
	}})
	require.NoError(t, err)
	require.NoError(t, p.Start())
	require.NoError(t, p.Enable())

	logs := &logBuffer{}
	router := NewRouter(Config{
		Logger:      slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Exec:        inlineExecutor{},
		Plugin:      p,
		Journal:     db.ClassificationRepository(),
		Designators: db.DesignatorRepository(),
		Tasks: func() []scheduler.TaskStatus {
			return []scheduler.TaskStatus{{Name: "aircraft_watcher", Runs: 3}}
		},
	})
	srv := httptest.NewServer(router.Routes())
	t.Cleanup(srv.Close)

	return &fixture{host: h, plugin: p, db: db, server: srv, logs: logs}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetStatus(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.Enabled)
	assert.False(t, st.UpToDate)
	assert.Nil(t, st.Classification)
	require.Len(t, st.Tasks, 1)
	assert.Equal(t, 3, st.Tasks[0].Runs)

	resp = f.do(t, http.MethodGet, "/status?refresh=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = Status{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.UpToDate)
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, 1, st.Probes)
	require.NotNil(t, st.Classification)
	assert.Equal(t, "generic", st.Classification.Variant)
	assert.Equal(t, "B738", st.Classification.ICAO)
	assert.Equal(t, "BOEING 737-800", st.Classification.Designator)
}

func TestPostAction(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		check  func(t *testing.T)
	}{
		{
			name:   "park brake",
			path:   "/actions/park_brake_set",
			status: http.StatusNoContent,
			check: func(t *testing.T) {
				assert.Equal(t, float32(1), f.host.Float(dispatch.ParkBrakeDataRef))
			},
		},
		{
			name:   "tune from body",
			path:   "/actions/tune",
			body:   "com1 121.5",
			status: http.StatusNoContent,
			check: func(t *testing.T) {
				assert.Equal(t, 121500, f.host.Int(dispatch.RadioDataRefs[dispatch.COM1]))
			},
		},
		{
			name:   "tune from query",
			path:   "/actions/tune?arg=com1+118.05",
			status: http.StatusNoContent,
			check: func(t *testing.T) {
				assert.Equal(t, 118050, f.host.Int(dispatch.RadioDataRefs[dispatch.COM1]))
			},
		},
		{name: "out of range", path: "/actions/tune", body: "com1 99", status: http.StatusBadRequest},
		{name: "bad phase", path: "/actions/brake_max", body: "hold", status: http.StatusBadRequest},
		{name: "unknown action", path: "/actions/eject", status: http.StatusNotFound},
		{name: "unavailable subsystem", path: "/actions/xpdr_ident", status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestPostAction_UnavailableIsNotAWarning(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/actions/xpdr_ident", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, f.logs.String(), "Action unavailable")
	assert.NotContains(t, f.logs.String(), "level=WARN")
}

func TestPostAction_Disabled(t *testing.T) {
	f := newFixture(t)
	f.plugin.Disable()

	resp := f.do(t, http.MethodPost, "/actions/park_brake_set", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPostCommand(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/commands/begin/sim/flight_controls/brakes_max", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/commands/end/sim/flight_controls/brakes_max", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/commands/once/sim/autopilot/servos_off_any", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, []memhost.Invocation{
		{Name: dispatch.BrakesMaxCommand, Phase: xplm.PhaseBegin},
		{Name: dispatch.BrakesMaxCommand, Phase: xplm.PhaseEnd},
		{Name: dispatch.ServosOffCommand, Phase: xplm.PhaseBegin},
		{Name: dispatch.ServosOffCommand, Phase: xplm.PhaseEnd},
	}, f.host.Invocations())

	resp = f.do(t, http.MethodPost, "/commands/hold/sim/flight_controls/brakes_max", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/commands/once/no/such/command", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t)
	f.plugin.Session().Update()

	resp := f.do(t, http.MethodPost, "/messages/plane_loaded?param=2", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, f.plugin.Session().UpToDate())

	resp = f.do(t, http.MethodPost, "/messages/102", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, f.plugin.Session().UpToDate())

	resp = f.do(t, http.MethodPost, "/messages/bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/messages/102?param=x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetJournal(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/journal", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recs []models.ClassificationRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	assert.Empty(t, recs)

	now := time.Now().UTC()
	require.NoError(t, f.db.ClassificationRepository().InsertBatch([]*models.ClassificationRecord{
		{SessionID: "a", Timestamp: now.Add(-time.Minute), Variant: "generic"},
		{SessionID: "b", Timestamp: now, Variant: "zibo-b738", ICAO: "B738"},
	}))

	resp = f.do(t, http.MethodGet, "/journal?limit=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].SessionID)

	resp = f.do(t, http.MethodGet, "/journal?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDesignator(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/designators/b738", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d models.TypeDesignator
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	assert.Equal(t, "737-800", d.Model)
	assert.Equal(t, 2, d.EngineCount)

	resp = f.do(t, http.MethodGet, "/designators/ZZZZ", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListActions(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/actions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var actions []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actions))
	assert.Equal(t, dispatch.Actions(), actions)
}
