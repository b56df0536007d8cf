package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"acfkit/internal/dispatch"
	"acfkit/internal/models"
	"acfkit/internal/plugin"
	"acfkit/internal/radio"
	"acfkit/internal/scheduler"
	"acfkit/internal/xplm"

	"github.com/go-chi/chi/v5"
)

const (
	defaultJournalLimit = 20
	maxJournalLimit     = 500
	maxBodyBytes        = 1 << 10
)

// Handler serves the API routes.
type Handler struct {
	cfg Config
	log *slog.Logger
}

// NewHandler creates a handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{cfg: cfg, log: cfg.Logger.With("component", "api")}
}

// ClassificationStatus is the current classification.
type ClassificationStatus struct {
	Variant      string `json:"variant"`
	Vendor       string `json:"vendor,omitempty"`
	ICAO         string `json:"icao"`
	ReportedICAO string `json:"reported_icao"`
	Designator   string `json:"designator,omitempty"`
	EngineCount  int    `json:"engine_count"`
	EngineType   string `json:"engine_type"`
	Signature    string `json:"signature,omitempty"`
	Rule         string `json:"rule,omitempty"`
	Fallback     bool   `json:"fallback"`
}

// Status is the response of GET /status.
type Status struct {
	Enabled        bool                   `json:"enabled"`
	UpToDate       bool                   `json:"up_to_date"`
	SessionID      string                 `json:"session_id,omitempty"`
	Probes         int                    `json:"probes"`
	Classification *ClassificationStatus  `json:"classification,omitempty"`
	Tasks          []scheduler.TaskStatus `json:"tasks,omitempty"`
}

// GetStatus reports the session state. With ?refresh=true the aircraft is
// classified first if the session is stale.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	var st Status
	err := h.cfg.Exec.Do(r.Context(), func() {
		ctx := h.cfg.Plugin.Session()
		st.Enabled = h.cfg.Plugin.Enabled()
		if ctx == nil {
			return
		}
		if refresh {
			ctx.Update()
		}
		cl, ok := ctx.Classification()
		st.UpToDate = ok
		st.SessionID = ctx.SessionID()
		st.Probes = ctx.Probes()
		if ok {
			st.Classification = &ClassificationStatus{
				Variant:      cl.Variant.String(),
				Vendor:       cl.Variant.Info().Vendor,
				ICAO:         cl.ICAO,
				ReportedICAO: cl.ReportedICAO,
				EngineCount:  cl.Engines.Count,
				EngineType:   cl.Engines.Type.String(),
				Signature:    cl.Signature,
				Rule:         cl.Rule,
				Fallback:     cl.Fallback,
			}
		}
	})
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	if st.Classification != nil && h.cfg.Designators != nil && st.Classification.ICAO != "" {
		if d, err := h.cfg.Designators.Get(st.Classification.ICAO); err == nil && d != nil {
			st.Classification.Designator = d.Name()
		}
	}
	if h.cfg.Tasks != nil {
		st.Tasks = h.cfg.Tasks()
	}
	h.writeJSON(w, http.StatusOK, st)
}

// GetJournal returns the most recent classifications, ?limit=N.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Journal == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("journal not configured"))
		return
	}
	limit := defaultJournalLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxJournalLimit)
	}
	recs, err := h.cfg.Journal.Recent(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []*models.ClassificationRecord{}
	}
	h.writeJSON(w, http.StatusOK, recs)
}

// GetDesignator looks up an ICAO type designator.
func (h *Handler) GetDesignator(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Designators == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("designator registry not configured"))
		return
	}
	code := strings.ToUpper(chi.URLParam(r, "code"))
	d, err := h.cfg.Designators.Get(code)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if d == nil {
		h.writeError(w, http.StatusNotFound, errors.New("unknown type designator "+code))
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// ListActions lists the action names.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, dispatch.Actions())
}

// PostAction performs an action. The argument is the request body, or the
// arg query parameter.
func (h *Handler) PostAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if !slices.Contains(dispatch.Actions(), action) {
		h.writeError(w, http.StatusNotFound, errors.New("unknown action "+action))
		return
	}
	arg := r.URL.Query().Get("arg")
	if arg == "" {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		arg = strings.TrimSpace(string(body))
	}

	h.perform(w, r, func(d *dispatch.Dispatcher) error { return d.Do(action, arg) })
}

// PostCommand issues a host command: /commands/{once|begin|end}/<name>.
func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("command name required"))
		return
	}
	phase := chi.URLParam(r, "phase")

	var run func(d *dispatch.Dispatcher) error
	if phase == "once" {
		run = func(d *dispatch.Dispatcher) error { return d.CommandOnce(name) }
	} else {
		p, err := dispatch.ParsePhase(phase)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		run = func(d *dispatch.Dispatcher) error { return d.Command(name, p) }
	}
	h.perform(w, r, run)
}

// PostMessage delivers a host message by name or number; ?param=N selects
// the plane index.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	msg, ok := xplm.ParseMessage(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, errors.New("unknown message "+chi.URLParam(r, "id")))
		return
	}
	param := xplm.UserAircraft
	if s := r.URL.Query().Get("param"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, errors.New("param must be an integer"))
			return
		}
		param = n
	}
	if err := h.cfg.Exec.Do(r.Context(), func() { h.cfg.Plugin.ReceiveMessage(msg, param) }); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) perform(w http.ResponseWriter, r *http.Request, fn func(d *dispatch.Dispatcher) error) {
	var err error
	if execErr := h.cfg.Exec.Do(r.Context(), func() {
		d, derr := h.cfg.Plugin.Dispatcher()
		if derr != nil {
			err = derr
			return
		}
		err = fn(d)
	}); execErr != nil {
		h.writeError(w, http.StatusServiceUnavailable, execErr)
		return
	}
	if err != nil {
		h.writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, radio.ErrInvalid), errors.Is(err, radio.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, dispatch.ErrUnavailable), errors.Is(err, plugin.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	switch {
	case errors.Is(err, dispatch.ErrUnavailable):
		h.log.Debug("Action unavailable", "status", status, "error", err)
	case status >= http.StatusInternalServerError:
		h.log.Warn("Request failed", "status", status, "error", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}
