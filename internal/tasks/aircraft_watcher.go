package tasks

import (
	"context"
	"log/slog"
	"time"

	"acfkit/internal/xplm"
)

// LiveryPathDataRef holds the path of the livery in use.
const LiveryPathDataRef = "sim/aircraft/view/acf_livery_path"

// Executor runs fn on the goroutine that owns the host.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// MessageReceiver takes host messages.
type MessageReceiver interface {
	ReceiveMessage(msg xplm.Message, param int)
}

// AircraftWatcher polls the user aircraft model and livery and synthesizes
// the host messages a callback-less host never sends.
type AircraftWatcher struct {
	host     xplm.Host
	exec     Executor
	receiver MessageReceiver
	interval time.Duration
	log      *slog.Logger

	// owned by the executor goroutine
	seen   bool
	model  string
	livery string
}

// NewAircraftWatcher creates a watcher polling every interval.
func NewAircraftWatcher(host xplm.Host, exec Executor, receiver MessageReceiver, interval time.Duration, log *slog.Logger) *AircraftWatcher {
	if log == nil {
		log = slog.Default()
	}
	return &AircraftWatcher{
		host:     host,
		exec:     exec,
		receiver: receiver,
		interval: interval,
		log:      log,
	}
}

func (w *AircraftWatcher) Name() string { return "aircraft_watcher" }

func (w *AircraftWatcher) Interval() time.Duration { return w.interval }

// Run polls once on the executor.
func (w *AircraftWatcher) Run(ctx context.Context) error {
	return w.exec.Do(ctx, w.poll)
}

func (w *AircraftWatcher) poll() {
	_, model := w.host.UserAircraftModel()
	livery := xplm.ReadString(w.host, w.host.FindDataRef(LiveryPathDataRef), xplm.PathSize)

	if model == "" {
		// Not reported yet, or unloaded.
		if w.seen && w.model != "" {
			w.log.Info("User aircraft unloaded", "model", w.model)
			w.receiver.ReceiveMessage(xplm.MsgPlaneUnloaded, xplm.UserAircraft)
		}
		w.seen, w.model, w.livery = true, "", ""
		return
	}

	switch {
	case !w.seen || model != w.model:
		w.log.Info("User aircraft changed", "model", model, "previous", w.model)
		w.receiver.ReceiveMessage(xplm.MsgPlaneLoaded, xplm.UserAircraft)
	case livery != w.livery:
		w.log.Info("User livery changed", "livery", livery, "previous", w.livery)
		w.receiver.ReceiveMessage(xplm.MsgLiveryLoaded, xplm.UserAircraft)
	}
	w.seen, w.model, w.livery = true, model, livery
}
