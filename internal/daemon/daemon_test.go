package daemon

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"acfkit/internal/database"
	"acfkit/internal/xplm/memhost"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_DoRunsInOrder(t *testing.T) {
	l := NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, l.Submit(ctx, func() { order = append(order, i) }))
	}
	require.NoError(t, l.Do(ctx, func() { order = append(order, 3) }))
	assert.Equal(t, []int{0, 1, 2, 3}, order)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
}

func TestLoop_DoHonorsContext(t *testing.T) {
	l := NewLoop(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Nobody runs the loop.
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeLink struct {
	runs   atomic.Int32
	closed atomic.Bool
}

func (f *fakeLink) Run(ctx context.Context) error {
	f.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeLink) Close() error {
	f.closed.Store(true)
	return nil
}

func TestNew_RequiresHost(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestDaemon_Run(t *testing.T) {
	dbPath := "/tmp/test_acfkit_daemon.db"
	os.Remove(dbPath)
	db, err := database.New(dbPath)
	require.NoError(t, err)
	defer func() {
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	h := memhost.New()
	h.SetModel("b738.acf", "Aircraft/B737-800X/b738.acf")
	link := &fakeLink{}

	d, err := New(Config{
		Host:         h,
		Link:         link,
		Repo:         db,
		BatchSize:    10,
		BatchTimeout: 20 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Wait for the plugin to come up, then classify.
	require.Eventually(t, func() bool {
		enabled := false
		err := d.Loop().Do(ctx, func() { enabled = d.Plugin().Enabled() })
		return err == nil && enabled
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Loop().Do(ctx, func() { d.Plugin().Session().Update() }))

	require.Eventually(t, func() bool {
		n, err := db.ClassificationRepository().Count()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	// An aircraft change seen by the watcher invalidates the session.
	require.NoError(t, d.Loop().Do(ctx, func() { h.SetModel("a319.acf", "Aircraft/ToLiss A319/a319.acf") }))
	require.Eventually(t, func() bool {
		stale := false
		err := d.Loop().Do(ctx, func() { stale = !d.Plugin().Session().UpToDate() })
		return err == nil && stale
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Equal(t, int32(1), link.runs.Load())
	assert.True(t, link.closed.Load())
	assert.False(t, d.Plugin().Enabled())
}

func TestIgnoreCanceled(t *testing.T) {
	assert.NoError(t, ignoreCanceled(context.Canceled))
	assert.NoError(t, ignoreCanceled(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, ignoreCanceled(boom), boom)
}
