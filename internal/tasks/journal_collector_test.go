package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"acfkit/internal/acftype"
	"acfkit/internal/models"
	"acfkit/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository records inserted batches
type mockRepository struct {
	mu      sync.Mutex
	records []*models.ClassificationRecord
	batches int
	errors  []error
}

func (m *mockRepository) InsertBatch(recs []*models.ClassificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recs...)
	m.batches++
	if len(m.errors) > 0 {
		err := m.errors[0]
		m.errors = m.errors[1:]
		return err
	}
	return nil
}

func (m *mockRepository) counts() (records, batches int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), m.batches
}

func TestNewJournalCollector(t *testing.T) {
	repo := &mockRepository{}
	ch := make(chan *models.ClassificationRecord, 10)

	collector := NewJournalCollector(repo, ch)

	require.NotNil(t, collector)
	assert.Equal(t, 100, collector.batchSize)
	assert.Equal(t, 1*time.Second, collector.flushInterval)
}

func TestJournalCollector_BatchFlush(t *testing.T) {
	repo := &mockRepository{}
	ch := make(chan *models.ClassificationRecord, 100)
	collector := NewJournalCollectorWithConfig(repo, ch, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = collector.Start(ctx) }()

	for i := 0; i < 5; i++ {
		ch <- &models.ClassificationRecord{SessionID: "s", Variant: "generic"}
	}

	require.Eventually(t, func() bool {
		n, batches := repo.counts()
		return n == 5 && batches == 1
	}, time.Second, 10*time.Millisecond)
}

func TestJournalCollector_IntervalFlush(t *testing.T) {
	repo := &mockRepository{}
	ch := make(chan *models.ClassificationRecord, 100)
	collector := NewJournalCollectorWithConfig(repo, ch, 100, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = collector.Start(ctx) }()

	ch <- &models.ClassificationRecord{SessionID: "s1"}
	ch <- &models.ClassificationRecord{SessionID: "s2"}

	require.Eventually(t, func() bool {
		n, _ := repo.counts()
		return n == 2
	}, time.Second, 10*time.Millisecond)
}

func TestJournalCollector_ChannelClose(t *testing.T) {
	repo := &mockRepository{}
	ch := make(chan *models.ClassificationRecord, 10)
	collector := NewJournalCollectorWithConfig(repo, ch, 100, time.Hour)

	ch <- &models.ClassificationRecord{SessionID: "s1"}
	ch <- nil
	close(ch)

	err := collector.Start(context.Background())
	assert.NoError(t, err)
	n, batches := repo.counts()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, batches)
}

func TestJournalCollector_ContextCancelFlushes(t *testing.T) {
	repo := &mockRepository{}
	ch := make(chan *models.ClassificationRecord, 10)
	collector := NewJournalCollectorWithConfig(repo, ch, 100, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- collector.Start(ctx) }()

	ch <- &models.ClassificationRecord{SessionID: "s1"}
	require.Eventually(t, func() bool { return len(ch) == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	n, _ := repo.counts()
	assert.Equal(t, 1, n)
}

func TestJournalCollector_InsertErrorKeepsRunning(t *testing.T) {
	repo := &mockRepository{errors: []error{errors.New("disk full")}}
	ch := make(chan *models.ClassificationRecord, 10)
	collector := NewJournalCollectorWithConfig(repo, ch, 1, time.Hour)

	ch <- &models.ClassificationRecord{SessionID: "s1"}
	ch <- &models.ClassificationRecord{SessionID: "s2"}
	close(ch)

	assert.NoError(t, collector.Start(context.Background()))
	_, batches := repo.counts()
	assert.Equal(t, 2, batches)
}

func snapshot() session.Snapshot {
	return session.Snapshot{
		SessionID: "abc",
		At:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
		Classification: acftype.Classification{
			Variant:      acftype.B738ZB,
			ICAO:         "B738",
			ReportedICAO: "B738",
			Engines:      acftype.Engines{Count: 2, Type: acftype.EngineHighBypassJet},
			Signature:    "zibomod.by.Zibo",
			Rule:         "description",
		},
		Evidence: acftype.Evidence{
			Author:      "Zibo",
			Description: "Boeing 737-800X",
			TailNumber:  "ZB738",
			FilePath:    "Aircraft/B737-800X/b738.acf",
		},
	}
}

func TestNewJournalRecord(t *testing.T) {
	rec := NewJournalRecord(snapshot())

	assert.Equal(t, "abc", rec.SessionID)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
	assert.Equal(t, 10, rec.Timestamp.Hour())
	assert.Equal(t, acftype.B738ZB.String(), rec.Variant)
	assert.Equal(t, "Zibo", rec.Vendor)
	assert.Equal(t, "B738", rec.ICAO)
	assert.False(t, rec.Corrected())
	assert.Equal(t, "high-bypass-jet", rec.EngineType)
	assert.Equal(t, 2, rec.EngineCount)
	assert.Equal(t, "Boeing 737-800X", rec.Description)
	assert.Equal(t, "ZB738", rec.TailNumber)
	assert.Equal(t, "Aircraft/B737-800X/b738.acf", rec.FilePath)
}

func TestFeed_DropsWhenFull(t *testing.T) {
	ch := make(chan *models.ClassificationRecord, 1)
	feed := Feed(ch, slog.Default())

	feed(snapshot())
	feed(snapshot())

	assert.Len(t, ch, 1)
}
