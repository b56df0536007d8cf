package tasks

import (
	"context"
	"log/slog"
	"time"

	"acfkit/internal/models"
	"acfkit/internal/session"
)

// JournalWriter stores classification records.
type JournalWriter interface {
	InsertBatch(records []*models.ClassificationRecord) error
}

// JournalCollector collects classification records and commits them to the database in batches
type JournalCollector struct {
	repo          JournalWriter
	recordChan    <-chan *models.ClassificationRecord
	batchSize     int           // maximum number of records in a batch before committing to database
	flushInterval time.Duration // time to flush batch even if not full
	log           *slog.Logger
}

// Default batch size is 100 records and flush interval is 1 second
func NewJournalCollector(repo JournalWriter, recordChan <-chan *models.ClassificationRecord) *JournalCollector {
	return NewJournalCollectorWithConfig(repo, recordChan, 100, time.Second)
}

// NewJournalCollectorWithConfig creates a collector with custom batch settings
func NewJournalCollectorWithConfig(repo JournalWriter, recordChan <-chan *models.ClassificationRecord, batchSize int, flushInterval time.Duration) *JournalCollector {
	return &JournalCollector{
		repo:          repo,
		recordChan:    recordChan,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		log:           slog.Default(),
	}
}

// WithLogger replaces the collector logger.
func (c *JournalCollector) WithLogger(log *slog.Logger) *JournalCollector {
	c.log = log
	return c
}

// Start collects records and writes them in batches until the context is
// cancelled or the channel is closed. A partial batch is flushed once
// flushInterval has passed, even if no further record arrives.
func (c *JournalCollector) Start(ctx context.Context) error {
	batch := make([]*models.ClassificationRecord, 0, c.batchSize)

	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.repo.InsertBatch(batch); err != nil {
			c.log.Error("Error inserting batch of journal records", "batch_size", len(batch), "error", err)
		} else {
			c.log.Debug("Inserted batch of journal records", "batch_size", len(batch))
		}
		batch = batch[:0] // Reset slice but keep capacity
	}

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Flush any remaining records before exiting
			flushBatch()
			return ctx.Err()

		case <-ticker.C:
			flushBatch()

		case rec, ok := <-c.recordChan:
			if !ok {
				flushBatch()
				return nil
			}
			if rec == nil {
				continue
			}

			batch = append(batch, rec)
			c.log.Debug("Added journal record to batch",
				"session", rec.SessionID,
				"variant", rec.Variant,
				"current_batch_size", len(batch),
				"max_batch_size", c.batchSize,
			)

			if len(batch) >= c.batchSize {
				flushBatch()
			}
		}
	}
}

// NewJournalRecord converts a classification snapshot into a journal record.
func NewJournalRecord(s session.Snapshot) *models.ClassificationRecord {
	cl := s.Classification
	return &models.ClassificationRecord{
		SessionID:    s.SessionID,
		Timestamp:    s.At.UTC(),
		Variant:      cl.Variant.String(),
		Vendor:       cl.Variant.Info().Vendor,
		ICAO:         cl.ICAO,
		ReportedICAO: cl.ReportedICAO,
		Signature:    cl.Signature,
		Rule:         cl.Rule,
		Fallback:     cl.Fallback,
		EngineCount:  cl.Engines.Count,
		EngineType:   cl.Engines.Type.String(),
		Author:       s.Evidence.Author,
		Description:  s.Evidence.Description,
		TailNumber:   s.Evidence.TailNumber,
		FilePath:     s.Evidence.FilePath,
	}
}

// Feed returns a snapshot observer that queues journal records on ch
// without blocking; records are dropped while the channel is full.
func Feed(ch chan<- *models.ClassificationRecord, log *slog.Logger) func(session.Snapshot) {
	return func(s session.Snapshot) {
		select {
		case ch <- NewJournalRecord(s):
		default:
			log.Warn("Journal queue full, dropping record", "session", s.SessionID)
		}
	}
}
