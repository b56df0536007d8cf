package database

import (
	"database/sql"
	"fmt"

	"acfkit/internal/models"
)

type ClassificationRepository interface {
	InsertBatch(records []*models.ClassificationRecord) error
	Recent(limit int) ([]*models.ClassificationRecord, error)
	Count() (int, error)
}

type classificationRepository struct {
	db *sql.DB
}

func NewClassificationRepository(db *sql.DB) ClassificationRepository {
	return &classificationRepository{db: db}
}

// InsertBatch inserts one or more journal records in a single transaction.
// A session is journaled once; repeated records for it are ignored.
func (r *classificationRepository) InsertBatch(records []*models.ClassificationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO classifications (
		session_id, timestamp, variant, vendor, icao, reported_icao,
		signature, rule, fallback, engine_count, engine_type,
		author, description, tail_number, file_path
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			rec.SessionID, rec.Timestamp, rec.Variant, rec.Vendor,
			rec.ICAO, rec.ReportedICAO, rec.Signature, rec.Rule,
			rec.Fallback, rec.EngineCount, rec.EngineType,
			rec.Author, rec.Description, rec.TailNumber, rec.FilePath,
		); err != nil {
			return fmt.Errorf("failed to insert classification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first
func (r *classificationRepository) Recent(limit int) ([]*models.ClassificationRecord, error) {
	rows, err := r.db.Query(`SELECT
		id, session_id, timestamp, variant, vendor, icao, reported_icao,
		signature, rule, fallback, engine_count, engine_type,
		author, description, tail_number, file_path
	FROM classifications ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	var out []*models.ClassificationRecord
	for rows.Next() {
		rec := &models.ClassificationRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Timestamp, &rec.Variant, &rec.Vendor,
			&rec.ICAO, &rec.ReportedICAO, &rec.Signature, &rec.Rule,
			&rec.Fallback, &rec.EngineCount, &rec.EngineType,
			&rec.Author, &rec.Description, &rec.TailNumber, &rec.FilePath,
		); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read classifications: %w", err)
	}
	return out, nil
}

func (r *classificationRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM classifications").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count classifications: %w", err)
	}
	return n, nil
}
