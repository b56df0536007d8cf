package database

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"acfkit/internal/models"
)

type DesignatorRepository interface {
	InsertBatch(designators []*models.TypeDesignator) error
	IsTablePopulated() (bool, error)
	LoadFromMultipleCSV(csvPaths []string, batchSize int) error
	Get(icao string) (*models.TypeDesignator, error)
}

type designatorRepository struct {
	db *sql.DB
}

func NewDesignatorRepository(db *sql.DB) DesignatorRepository {
	return &designatorRepository{db: db}
}

// InsertBatch inserts one or more type designators in a single transaction
func (r *designatorRepository) InsertBatch(designators []*models.TypeDesignator) error {
	if len(designators) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO type_designators (
		icao, manufacturer, model, description, engine_type, engine_count, wtc
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, d := range designators {
		if _, err := stmt.Exec(
			d.ICAO, d.Manufacturer, d.Model, d.Description,
			d.EngineType, d.EngineCount, d.WTC,
		); err != nil {
			return fmt.Errorf("failed to insert type designator: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *designatorRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM type_designators LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check type_designators table: %w", err)
	}
	return true, nil
}

// Get returns the designator, or nil when it is unknown
func (r *designatorRepository) Get(icao string) (*models.TypeDesignator, error) {
	d := &models.TypeDesignator{}
	err := r.db.QueryRow(`SELECT icao, manufacturer, model, description, engine_type, engine_count, wtc
		FROM type_designators WHERE icao = ?`, icao).Scan(
		&d.ICAO, &d.Manufacturer, &d.Model, &d.Description, &d.EngineType, &d.EngineCount, &d.WTC,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get type designator %s: %w", icao, err)
	}
	return d, nil
}

// LoadFromMultipleCSV loads type designators from CSV files sharing the
// header of the first one.
func (r *designatorRepository) LoadFromMultipleCSV(csvPaths []string, batchSize int) error {
	var headerMap map[string]int
	var expectedFields int
	batch := make([]*models.TypeDesignator, 0, batchSize)

	for fileIdx, csvPath := range csvPaths {
		if err := func() error {
			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open CSV file %s: %w", csvPath, err)
			}
			defer file.Close()

			reader := csv.NewReader(file)
			reader.LazyQuotes = true
			reader.FieldsPerRecord = -1
			reader.Comment = '#'

			header, err := reader.Read()
			if err != nil {
				return fmt.Errorf("failed to read CSV header from %s: %w", csvPath, err)
			}

			if fileIdx == 0 {
				expectedFields = len(header)
				headerMap = make(map[string]int)
				for i, h := range header {
					headerMap[strings.Trim(strings.TrimSpace(h), "'\"")] = i
				}
			}

			for {
				record, err := reader.Read()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to read CSV record from %s: %w", csvPath, err)
				}

				if len(record) != expectedFields {
					continue
				}

				engines, _ := strconv.Atoi(getField(record, headerMap, "engineCount"))
				d := &models.TypeDesignator{
					ICAO:         strings.ToUpper(getField(record, headerMap, "icao")),
					Manufacturer: getField(record, headerMap, "manufacturer"),
					Model:        getField(record, headerMap, "model"),
					Description:  getField(record, headerMap, "description"),
					EngineType:   getField(record, headerMap, "engineType"),
					EngineCount:  engines,
					WTC:          getField(record, headerMap, "wtc"),
				}

				// Skip records without a designator
				if d.ICAO == "" {
					continue
				}

				batch = append(batch, d)

				if len(batch) >= batchSize {
					if err := r.InsertBatch(batch); err != nil {
						return fmt.Errorf("failed to insert batch: %w", err)
					}
					batch = batch[:0]
				}
			}
		}(); err != nil {
			return err
		}
	}

	if len(batch) > 0 {
		if err := r.InsertBatch(batch); err != nil {
			return fmt.Errorf("failed to insert final batch: %w", err)
		}
	}

	return nil
}

// getField safely retrieves a field from a CSV record by header name
func getField(record []string, headerMap map[string]int, fieldName string) string {
	if idx, ok := headerMap[fieldName]; ok && idx < len(record) {
		return strings.Trim(strings.TrimSpace(record[idx]), "'\"")
	}
	return ""
}
