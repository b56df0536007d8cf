package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Repository defines the storage operations the daemon needs
type Repository interface {
	ClassificationRepository() ClassificationRepository
	DesignatorRepository() DesignatorRepository
	DescribeDesignator(code string) (string, bool)
	Close() error
}

// DB implements the Repository interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite applies pragmas suited to a small, write-mostly journal
func optimizeSQLite(db *sql.DB) error {
	pragmas := []struct {
		stmt string
		what string
	}{
		// WAL lets the API read while the journal collector writes
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA cache_size=-16000", "set cache size"},
		{"PRAGMA synchronous=NORMAL", "set synchronous mode"},
		{"PRAGMA temp_store=MEMORY", "set temp_store"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			return fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// ClassificationRepository returns the classification journal
func (d *DB) ClassificationRepository() ClassificationRepository {
	return NewClassificationRepository(d.db)
}

// DesignatorRepository returns the type designator registry
func (d *DB) DesignatorRepository() DesignatorRepository {
	return NewDesignatorRepository(d.db)
}

// DescribeDesignator returns the manufacturer and model of an ICAO type
// designator, if the registry knows it.
func (d *DB) DescribeDesignator(code string) (string, bool) {
	des, err := d.DesignatorRepository().Get(strings.ToUpper(code))
	if err != nil || des == nil {
		return "", false
	}
	return des.Name(), true
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	classificationsSchema := `CREATE TABLE IF NOT EXISTS classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		variant TEXT NOT NULL,
		vendor TEXT,
		icao TEXT,
		reported_icao TEXT,
		signature TEXT,
		rule TEXT,
		fallback INTEGER NOT NULL DEFAULT 0,
		engine_count INTEGER,
		engine_type TEXT,
		author TEXT,
		description TEXT,
		tail_number TEXT,
		file_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session_id)
	);`

	designatorsSchema := `CREATE TABLE IF NOT EXISTS type_designators (
		icao TEXT PRIMARY KEY,
		manufacturer TEXT,
		model TEXT,
		description TEXT,
		engine_type TEXT,
		engine_count INTEGER,
		wtc TEXT
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_classifications_timestamp ON classifications(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_variant ON classifications(variant)`,
	}

	if _, err := d.db.Exec(classificationsSchema); err != nil {
		return fmt.Errorf("failed to create classifications table: %w", err)
	}

	if _, err := d.db.Exec(designatorsSchema); err != nil {
		return fmt.Errorf("failed to create type_designators table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

var _ Repository = (*DB)(nil)
