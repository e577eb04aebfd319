package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates an unopened store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenReadOnly opens the database for query-only access.
func OpenReadOnly(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path+"?mode=ro")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// ReplaceSources atomically replaces the indexed catalogue with the given
// rows and data-file records.
func (s *SQLiteStore) ReplaceSources(sources []SourceRecord, files []DataFile) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM data_files`); err != nil {
		return fmt.Errorf("failed to clear data_files: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sources`); err != nil {
		return fmt.Errorf("failed to clear sources: %w", err)
	}

	now := time.Now().UTC()
	for i := range sources {
		src := &sources[i]
		if src.ID == "" {
			src.ID = generateID()
		}
		src.CreatedAt = now

		_, err := tx.Exec(
			`INSERT INTO sources (id, name, at_name, ztf_name, gaia_name, alt_name, redshift, discovery, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			src.ID, src.Name, src.ATName, src.ZTFName, src.GaiaName, src.AltName, src.Redshift, src.Discovery, src.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert source %s: %w", src.Name, err)
		}
	}

	for _, f := range files {
		_, err := tx.Exec(
			`INSERT INTO data_files (source_id, kind, path, present) VALUES (?, ?, ?, ?)`,
			f.SourceID, f.Kind, f.Path, f.Present,
		)
		if err != nil {
			return fmt.Errorf("failed to insert data file %s/%s: %w", f.SourceID, f.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSources retrieves all indexed sources ordered by name.
func (s *SQLiteStore) ListSources() ([]SourceRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, name, at_name, ztf_name, gaia_name, alt_name, redshift, discovery, created_at
		 FROM sources ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []SourceRecord
	for rows.Next() {
		rec, err := scanSource(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, *rec)
	}
	return sources, rows.Err()
}

// GetSource retrieves one source by its plain name.
// Returns nil without error when the source is not indexed.
func (s *SQLiteStore) GetSource(name string) (*SourceRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, name, at_name, ztf_name, gaia_name, alt_name, redshift, discovery, created_at
		 FROM sources WHERE name = ? COLLATE NOCASE`,
		name,
	)
	rec, err := scanSource(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return rec, nil
}

func scanSource(scan func(...any) error) (*SourceRecord, error) {
	rec := &SourceRecord{}
	var redshift sql.NullFloat64

	err := scan(&rec.ID, &rec.Name, &rec.ATName, &rec.ZTFName, &rec.GaiaName,
		&rec.AltName, &redshift, &rec.Discovery, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if redshift.Valid {
		rec.Redshift = &redshift.Float64
	}
	return rec, nil
}

// DataFiles retrieves the data-file records for a source.
func (s *SQLiteStore) DataFiles(sourceID string) ([]DataFile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT source_id, kind, path, present FROM data_files WHERE source_id = ? ORDER BY kind`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get data files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []DataFile
	for rows.Next() {
		var f DataFile
		if err := rows.Scan(&f.SourceID, &f.Kind, &f.Path, &f.Present); err != nil {
			return nil, fmt.Errorf("failed to scan data file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// StartIndexRun records the beginning of an index rebuild.
func (s *SQLiteStore) StartIndexRun() (*IndexRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &IndexRun{
		ID:        generateID(),
		Status:    IndexRunRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO index_runs (id, status, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create index run: %w", err)
	}
	return run, nil
}

// CompleteIndexRun marks an index run as finished.
func (s *SQLiteStore) CompleteIndexRun(id string, status IndexRunStatus, sourceCount, fileCount int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE index_runs SET status = ?, source_count = ?, file_count = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, sourceCount, fileCount, now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete index run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("index run not found: %s", id)
	}
	return nil
}

// LatestIndexRun retrieves the most recent index run, or nil when the index
// has never been built.
func (s *SQLiteStore) LatestIndexRun() (*IndexRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &IndexRun{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, status, source_count, file_count, started_at, completed_at, error
		 FROM index_runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.Status, &run.SourceCount, &run.FileCount, &run.StartedAt, &completedAt, &errMsg)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest index run: %w", err)
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}

// Ensure SQLiteStore implements the Store interface
var _ Store = (*SQLiteStore)(nil)
