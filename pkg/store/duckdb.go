package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/stats"
)

// DuckDBStore implements Store using DuckDB.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a new DuckDB-backed store.
// Pass dsn="" for in-memory, or a file path for persistent storage.
func NewDuckDBStore(dsn string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBStore{db: db}, nil
}

// Init creates the files, log_entries, and summaries tables if they do not
// exist.
func (s *DuckDBStore) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id VARCHAR PRIMARY KEY,
			path VARCHAR,
			uploaded_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create files table: %w", err)
	}

	_, _ = s.db.Exec(`CREATE SEQUENCE IF NOT EXISTS log_entries_id_seq START 1`)
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS log_entries (
			id BIGINT DEFAULT nextval('log_entries_id_seq'),
			file_id VARCHAR,
			line_number INTEGER,
			level VARCHAR,
			timestamp TIMESTAMP,
			message VARCHAR,
			raw VARCHAR
		)
	`)
	if err != nil {
		return fmt.Errorf("create log_entries table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS summaries (
			file_id VARCHAR PRIMARY KEY,
			summary VARCHAR,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create summaries table: %w", err)
	}

	return nil
}

// InsertFile registers a log file under its path and returns the new ID.
// A file previously registered under the same path is replaced along with
// its entries and summary.
func (s *DuckDBStore) InsertFile(path string) (uuid.UUID, error) {
	if existing, err := s.FileByPath(path); err == nil {
		if err := s.DeleteFile(existing.ID); err != nil {
			return uuid.Nil, err
		}
	} else if err != sql.ErrNoRows {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err := s.db.Exec(
		`INSERT INTO files (id, path, uploaded_at) VALUES (?, ?, ?)`,
		id.String(), path, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert file: %w", err)
	}
	return id, nil
}

// FileByPath returns the file registered under the given path.
// Returns sql.ErrNoRows when the path is unknown.
func (s *DuckDBStore) FileByPath(path string) (File, error) {
	var f File
	var id string
	err := s.db.QueryRow(
		`SELECT id, path, uploaded_at FROM files WHERE path = ?`, path,
	).Scan(&id, &f.Path, &f.UploadedAt)
	if err == sql.ErrNoRows {
		return File{}, err
	}
	if err != nil {
		return File{}, fmt.Errorf("file by path: %w", err)
	}
	f.ID, err = uuid.Parse(id)
	if err != nil {
		return File{}, fmt.Errorf("parse file id: %w", err)
	}
	return f, nil
}

// Files returns all registered files, most recently uploaded first.
func (s *DuckDBStore) Files() ([]File, error) {
	rows, err := s.db.Query(`SELECT id, path, uploaded_at FROM files ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []File
	for rows.Next() {
		var f File
		var id string
		if err := rows.Scan(&id, &f.Path, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse file id: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return files, nil
}

// DeleteFile removes a file together with its entries and summary.
func (s *DuckDBStore) DeleteFile(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM log_entries WHERE file_id = ?`,
		`DELETE FROM summaries WHERE file_id = ?`,
		`DELETE FROM files WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id.String()); err != nil {
			return fmt.Errorf("delete file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InsertEntryBatch stores multiple log entries for a file in a single
// transaction.
func (s *DuckDBStore) InsertEntryBatch(fileID uuid.UUID, entries []classify.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO log_entries (file_id, line_number, level, timestamp, message, raw)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		var ts any
		if e.Timestamp != nil {
			ts = *e.Timestamp
		}
		_, err = stmt.Exec(fileID.String(), e.LineNumber, string(e.Level), ts, e.Message, e.Raw)
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QueryEntries returns log entries matching the given options, ordered by
// line number.
func (s *DuckDBStore) QueryEntries(opts QueryOpts) ([]LogEntry, error) {
	var conditions []string
	var args []any

	if opts.FileID != uuid.Nil {
		conditions = append(conditions, "file_id = ?")
		args = append(args, opts.FileID.String())
	}
	if opts.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, string(opts.Level))
	}
	if !opts.From.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, opts.From)
	}
	if !opts.To.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, opts.To)
	}

	query := "SELECT id, file_id, line_number, level, timestamp, message, raw FROM log_entries"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY line_number"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEntries(rows)
}

// LevelCounts returns the number of stored entries per level for a file.
func (s *DuckDBStore) LevelCounts(fileID uuid.UUID) (map[classify.Level]int, error) {
	rows, err := s.db.Query(
		`SELECT level, COUNT(*) FROM log_entries WHERE file_id = ? GROUP BY level`,
		fileID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("level counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[classify.Level]int)
	for rows.Next() {
		var level string
		var cnt int
		if err := rows.Scan(&level, &cnt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		counts[classify.Level(level)] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return counts, nil
}

// PutSummary stores the analysis summary for a file as JSON, replacing any
// previous one.
func (s *DuckDBStore) PutSummary(fileID uuid.UUID, summary stats.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO summaries (file_id, summary, created_at) VALUES (?, ?, ?)`,
		fileID.String(), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put summary: %w", err)
	}
	return nil
}

// GetSummary returns the stored summary for a file, if any.
func (s *DuckDBStore) GetSummary(fileID uuid.UUID) (stats.Summary, bool, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT summary FROM summaries WHERE file_id = ?`, fileID.String(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return stats.Summary{}, false, nil
	}
	if err != nil {
		return stats.Summary{}, false, fmt.Errorf("get summary: %w", err)
	}

	var summary stats.Summary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return stats.Summary{}, false, fmt.Errorf("unmarshal summary: %w", err)
	}
	return summary, true, nil
}

// Close closes the underlying database connection.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]LogEntry, error) {
	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var fileID, level string
		var ts sql.NullTime
		if err := rows.Scan(&e.ID, &fileID, &e.LineNumber, &level, &ts, &e.Message, &e.Raw); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		id, err := uuid.Parse(fileID)
		if err != nil {
			return nil, fmt.Errorf("parse file id: %w", err)
		}
		e.FileID = id
		e.Level = classify.Level(level)
		if ts.Valid {
			t := ts.Time
			e.Timestamp = &t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return entries, nil
}
