package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/svgmin/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "svgmin.db"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB provides SQLite-based storage for run reports.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (no run has been recorded yet)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per batch run; report_json holds the complete model.RunReport
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		input_dir TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		optimizer TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per file of a run, for per-file history queries
	CREATE TABLE IF NOT EXISTS file_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		original_size INTEGER NOT NULL,
		minified_size INTEGER NOT NULL,
		optimizer TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_file_results_name ON file_results(name);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores report and its file results in one transaction.
// The assigned ID is returned and also set on report.ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (id int64, err error) {
	summaryJSON, err := json.Marshal(model.NewSummary(report))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, input_dir, output_dir, optimizer, dry_run, summary, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.InputDir,
		report.OutputDir,
		report.Optimizer,
		report.DryRun,
		string(summaryJSON),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO file_results (run_id, name, status, original_size, minified_size, optimizer, error)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range report.Files {
		if _, err = stmt.ExecContext(ctx, id, f.Name, string(f.Status), f.OriginalSize, f.MinifiedSize, f.Optimizer, f.Error); err != nil {
			return 0, fmt.Errorf("failed to save file result %s: %w", f.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	report.ID = id
	return id, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing runs without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64 `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// InputDir and OutputDir are the run's directories.
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`

	// Optimizer is the run's default strategy.
	Optimizer string `json:"optimizer"`

	// DryRun is true when no files were written.
	DryRun bool `json:"dry_run"`

	// Summary holds the aggregate counters.
	Summary model.Summary `json:"summary"`
}

// ListRuns returns the metadata of the most recent runs, newest first.
// A non-positive limit returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, started_at, input_dir, output_dir, optimizer, dry_run, summary
	FROM runs
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt, summaryJSON string

		if err := rows.Scan(&meta.ID, &startedAt, &meta.InputDir, &meta.OutputDir, &meta.Optimizer, &meta.DryRun, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
			meta.Summary = model.Summary{}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a stored run by its ID.
// Returns ErrRunNotFound if no run has that ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return decodeReport(id, reportJSON)
}

// LatestRuns returns up to n stored runs, newest first.
func (hdb *HistoryDB) LatestRuns(ctx context.Context, n int) ([]*model.RunReport, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, report_json FROM runs
	ORDER BY id DESC
	LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.RunReport
	for rows.Next() {
		var id int64
		var reportJSON string
		if err := rows.Scan(&id, &reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		report, err := decodeReport(id, reportJSON)
		if err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// FileRecord is the result of one file in one stored run.
type FileRecord struct {
	// RunID is the run the record belongs to.
	RunID int64 `json:"run_id"`

	// StartedAt is when that run began.
	StartedAt time.Time `json:"started_at"`

	// Result is the stored file result.
	Result model.FileResult `json:"result"`
}

// FileHistory returns the results of the file name across runs, newest
// first. A non-positive limit returns all records.
func (hdb *HistoryDB) FileHistory(ctx context.Context, name string, limit int) ([]FileRecord, error) {
	query := `
	SELECT f.run_id, r.started_at, f.name, f.status, f.original_size, f.minified_size, f.optimizer, f.error
	FROM file_results f
	JOIN runs r ON r.id = f.run_id
	WHERE f.name = ?
	ORDER BY f.run_id DESC
	`
	args := []any{name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get file history: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		var startedAt, status string
		var optimizer, errMsg sql.NullString

		if err := rows.Scan(
			&rec.RunID,
			&startedAt,
			&rec.Result.Name,
			&status,
			&rec.Result.OriginalSize,
			&rec.Result.MinifiedSize,
			&optimizer,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan file result: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.Result.Status = model.FileStatus(status)
		rec.Result.Optimizer = optimizer.String
		rec.Result.Error = errMsg.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

func decodeReport(id int64, reportJSON string) (*model.RunReport, error) {
	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %d: %w", id, err)
	}
	report.ID = id
	return &report, nil
}

// formatTimestamp stores times in UTC with nanoseconds so that ordering
// by the text column matches ordering by time.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
