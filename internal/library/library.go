package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// DBFileName is the library database file name inside the library
// directory.
const DBFileName = "library.db"

// Library provides SQLite-based storage for score history and anchor
// snapshots. It manages the connection and provides methods for CRUD
// operations.
//
// Design decision: We use one database for all scores rather than a
// sidecar file per score directory. The library answers cross-score
// questions (recently opened, snapshots by label) that a per-score file
// cannot, and scores on read-only media still get history.
type Library struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Library behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default library options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the library database in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dir string, opts Options) (*Library, error) {
	dbPath := filepath.Join(dir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("library not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check library path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	lib := &Library{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := lib.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return lib, nil
}

// Close closes the database connection.
func (l *Library) Close() error {
	return l.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (l *Library) createTables() error {
	schema := `
	-- Scores are keyed by content fingerprint so a moved directory keeps
	-- its history
	CREATE TABLE IF NOT EXISTS scores (
		fingerprint TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		base_name TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		last_opened DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_position REAL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_scores_base_name ON scores(base_name);
	CREATE INDEX IF NOT EXISTS idx_scores_last_opened ON scores(last_opened);

	-- Anchor snapshots store a labeled copy of a score's anchor set
	CREATE TABLE IF NOT EXISTS anchor_sets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL,
		label TEXT NOT NULL,
		anchors TEXT NOT NULL,
		created DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(fingerprint, label),
		FOREIGN KEY(fingerprint) REFERENCES scores(fingerprint)
	);

	CREATE INDEX IF NOT EXISTS idx_anchor_sets_fingerprint ON anchor_sets(fingerprint);
	`

	_, err := l.db.ExecContext(context.Background(), schema)
	return err
}

// Score represents a stored score record.
type Score struct {
	Fingerprint  string
	Path         string
	BaseName     string
	PageCount    int
	LastOpened   time.Time
	LastPosition coords.Coordinate
}

// RecordSession inserts or refreshes a score record when a viewing session
// starts. Uses UPSERT keyed on the fingerprint so a renamed or moved score
// updates its path in place.
func (l *Library) RecordSession(ctx context.Context, score *Score) error {
	query := `
	INSERT INTO scores (fingerprint, path, base_name, page_count)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(fingerprint) DO UPDATE SET
		path = excluded.path,
		base_name = excluded.base_name,
		page_count = excluded.page_count,
		last_opened = CURRENT_TIMESTAMP
	`

	_, err := l.db.ExecContext(ctx, query,
		score.Fingerprint,
		score.Path,
		score.BaseName,
		score.PageCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	return nil
}

// SaveLastPosition stores the reading position for a score. The position
// is a document coordinate, so it survives zoom changes between sessions.
func (l *Library) SaveLastPosition(ctx context.Context, fingerprint string, pos coords.Coordinate) error {
	query := `UPDATE scores SET last_position = ? WHERE fingerprint = ?`

	result, err := l.db.ExecContext(ctx, query, float64(pos), fingerprint)
	if err != nil {
		return fmt.Errorf("failed to save last position: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save last position: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unknown score fingerprint %q", fingerprint)
	}
	return nil
}

// GetScore retrieves a score record by fingerprint.
// Returns nil without error when the score is unknown.
func (l *Library) GetScore(ctx context.Context, fingerprint string) (*Score, error) {
	query := `
	SELECT fingerprint, path, base_name, page_count, last_opened, last_position
	FROM scores
	WHERE fingerprint = ?
	`

	var score Score
	var lastOpened string
	var lastPosition float64

	err := l.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&score.Fingerprint,
		&score.Path,
		&score.BaseName,
		&score.PageCount,
		&lastOpened,
		&lastPosition,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	score.LastOpened = parseTimestamp(lastOpened)
	score.LastPosition = coords.Coordinate(lastPosition)

	return &score, nil
}

// RecentScores returns the most recently opened scores, newest first.
func (l *Library) RecentScores(ctx context.Context, limit int) ([]*Score, error) {
	query := `
	SELECT fingerprint, path, base_name, page_count, last_opened, last_position
	FROM scores
	ORDER BY last_opened DESC
	LIMIT ?
	`

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent scores: %w", err)
	}
	defer rows.Close()

	var results []*Score
	for rows.Next() {
		var score Score
		var lastOpened string
		var lastPosition float64
		if err := rows.Scan(
			&score.Fingerprint,
			&score.Path,
			&score.BaseName,
			&score.PageCount,
			&lastOpened,
			&lastPosition,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		score.LastOpened = parseTimestamp(lastOpened)
		score.LastPosition = coords.Coordinate(lastPosition)
		results = append(results, &score)
	}

	return results, rows.Err()
}

// AnchorSet represents a labeled snapshot of a score's anchors.
type AnchorSet struct {
	ID          int64
	Fingerprint string
	Label       string
	Anchors     []coords.Coordinate
	Created     time.Time
}

// SnapshotAnchors stores a labeled copy of the given anchors for a score.
// Labels are normalized to NFC so "sectional" typed on different platforms
// lands on the same snapshot. Saving under an existing label replaces the
// snapshot.
func (l *Library) SnapshotAnchors(ctx context.Context, fingerprint, label string, anchors []coords.Coordinate) error {
	anchorsJSON, err := json.Marshal(anchors)
	if err != nil {
		return fmt.Errorf("failed to serialize anchors: %w", err)
	}

	query := `
	INSERT INTO anchor_sets (fingerprint, label, anchors)
	VALUES (?, ?, ?)
	ON CONFLICT(fingerprint, label) DO UPDATE SET
		anchors = excluded.anchors,
		created = CURRENT_TIMESTAMP
	`

	_, err = l.db.ExecContext(ctx, query,
		fingerprint,
		norm.NFC.String(label),
		string(anchorsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to snapshot anchors: %w", err)
	}

	return nil
}

// GetAnchorSet retrieves a labeled anchor snapshot for a score.
// Returns nil without error when no snapshot has that label.
func (l *Library) GetAnchorSet(ctx context.Context, fingerprint, label string) (*AnchorSet, error) {
	query := `
	SELECT id, fingerprint, label, anchors, created
	FROM anchor_sets
	WHERE fingerprint = ? AND label = ?
	`

	var set AnchorSet
	var anchorsJSON string
	var created string

	err := l.db.QueryRowContext(ctx, query, fingerprint, norm.NFC.String(label)).Scan(
		&set.ID,
		&set.Fingerprint,
		&set.Label,
		&anchorsJSON,
		&created,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get anchor set: %w", err)
	}

	if err := json.Unmarshal([]byte(anchorsJSON), &set.Anchors); err != nil {
		return nil, fmt.Errorf("failed to parse anchors: %w", err)
	}
	set.Created = parseTimestamp(created)

	return &set, nil
}

// ListAnchorSets returns all snapshot labels for a score, newest first.
func (l *Library) ListAnchorSets(ctx context.Context, fingerprint string) ([]*AnchorSet, error) {
	query := `
	SELECT id, fingerprint, label, anchors, created
	FROM anchor_sets
	WHERE fingerprint = ?
	ORDER BY created DESC
	`

	rows, err := l.db.QueryContext(ctx, query, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to list anchor sets: %w", err)
	}
	defer rows.Close()

	var results []*AnchorSet
	for rows.Next() {
		var set AnchorSet
		var anchorsJSON string
		var created string
		if err := rows.Scan(&set.ID, &set.Fingerprint, &set.Label, &anchorsJSON, &created); err != nil {
			return nil, fmt.Errorf("failed to scan anchor set: %w", err)
		}
		if err := json.Unmarshal([]byte(anchorsJSON), &set.Anchors); err != nil {
			return nil, fmt.Errorf("failed to parse anchors: %w", err)
		}
		set.Created = parseTimestamp(created)
		results = append(results, &set)
	}

	return results, rows.Err()
}

// DeleteAnchorSet removes a labeled snapshot. Deleting a label that does
// not exist is not an error.
func (l *Library) DeleteAnchorSet(ctx context.Context, fingerprint, label string) error {
	query := `DELETE FROM anchor_sets WHERE fingerprint = ? AND label = ?`

	if _, err := l.db.ExecContext(ctx, query, fingerprint, norm.NFC.String(label)); err != nil {
		return fmt.Errorf("failed to delete anchor set: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
