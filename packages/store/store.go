// Package store persists documented examples in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
)

// ErrNotFound is returned when an example does not exist.
var ErrNotFound = errors.New("example not found")

const schema = `
CREATE TABLE IF NOT EXISTS examples (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	document    INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	example_id               TEXT NOT NULL,
	seq                      INTEGER NOT NULL,
	method                   TEXT NOT NULL,
	route                    TEXT NOT NULL,
	request_body             TEXT NOT NULL,
	request_headers          TEXT NOT NULL,
	request_query_parameters TEXT NOT NULL,
	response_status          INTEGER NOT NULL,
	response_status_text     TEXT NOT NULL,
	response_body            TEXT NOT NULL,
	response_headers         TEXT NOT NULL,
	curl                     TEXT NOT NULL,
	PRIMARY KEY (example_id, seq)
);
`

// Summary describes a stored example without its records.
type Summary struct {
	ID          string
	Description string
	Records     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is a SQLite-backed example store.
type Store struct {
	db      *sql.DB
	path    string
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// Option is a functional option for Store.
type Option func(*Store)

// WithTimeout bounds every store operation.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens (creating if needed) the database at dsn. Accepted forms are
// sqlite://path, sqlite:path and a bare file path.
func Open(dsn string, opts ...Option) (*Store, error) {
	path, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:      db,
		path:    path,
		timeout: 30 * time.Second,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveExample inserts or replaces an example and all of its records. Every
// record is validated before anything is written.
func (s *Store) SaveExample(ctx context.Context, meta *recorder.Metadata) error {
	if meta == nil {
		return fmt.Errorf("example is nil")
	}
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("refusing to save example %s: %w", meta.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO examples (id, description, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			document    = excluded.document,
			updated_at  = excluded.updated_at`,
		meta.ID, meta.Description, meta.Document, now, now)
	if err != nil {
		return fmt.Errorf("failed to save example: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE example_id = ?`, meta.ID); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			example_id, seq, method, route, request_body, request_headers,
			request_query_parameters, response_status, response_status_text,
			response_body, response_headers, curl
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range meta.Requests {
		_, err := stmt.ExecContext(ctx,
			meta.ID, i, rec.Method, rec.Route, rec.RequestBody, rec.RequestHeaders,
			rec.RequestQueryParameters, rec.ResponseStatus, rec.ResponseStatusText,
			rec.ResponseBody, rec.ResponseHeaders, rec.Curl)
		if err != nil {
			return fmt.Errorf("failed to save record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit example: %w", err)
	}

	s.logger.Debug("saved example",
		zap.String("example", meta.ID),
		zap.Int("records", len(meta.Requests)),
	)
	return nil
}

// LoadExample returns the example with its records in capture order.
func (s *Store) LoadExample(ctx context.Context, id string) (*recorder.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meta := &recorder.Metadata{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT description, document FROM examples WHERE id = ?`, id,
	).Scan(&meta.Description, &meta.Document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load example: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT method, route, request_body, request_headers,
			request_query_parameters, response_status, response_status_text,
			response_body, response_headers, curl
		FROM records WHERE example_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec recorder.RequestRecord
		if err := rows.Scan(
			&rec.Method, &rec.Route, &rec.RequestBody, &rec.RequestHeaders,
			&rec.RequestQueryParameters, &rec.ResponseStatus, &rec.ResponseStatusText,
			&rec.ResponseBody, &rec.ResponseHeaders, &rec.Curl,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		meta.Requests = append(meta.Requests, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return meta, nil
}

// ListExamples returns every stored example, oldest first.
func (s *Store) ListExamples(ctx context.Context) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.description, e.created_at, e.updated_at, COUNT(r.seq)
		FROM examples e
		LEFT JOIN records r ON r.example_id = e.id
		GROUP BY e.id
		ORDER BY e.created_at, e.id`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var created, updated string
		if err := rows.Scan(&sum.ID, &sum.Description, &created, &updated, &sum.Records); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("invalid created_at for %s: %w", sum.ID, err)
		}
		if sum.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("invalid updated_at for %s: %w", sum.ID, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return summaries, nil
}

// DeleteExample removes an example and its records.
func (s *Store) DeleteExample(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE example_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM examples WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete example: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return tx.Commit()
}

// parseDSN accepts sqlite://path, sqlite:path or a plain path.
func parseDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)

	switch {
	case dsn == "":
		return "", fmt.Errorf("database path is empty")
	case strings.HasPrefix(dsn, "sqlite://"):
		return strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.Contains(dsn, "://"):
		scheme, _, _ := strings.Cut(dsn, "://")
		return "", fmt.Errorf("unsupported database scheme: %s", scheme)
	default:
		return dsn, nil
	}
}
