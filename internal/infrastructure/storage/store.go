package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/ports"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store persists the content workflow in Postgres or SQLite.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var (
	_ ports.ClientRepository       = (*Store)(nil)
	_ ports.AuditRepository        = (*Store)(nil)
	_ ports.CalendarRepository     = (*Store)(nil)
	_ ports.ScriptRepository       = (*Store)(nil)
	_ ports.ScheduleRepository     = (*Store)(nil)
	_ ports.NotificationRepository = (*Store)(nil)
)

// Open connects to the database and creates missing tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store := New(db, driver)
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing sql.DB.
func New(db *sql.DB, driver string) *Store {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(placeholder)}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		linkedin_url TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		goals TEXT NOT NULL DEFAULT '',
		tone_preferences TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		target_audience TEXT NOT NULL DEFAULT '',
		company_name TEXT NOT NULL DEFAULT '',
		approval_email TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audits (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL UNIQUE,
		positioning_statement TEXT NOT NULL DEFAULT '',
		content_pillars TEXT NOT NULL DEFAULT '[]',
		tone_voice TEXT NOT NULL DEFAULT '',
		strengths_weaknesses TEXT NOT NULL DEFAULT '',
		audience_insights TEXT NOT NULL DEFAULT '',
		primary_goals TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS calendar_items (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		title TEXT NOT NULL,
		brief TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL,
		pillar TEXT NOT NULL DEFAULT '',
		audience_target TEXT NOT NULL DEFAULT '',
		psychological_trigger TEXT NOT NULL DEFAULT '',
		why_it_works TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		stage TEXT NOT NULL,
		feedback_status TEXT NOT NULL,
		feedback_notes TEXT,
		scheduled_date TEXT NOT NULL DEFAULT '',
		scheduled_time TEXT NOT NULL DEFAULT '09:00',
		media_key TEXT NOT NULL DEFAULT '',
		media_type TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS calendar_items_client_idx ON calendar_items (client_id, scheduled_date)`,
	`CREATE TABLE IF NOT EXISTS calendar_versions (
		id TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL,
		title TEXT NOT NULL,
		brief TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL,
		pillar TEXT NOT NULL DEFAULT '',
		audience_target TEXT NOT NULL DEFAULT '',
		psychological_trigger TEXT NOT NULL DEFAULT '',
		why_it_works TEXT NOT NULL DEFAULT '',
		feedback_used TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scripts (
		id TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL UNIQUE,
		content_text TEXT NOT NULL DEFAULT '',
		hook_variations TEXT NOT NULL DEFAULT '[]',
		cta TEXT NOT NULL DEFAULT '',
		hashtags TEXT NOT NULL DEFAULT '[]',
		draft_data TEXT NOT NULL DEFAULT '{}',
		version INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS script_versions (
		id TEXT PRIMARY KEY,
		script_id TEXT NOT NULL,
		content_text TEXT NOT NULL DEFAULT '',
		hook_variations TEXT NOT NULL DEFAULT '[]',
		cta TEXT NOT NULL DEFAULT '',
		hashtags TEXT NOT NULL DEFAULT '[]',
		draft_data TEXT NOT NULL DEFAULT '{}',
		version INTEGER NOT NULL,
		feedback_used TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		script_id TEXT NOT NULL,
		scheduled_time BIGINT NOT NULL,
		method TEXT NOT NULL,
		is_posted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL DEFAULT '',
		client_id TEXT NOT NULL DEFAULT '',
		calendar_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) exec(ctx context.Context, db execer, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.ExecContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, b sq.SelectBuilder) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

func (s *Store) query(ctx context.Context, b sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryContext(ctx, query, args...)
}

// requireRow turns an update that touched nothing into a NotFoundError.
func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(raw), nil
}

func decodeJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}
	return out, nil
}
