package logstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig holds parameters for the embedded SQLite log store.
type SQLiteConfig struct {
	// Path of the database file, created when missing.
	Path string `env:"LOGSTORE_SQLITE_PATH"`

	// WAL lets the async writer and retention sweeps proceed alongside
	// readers, but SQLite still serializes writers, so the pool stays
	// small and contenders wait out the busy timeout.
	MaxOpenConns int           `env:"LOGSTORE_SQLITE_MAX_OPEN_CONNS" envDefault:"2"`
	BusyTimeout  time.Duration `env:"LOGSTORE_SQLITE_BUSY_TIMEOUT" envDefault:"3s"`
}

// SQLite is a Store backed by a single database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an existing handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// ConnectSQLite opens the database file with WAL journaling and a busy
// timeout, then verifies it is usable.
func ConnectSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, ErrDSNRequired
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 3 * time.Second
	}
	dsn := fmt.Sprintf("%s?_foreign_keys=1&mode=rwc&_journal_mode=WAL&_busy_timeout=%d",
		cfg.Path, busy.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToOpen, err)
	}

	return NewSQLite(db), nil
}

// DB exposes the underlying handle for hosts that want to run
// migrations or inspect the file with their own queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

const sqliteInsert = `
INSERT INTO logs (id, request_id, client_address, timestamp, session, method, protocol, path, status_code, message, extra)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Insert writes one entry. Timestamps are stored as UTC unix
// nanoseconds so retention cutoffs compare as plain integers.
func (s *SQLite) Insert(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	sessionRaw, err := e.sessionJSON()
	if err != nil {
		return err
	}
	var session any
	if sessionRaw != nil {
		session = string(sessionRaw)
	}

	_, err = s.db.ExecContext(ctx, sqliteInsert,
		e.ID,
		e.RequestID,
		e.ClientAddress,
		e.Timestamp.UTC().UnixNano(),
		session,
		e.Method,
		e.Protocol,
		e.Path,
		e.StatusCode,
		e.Message,
		string(e.Extra),
	)
	return err
}

func (s *SQLite) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE timestamp < ?`, cutoff.UTC().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLite) Healthcheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
