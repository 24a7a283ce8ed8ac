// Package sqlstore implements store.Store over database/sql. SQLite
// (modernc.org/sqlite) is the default backend; postgres and mysql are
// selected by driver name.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/viant/projectlens/db/sqliteutil"
	"github.com/viant/projectlens/store"
	"github.com/viant/sqlite-vec/vector"
	_ "modernc.org/sqlite"
)

const busyTimeoutMS = 5000

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a SQL backed store.Store.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to dsn with driver ("sqlite", "postgres" or "mysql") and
// creates missing tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d := resolveDialect(driver)
	if d == dialectSQLite {
		dsn = sqliteutil.EnsurePragmas(dsn, true, busyTimeoutMS)
	}
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", d, err)
	}
	if d == dialectSQLite && sqliteutil.IsMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	s := New(db, driver)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool without touching the schema.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, dialect: resolveDialect(driver), now: time.Now}
}

// Close closes the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if isDuplicateIndexErr(err) {
				continue
			}
			return fmt.Errorf("sqlstore: ensure schema: %w", err)
		}
	}
	return nil
}

func isDuplicateIndexErr(err error) bool {
	msg := strings.ToLower(err.Error())
	// MySQL: Error 1061: Duplicate key name
	return strings.Contains(msg, "error 1061") || strings.Contains(msg, "duplicate key name")
}

func (s *Store) exec(ctx context.Context, q queryer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.dialect.bind(query), args...)
}

func (s *Store) query(ctx context.Context, q queryer, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.dialect.bind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, q queryer, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.dialect.bind(query), args...)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, store.ErrNotFound)
}

// affected maps a zero row count to store.ErrNotFound. MySQL reports changed
// rather than matched rows, so a zero count is confirmed with a lookup.
func (s *Store) affected(ctx context.Context, q queryer, res sql.Result, table, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	ok, err := s.exists(ctx, q, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(kind, id)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, q queryer, table, id string) (bool, error) {
	var count int
	if err := s.queryRow(ctx, q, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

func (s *Store) stamp() time.Time { return s.now().Truncate(time.Millisecond) }

func anyArgs(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func encodeVector(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	return vector.EncodeEmbedding(vec)
}

func decodeVector(blob []byte) []float32 {
	if len(blob) == 0 {
		return nil
	}
	vec, err := vector.DecodeEmbedding(blob)
	if err != nil {
		return nil
	}
	return vec
}

func formatHash(h uint64) string {
	if h == 0 {
		return ""
	}
	return strconv.FormatUint(h, 16)
}

func parseHash(s string) uint64 {
	h, _ := strconv.ParseUint(s, 16, 64)
	return h
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
