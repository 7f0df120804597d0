package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"shiftmatch/internal/config"
	"shiftmatch/internal/database"
	pgpool "shiftmatch/internal/database/postgres"

	"github.com/cockroachdb/errors"
)

// SQLDB adapts a database/sql handle to database.DB. The server runs on the
// pgx pool; this is for one-shot tools like migrate and for sqlmock.
type SQLDB struct {
	db *sql.DB
}

func Connect(cfg config.DatabaseConfig) (*SQLDB, error) {
	db, err := sql.Open("pgx", pgpool.DSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping")
	}

	return &SQLDB{db: db}, nil
}

func Wrap(db *sql.DB) *SQLDB {
	return &SQLDB{db: db}
}

func (p *SQLDB) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return database.ErrNilDB
	}
	return p.db.PingContext(ctx)
}

func (p *SQLDB) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *SQLDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if p == nil || p.db == nil {
		return 0, database.ErrNilDB
	}
	return execResult(p.db.ExecContext(ctx, query, args...))
}

func (p *SQLDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if p == nil || p.db == nil {
		return nil, database.ErrNilDB
	}
	r, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: r}, nil
}

func (p *SQLDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if p == nil || p.db == nil {
		return errRow{err: database.ErrNilDB}
	}
	return p.db.QueryRowContext(ctx, query, args...)
}

func (p *SQLDB) Begin(ctx context.Context) (database.Tx, error) {
	if p == nil || p.db == nil {
		return nil, database.ErrNilDB
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (p *SQLDB) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.db
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execResult(t.tx.ExecContext(ctx, query, args...))
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: r}, nil
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t sqlTx) Commit(context.Context) error {
	return t.tx.Commit()
}

// Rollback after Commit is a no-op, matching pgx.
func (t sqlTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

type sqlRows struct {
	rows *sql.Rows
}

func (r sqlRows) Close() {
	_ = r.rows.Close()
}

func (r sqlRows) Next() bool {
	return r.rows.Next()
}

func (r sqlRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r sqlRows) Err() error {
	return r.rows.Err()
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

func execResult(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
