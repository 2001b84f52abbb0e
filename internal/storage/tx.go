package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX общее подмножество *sql.DB и *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx открывает транзакцию, выполняет fn и фиксирует её при успехе.
// При ошибке или панике транзакция откатывается, паника пробрасывается дальше.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	const op = "storage.WithTx"

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("%s: %w", op, cerr)
		}
	}()

	return fn(ctx, tx)
}
