// Package storage реализует хранилище аккаунтов и их счётчиков на PostgreSQL.
//
// Изменяющие операции выполняются внутри транзакции через WithinTx,
// отчёты строятся запросами напрямую к пулу соединений.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, которые сервисы различают через errors.Is.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
)

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает пул соединений и проверяет доступность базы.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// WithinTx выполняет fn в транзакции с уровнем изоляции read committed.
// Транзакция фиксируется, если fn вернула nil, иначе откатывается.
func (s *Storage) WithinTx(ctx context.Context, fn func(ctx context.Context, q AccountQueries) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return WithTx(ctx, s.DB, opts, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewQueries(tx))
	})
}
