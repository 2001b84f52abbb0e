package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/account-service/internal/models"
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// AccountQueries операции над аккаунтом и его счётчиками,
// доступные внутри одной транзакции.
type AccountQueries interface {
	// FindByUsernameOrEmail возвращает аккаунт, совпадающий по username или email.
	// При совпадении по обоим полям с разными строками приоритет у username.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error)
	// FindByUsername возвращает аккаунт по точному совпадению username.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	// FindByEmail возвращает аккаунт по точному совпадению email.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// CreateAccount создаёт аккаунт вместе с его строкой счётчиков.
	CreateAccount(ctx context.Context, account models.Account) (int64, error)
	// UpdatePassword перезаписывает хеш пароля.
	UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error
	// IncrementLogins увеличивает счётчик входов на 1.
	IncrementLogins(ctx context.Context, accountID int64) error
	// IncrementPasswordChanges увеличивает счётчик смен пароля на 1.
	IncrementPasswordChanges(ctx context.Context, accountID int64) error
	// GetMetrics возвращает счётчики аккаунта.
	GetMetrics(ctx context.Context, accountID int64) (*models.AccountMetrics, error)
}

// Queries реализует AccountQueries поверх *sql.DB или *sql.Tx.
type Queries struct {
	db DBTX
}

// NewQueries оборачивает соединение или транзакцию.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const selectAccount = `SELECT id, username, email, password, reset_token FROM users`

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var resetToken sql.NullString
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &resetToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if resetToken.Valid {
		a.ResetToken = &resetToken.String
	}
	return &a, nil
}

// FindByUsernameOrEmail см. AccountQueries.
func (q *Queries) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error) {
	const op = "storage.FindByUsernameOrEmail"

	query := selectAccount + `
			  WHERE username = $1 OR email = $2
			  ORDER BY (username = $1) DESC, id
			  LIMIT 1`
	a, err := scanAccount(q.db.QueryRowContext(ctx, query, username, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// FindByUsername см. AccountQueries.
func (q *Queries) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	const op = "storage.FindByUsername"

	a, err := scanAccount(q.db.QueryRowContext(ctx, selectAccount+` WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// FindByEmail см. AccountQueries.
func (q *Queries) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.FindByEmail"

	a, err := scanAccount(q.db.QueryRowContext(ctx, selectAccount+` WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// CreateAccount см. AccountQueries. Нарушение уникальности возвращается
// как ErrUsernameExists или ErrEmailExists.
func (q *Queries) CreateAccount(ctx context.Context, account models.Account) (int64, error) {
	const op = "storage.CreateAccount"

	var id int64
	query := `INSERT INTO users (username, email, password, reset_token)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := q.db.QueryRowContext(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.ResetToken).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, uniqueViolation(err))
	}

	if _, err := q.db.ExecContext(ctx, `INSERT INTO user_metrics (user_id) VALUES ($1)`, id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdatePassword см. AccountQueries.
func (q *Queries) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	const op = "storage.UpdatePassword"

	res, err := q.db.ExecContext(ctx, `UPDATE users SET password = $1 WHERE id = $2`, passwordHash, accountID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// IncrementLogins см. AccountQueries. Если строки счётчиков нет,
// она создаётся сразу со значением 1.
func (q *Queries) IncrementLogins(ctx context.Context, accountID int64) error {
	const op = "storage.IncrementLogins"

	query := `INSERT INTO user_metrics (user_id, logins) VALUES ($1, 1)
			  ON CONFLICT (user_id) DO UPDATE SET logins = user_metrics.logins + 1`
	if _, err := q.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IncrementPasswordChanges см. AccountQueries.
func (q *Queries) IncrementPasswordChanges(ctx context.Context, accountID int64) error {
	const op = "storage.IncrementPasswordChanges"

	query := `INSERT INTO user_metrics (user_id, password_changes) VALUES ($1, 1)
			  ON CONFLICT (user_id) DO UPDATE SET password_changes = user_metrics.password_changes + 1`
	if _, err := q.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetMetrics см. AccountQueries.
func (q *Queries) GetMetrics(ctx context.Context, accountID int64) (*models.AccountMetrics, error) {
	const op = "storage.GetMetrics"

	var m models.AccountMetrics
	query := `SELECT id, user_id, logins, password_changes FROM user_metrics WHERE user_id = $1`
	err := q.db.QueryRowContext(ctx, query, accountID).Scan(&m.ID, &m.AccountID, &m.Logins, &m.PasswordChanges)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return ErrUsernameExists
	case emailConstraint:
		return ErrEmailExists
	default:
		return err
	}
}
