package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// CountAccounts возвращает общее число зарегистрированных аккаунтов.
func (s *Storage) CountAccounts(ctx context.Context) (int64, error) {
	const op = "storage.CountAccounts"

	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ListActivity возвращает активность пользователей, у которых был хотя бы один вход.
// Аккаунты без входов в отчёт не попадают.
func (s *Storage) ListActivity(ctx context.Context) ([]models.UserActivity, error) {
	const op = "storage.ListActivity"

	query := `SELECT u.username, m.logins, COALESCE(m.password_changes, 0)
			  FROM users u
			  JOIN user_metrics m ON m.user_id = u.id
			  WHERE m.logins > 0
			  ORDER BY u.username`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.UserActivity, 0)
	for rows.Next() {
		var a models.UserActivity
		if err = rows.Scan(&a.Username, &a.Logins, &a.PasswordChanges); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
