package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/account-service/internal/migrations"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err, "failed to create storage")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}

// createAccount создаёт тестовый аккаунт в отдельной транзакции.
func createAccount(t *testing.T, s *Storage, username, email string) int64 {
	t.Helper()
	var id int64
	err := s.WithinTx(context.Background(), func(ctx context.Context, q AccountQueries) error {
		var err error
		id, err = q.CreateAccount(ctx, accountFixture(username, email))
		return err
	})
	require.NoError(t, err)
	return id
}

// setCounters выставляет значения счётчиков напрямую.
func setCounters(t *testing.T, s *Storage, accountID, logins, passwordChanges int64) {
	t.Helper()
	_, err := s.DB.Exec(`UPDATE user_metrics SET logins = $1, password_changes = $2 WHERE user_id = $3`,
		logins, passwordChanges, accountID)
	require.NoError(t, err)
}
