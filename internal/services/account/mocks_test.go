package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/account-service/internal/events"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

// RepoMock выполняет fn сразу, передавая ей QueriesMock.
type RepoMock struct {
	q         *QueriesMock
	commitErr error
}

func (r *RepoMock) WithinTx(ctx context.Context, fn func(ctx context.Context, q storage.AccountQueries) error) error {
	if err := fn(ctx, r.q); err != nil {
		return err
	}
	return r.commitErr
}

// Мок для storage.AccountQueries
type QueriesMock struct {
	mock.Mock
}

func accountOrNil(args mock.Arguments) (*models.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *QueriesMock) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error) {
	return accountOrNil(m.Called(ctx, username, email))
}

func (m *QueriesMock) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return accountOrNil(m.Called(ctx, username))
}

func (m *QueriesMock) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return accountOrNil(m.Called(ctx, email))
}

func (m *QueriesMock) CreateAccount(ctx context.Context, account models.Account) (int64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(int64), args.Error(1)
}

func (m *QueriesMock) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	return m.Called(ctx, accountID, passwordHash).Error(0)
}

func (m *QueriesMock) IncrementLogins(ctx context.Context, accountID int64) error {
	return m.Called(ctx, accountID).Error(0)
}

func (m *QueriesMock) IncrementPasswordChanges(ctx context.Context, accountID int64) error {
	return m.Called(ctx, accountID).Error(0)
}

func (m *QueriesMock) GetMetrics(ctx context.Context, accountID int64) (*models.AccountMetrics, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountMetrics), args.Error(1)
}

// Мок для счётчиков процесса
type CountersMock struct {
	mock.Mock
}

func (m *CountersMock) RegistrationObserved()                  { m.Called() }
func (m *CountersMock) LoginObserved(username string)          { m.Called(username) }
func (m *CountersMock) PasswordChangeObserved(username string) { m.Called(username) }

// Мок для публикации событий
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, ev events.Event) error {
	return m.Called(ctx, ev).Error(0)
}

// Мок для кеша отчётов
type ReportCacheMock struct {
	mock.Mock
}

func (m *ReportCacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
