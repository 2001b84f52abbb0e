package services_test

import (
	"context"
	"sync"

	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

// memoryStore хранилище в памяти. Транзакции сериализуются мьютексом
// и откатываются восстановлением снимка.
type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]models.Account
	metrics  map[int64]models.AccountMetrics
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: make(map[int64]models.Account),
		metrics:  make(map[int64]models.AccountMetrics),
	}
}

func (s *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, q storage.AccountQueries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make(map[int64]models.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	metrics := make(map[int64]models.AccountMetrics, len(s.metrics))
	for k, v := range s.metrics {
		metrics[k] = v
	}
	nextID := s.nextID

	if err := fn(ctx, (*memoryQueries)(s)); err != nil {
		s.accounts, s.metrics, s.nextID = accounts, metrics, nextID
		return err
	}
	return nil
}

func (s *memoryStore) metricsFor(username string) models.AccountMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.accounts {
		if a.Username == username {
			return s.metrics[id]
		}
	}
	return models.AccountMetrics{}
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

type memoryQueries memoryStore

func (q *memoryQueries) find(match func(models.Account) bool) (*models.Account, error) {
	for _, a := range q.accounts {
		if match(a) {
			a := a
			return &a, nil
		}
	}
	return nil, storage.ErrAccountNotFound
}

func (q *memoryQueries) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.Account, error) {
	if a, err := q.find(func(a models.Account) bool { return a.Username == username }); err == nil {
		return a, nil
	}
	return q.find(func(a models.Account) bool { return a.Email == email })
}

func (q *memoryQueries) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	return q.find(func(a models.Account) bool { return a.Username == username })
}

func (q *memoryQueries) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	return q.find(func(a models.Account) bool { return a.Email == email })
}

func (q *memoryQueries) CreateAccount(_ context.Context, account models.Account) (int64, error) {
	for _, a := range q.accounts {
		if a.Username == account.Username {
			return 0, storage.ErrUsernameExists
		}
		if a.Email == account.Email {
			return 0, storage.ErrEmailExists
		}
	}
	q.nextID++
	account.ID = q.nextID
	q.accounts[account.ID] = account
	q.metrics[account.ID] = models.AccountMetrics{ID: account.ID, AccountID: account.ID}
	return account.ID, nil
}

func (q *memoryQueries) UpdatePassword(_ context.Context, accountID int64, passwordHash string) error {
	a, ok := q.accounts[accountID]
	if !ok {
		return storage.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	q.accounts[accountID] = a
	return nil
}

func (q *memoryQueries) IncrementLogins(_ context.Context, accountID int64) error {
	m := q.metrics[accountID]
	m.AccountID = accountID
	m.Logins++
	q.metrics[accountID] = m
	return nil
}

func (q *memoryQueries) IncrementPasswordChanges(_ context.Context, accountID int64) error {
	m := q.metrics[accountID]
	m.AccountID = accountID
	m.PasswordChanges++
	q.metrics[accountID] = m
	return nil
}

func (q *memoryQueries) GetMetrics(_ context.Context, accountID int64) (*models.AccountMetrics, error) {
	m, ok := q.metrics[accountID]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}
	return &m, nil
}
