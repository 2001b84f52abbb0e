// Package services содержит отчёты по аккаунтам: число регистраций,
// активность пользователей и выгрузку счётчиков процесса.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// StatsRepository определяет методы чтения отчётов из хранилища.
type StatsRepository interface {
	// CountAccounts возвращает число зарегистрированных аккаунтов.
	CountAccounts(ctx context.Context) (int64, error)
	// ListActivity возвращает активность пользователей с хотя бы одним входом.
	ListActivity(ctx context.Context) ([]models.UserActivity, error)
}

// Cache описывает методы для кэширования отчётов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Exporter пишет счётчики процесса в текстовом формате.
type Exporter interface {
	WriteText(w io.Writer) error
}

// Aggregator собирает отчёты. Кеш необязателен: при nil отчёты всегда читаются из хранилища.
type Aggregator struct {
	repo     StatsRepository
	cache    Cache
	cacheTTL time.Duration
	exporter Exporter
	log      *slog.Logger
}

// NewAggregator создает новый экземпляр Aggregator.
func NewAggregator(repo StatsRepository, cache Cache, cacheTTL time.Duration, exporter Exporter, log *slog.Logger) *Aggregator {
	return &Aggregator{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		exporter: exporter,
		log:      log,
	}
}

// TotalRegistrations возвращает общее число аккаунтов.
func (a *Aggregator) TotalRegistrations(ctx context.Context) (int64, error) {
	const op = "services.stats.TotalRegistrations"

	n, err := a.repo.CountAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, models.ErrStorageFailure, err)
	}
	return n, nil
}

// PerUserActivity возвращает активность пользователей, у которых был хотя бы один вход.
// Из кеша отчёт может отставать от хранилища не более чем на cacheTTL.
func (a *Aggregator) PerUserActivity(ctx context.Context) ([]models.UserActivity, error) {
	const op = "services.stats.PerUserActivity"

	if a.cache != nil {
		var cached []models.UserActivity
		found, err := a.cache.Get(ctx, cache.ActivityKey, &cached)
		if err != nil {
			a.log.Warn("failed to read activity from cache", sl.Op(op), sl.Err(err))
		}
		if found {
			if cached == nil {
				cached = []models.UserActivity{}
			}
			return cached, nil
		}
	}

	activity, err := a.repo.ListActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageFailure, err)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, cache.ActivityKey, activity, a.cacheTTL); err != nil {
			a.log.Warn("failed to cache activity", sl.Op(op), sl.Err(err))
		}
	}
	return activity, nil
}

// ExportCounters пишет счётчики процесса в w.
func (a *Aggregator) ExportCounters(w io.Writer) error {
	const op = "services.stats.ExportCounters"

	if err := a.exporter.WriteText(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
