// Package services содержит бизнес-правила регистрации, входа и сброса пароля.
//
// Каждая операция выполняется в одной транзакции хранилища; ошибки ввода
// возвращаются как ошибки models, сбои хранилища как models.ErrStorageFailure.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/events"
	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

// Repository открывает транзакцию над аккаунтами.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, q storage.AccountQueries) error) error
}

// Counters учитывает действия в счётчиках процесса.
type Counters interface {
	RegistrationObserved()
	LoginObserved(username string)
	PasswordChangeObserved(username string)
}

// Publisher публикует события аккаунта.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// ReportCache сбрасывает закешированные отчёты.
type ReportCache interface {
	Invalidate(ctx context.Context, key string) error
}

// AccountService реализует жизненный цикл аккаунта.
type AccountService struct {
	repo      Repository
	counters  Counters
	publisher Publisher
	reports   ReportCache
	log       *slog.Logger
}

// NewAccountService создает новый экземпляр AccountService.
// reports может быть nil, если кеш отчётов не настроен.
func NewAccountService(repo Repository, counters Counters, publisher Publisher, reports ReportCache, log *slog.Logger) *AccountService {
	return &AccountService{
		repo:      repo,
		counters:  counters,
		publisher: publisher,
		reports:   reports,
		log:       log,
	}
}

// Register создаёт аккаунт. Имя пользователя обрезается по краям до всех проверок.
// При совпадении и имени, и почты возвращается ErrUsernameTaken.
func (s *AccountService) Register(ctx context.Context, username, email, rawPassword, confirmPassword string) error {
	const op = "services.account.Register"
	username = strings.TrimSpace(username)

	if rawPassword != confirmPassword {
		return fmt.Errorf("%s: %w", op, models.ErrPasswordMismatch)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context, q storage.AccountQueries) error {
		existing, err := q.FindByUsernameOrEmail(ctx, username, email)
		switch {
		case err == nil:
			if existing.Username == username {
				return models.ErrUsernameTaken
			}
			return models.ErrEmailTaken
		case !errors.Is(err, storage.ErrAccountNotFound):
			return err
		}

		_, err = q.CreateAccount(ctx, models.Account{
			Username:     username,
			Email:        email,
			PasswordHash: hashed,
		})
		return err
	})
	if err != nil {
		return classify(op, err)
	}

	s.log.Info("account registered", sl.Op(op), slog.String("username", username))
	s.counters.RegistrationObserved()
	s.publish(ctx, events.New(events.TypeRegistered, username))
	return nil
}

// Login проверяет учётные данные и увеличивает счётчик входов.
// Неизвестный пользователь и неверный пароль неразличимы для вызывающего.
func (s *AccountService) Login(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "services.account.Login"

	err := s.repo.WithinTx(ctx, func(ctx context.Context, q storage.AccountQueries) error {
		account, err := q.FindByUsername(ctx, username)
		if errors.Is(err, storage.ErrAccountNotFound) {
			password.EqualizeTiming(rawPassword)
			return models.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}

		if err = password.CompareHash(account.PasswordHash, rawPassword); err != nil {
			if errors.Is(err, password.ErrMismatch) {
				return models.ErrInvalidCredentials
			}
			return err
		}
		return q.IncrementLogins(ctx, account.ID)
	})
	if err != nil {
		return "", classify(op, err)
	}

	s.log.Info("login succeeded", sl.Op(op), slog.String("username", username))
	s.counters.LoginObserved(username)
	s.invalidateActivity(ctx)
	s.publish(ctx, events.New(events.TypeLoggedIn, username))
	return username, nil
}

// InitiatePasswordReset проверяет, что почта принадлежит аккаунту,
// и возвращает её для шага ввода нового пароля.
//
// TODO: выдавать одноразовый reset_token и проверять его в CompletePasswordReset.
func (s *AccountService) InitiatePasswordReset(ctx context.Context, email string) (string, error) {
	const op = "services.account.InitiatePasswordReset"

	err := s.repo.WithinTx(ctx, func(ctx context.Context, q storage.AccountQueries) error {
		_, err := q.FindByEmail(ctx, email)
		if errors.Is(err, storage.ErrAccountNotFound) {
			return models.ErrEmailNotFound
		}
		return err
	})
	if err != nil {
		return "", classify(op, err)
	}
	return email, nil
}

// CompletePasswordReset перезаписывает пароль и увеличивает счётчик смен пароля.
func (s *AccountService) CompletePasswordReset(ctx context.Context, email, newPassword string) error {
	const op = "services.account.CompletePasswordReset"

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var username string
	err = s.repo.WithinTx(ctx, func(ctx context.Context, q storage.AccountQueries) error {
		account, err := q.FindByEmail(ctx, email)
		if errors.Is(err, storage.ErrAccountNotFound) {
			return models.ErrInvalidEmail
		}
		if err != nil {
			return err
		}
		if err = q.UpdatePassword(ctx, account.ID, hashed); err != nil {
			return err
		}
		if err = q.IncrementPasswordChanges(ctx, account.ID); err != nil {
			return err
		}
		username = account.Username
		return nil
	})
	if err != nil {
		return classify(op, err)
	}

	s.log.Info("password changed", sl.Op(op), slog.String("username", username))
	s.counters.PasswordChangeObserved(username)
	s.invalidateActivity(ctx)
	s.publish(ctx, events.New(events.TypePasswordChanged, username))
	return nil
}

func (s *AccountService) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish account event",
			slog.String("type", ev.Type), slog.String("event_id", ev.ID), sl.Err(err))
	}
}

// invalidateActivity сбрасывает отчёт активности, чтобы он учёл только что
// зафиксированное изменение счётчиков.
func (s *AccountService) invalidateActivity(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx, cache.ActivityKey); err != nil {
		s.log.Warn("failed to invalidate activity report", slog.String("key", cache.ActivityKey), sl.Err(err))
	}
}

// classify приводит ошибку транзакции к виду, понятному вызывающему.
func classify(op string, err error) error {
	switch {
	case models.IsValidation(err):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, storage.ErrUsernameExists):
		return fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
	case errors.Is(err, storage.ErrEmailExists):
		return fmt.Errorf("%s: %w", op, models.ErrEmailTaken)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageFailure, err)
	}
}
