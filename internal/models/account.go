// Package models содержит доменные модели аккаунта и его счётчиков активности.
package models

// Account представляет зарегистрированного пользователя.
type Account struct {
	ID           int64   // Идентификатор, назначается при создании
	Username     string  // Имя пользователя (уникальное, без пробелов по краям)
	Email        string  // Электронная почта (уникальная)
	PasswordHash string  // bcrypt-хеш пароля
	ResetToken   *string // Зарезервировано схемой, логикой не используется
}

// AccountMetrics счётчики активности аккаунта, одна строка на аккаунт.
type AccountMetrics struct {
	ID              int64
	AccountID       int64
	Logins          int64
	PasswordChanges int64
}

// UserActivity строка отчёта об активности пользователя.
type UserActivity struct {
	Username        string `json:"username"`
	Logins          int64  `json:"logins"`
	PasswordChanges int64  `json:"password_changes"`
}
