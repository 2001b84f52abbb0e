package models

import "errors"

// Ошибки бизнес-логики аккаунтов. Все, кроме ErrStorageFailure,
// являются ошибками пользовательского ввода.
var (
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotFound      = errors.New("email not found")
	ErrInvalidEmail       = errors.New("invalid email")

	// ErrStorageFailure внутренняя ошибка хранилища.
	ErrStorageFailure = errors.New("storage failure")
)

// IsValidation сообщает, является ли err ошибкой пользовательского ввода.
func IsValidation(err error) bool {
	return errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrEmailNotFound) ||
		errors.Is(err, ErrInvalidEmail)
}
