// Package password реализует хеширование и проверку паролей аккаунтов.
//
// Пароли хранятся только в виде bcrypt-хеша, сравнение выполняет bcrypt
// за постоянное время. bcrypt принимает не более 72 байт, поэтому пароль
// предварительно сворачивается SHA-256.
package password

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, когда пароль не соответствует хешу.
var ErrMismatch = errors.New("password mismatch")

// dummyHash используется для выравнивания времени ответа,
// когда аккаунт не найден.
var dummyHash, _ = bcrypt.GenerateFromPassword(prehash("dummy-password"), bcrypt.DefaultCost)

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// GetHash возвращает bcrypt-хеш пароля.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает хеш с введённым паролем.
//
// Возвращает nil при совпадении, ErrMismatch при несовпадении
// и обёрнутую ошибку, если хеш повреждён.
func CompareHash(hash, password string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// EqualizeTiming тратит на проверку столько же времени, сколько CompareHash.
// Вызывается, когда пользователь не найден.
func EqualizeTiming(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, prehash(password))
}
