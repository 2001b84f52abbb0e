package jwt

import "github.com/golang-jwt/jwt/v5"

// SessionClaims описывает данные сессии, хранящиеся в JWT.
type SessionClaims struct {
	Username             string `json:"username"` // Имя вошедшего пользователя
	jwt.RegisteredClaims                           // ExpiresAt, IssuedAt, Subject и пр.
}
