package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the advisory identity claims embedded in the session
// token. The client never verifies the signature; these values are used
// for display only, never for authorization decisions.
type SessionClaims struct {
	jwt.RegisteredClaims
	TelegramID string `json:"telegram_id"`
	Username   string `json:"username"`
}
