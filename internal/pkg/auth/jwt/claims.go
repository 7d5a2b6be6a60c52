package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a taskhub access token.
type Payload struct {
	jwt.StandardClaims

	// UserID identifies the account the token was issued to.
	UserID int64 `json:"uid"`
}
