/*
Package jwt issues and verifies the HS256 access tokens used by the REST API and
the realtime channel.
*/
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// DefaultTokenLifetime is used when the configuration does not set one.
	DefaultTokenLifetime = 2 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "taskhub"
)

// ErrUnauthorized is wrapped by every verification failure.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrMissingToken     = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrMalformedToken   = fmt.Errorf("%w: malformed token", ErrUnauthorized)
	ErrExpiredToken     = fmt.Errorf("%w: expired token", ErrUnauthorized)
	ErrSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
	ErrInvalidClaims    = fmt.Errorf("%w: invalid claims", ErrUnauthorized)
)

// GenerateToken signs payload with secretKey, stamping issue and expiry times.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		Subject:   strconv.FormatInt(payload.UserID, 10),
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken validates tokenString and returns its claims.
// Failures are reported as one of the ErrUnauthorized sentinels.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, classify(err)
	}

	if !token.Valid {
		return nil, ErrMalformedToken
	}

	if claims.UserID <= 0 {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// classify maps jwt-go validation flags onto our sentinels.
func classify(err error) error {
	var validationErr *jwt.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	switch {
	case validationErr.Errors&jwt.ValidationErrorMalformed != 0:
		return ErrMalformedToken
	case validationErr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return ErrSignatureInvalid
	case validationErr.Errors&jwt.ValidationErrorExpired != 0:
		return ErrExpiredToken
	default:
		return ErrInvalidClaims
	}
}
