package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, expired, or mis-signed tokens
var ErrInvalidToken = errors.New("invalid token")

type deviceClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies signed device tokens. Devices exchange
// their registration secret for a short-lived bearer token and attach it to
// queue and submission requests.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates a token issuer signing with an HMAC secret
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "vocabdrill",
	}
}

// Issue creates a signed token for a device
func (ti *TokenIssuer) Issue(deviceID string, now time.Time) (string, error) {
	claims := deviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify parses a token and returns the device ID it was issued to
func (ti *TokenIssuer) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
	)

	claims := &deviceClaims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
