package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims are the fields carried by an access token
type Claims struct {
	UserID    uuid.UUID
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 access tokens
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. The secret must not be empty.
func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue signs a token for userID that expires after ttl
func (t *TokenIssuer) Issue(userID uuid.UUID, ttl time.Duration) (string, *Claims, error) {
	now := t.now().UTC().Truncate(time.Second)
	claims := &Claims{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	tok, err := jwt.NewBuilder().
		Subject(userID.String()).
		JwtID(claims.TokenID).
		IssuedAt(claims.IssuedAt).
		Expiration(claims.ExpiresAt).
		Issuer(t.issuer).
		Build()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), claims, nil
}

// Parse verifies the signature, issuer and expiry of raw and returns its claims
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, t.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(t.issuer),
		jwt.WithClock(jwt.ClockFunc(t.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	userID, err := uuid.Parse(tok.Subject())
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	if tok.JwtID() == "" {
		return nil, errors.New("token missing jti claim")
	}

	return &Claims{
		UserID:    userID,
		TokenID:   tok.JwtID(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}
