package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const ProviderLocal = "local"

// SessionResolver reads the password-login session cookie, an HS256 JWT.
type SessionResolver struct {
	Secret []byte
	Cookie string
}

// NewSessionResolver rejects an empty secret.
func NewSessionResolver(secret, cookie string) (*SessionResolver, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if cookie == "" {
		cookie = "session"
	}
	return &SessionResolver{Secret: []byte(secret), Cookie: cookie}, nil
}

func (s *SessionResolver) Resolve(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(s.Cookie)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return Identity{}, ErrNoCredentials
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: session: %w", ErrInvalidCredentials, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: session has no subject", ErrInvalidCredentials)
	}
	return Identity{UserID: ProviderLocal + ":" + claims.Subject, Provider: ProviderLocal}, nil
}

// SignSession issues a session token for subject.
func SignSession(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is required")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
