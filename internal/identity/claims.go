package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimsResolver accepts bearer tokens for federated logins. Only HS256 is
// verified: provider tokens are expected to be re-minted by an upstream
// gateway that shares Secret. Each trusted issuer maps to a prefix so
// subjects from different providers never collide.
type ClaimsResolver struct {
	Secret  []byte
	Issuers map[string]string
}

// NewClaimsResolver rejects an empty secret or issuer list.
func NewClaimsResolver(secret string, issuers map[string]string) (*ClaimsResolver, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("claims secret is required")
	}
	if len(issuers) == 0 {
		return nil, errors.New("at least one trusted issuer is required")
	}
	return &ClaimsResolver{Secret: []byte(secret), Issuers: issuers}, nil
}

func (c *ClaimsResolver) Resolve(r *http.Request) (Identity, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return Identity{}, ErrNoCredentials
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return Identity{}, fmt.Errorf("%w: malformed authorization header", ErrInvalidCredentials)
	}
	raw := strings.TrimSpace(header[7:])

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bearer: %w", ErrInvalidCredentials, err)
	}
	prefix, ok := c.Issuers[claims.Issuer]
	if !ok {
		return Identity{}, fmt.Errorf("%w: untrusted issuer %q", ErrInvalidCredentials, claims.Issuer)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidCredentials)
	}
	return Identity{UserID: prefix + ":" + claims.Subject, Provider: prefix}, nil
}
