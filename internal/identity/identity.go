package identity

import (
	"errors"
	"net/http"
)

// Identity is the normalized caller. UserID is the only value the core
// pipeline ever sees.
type Identity struct {
	UserID   string
	Provider string
	Guest    bool
}

var (
	// ErrNoCredentials means the request carries nothing this resolver
	// understands; a Chain moves on to the next resolver.
	ErrNoCredentials = errors.New("no credentials")
	// ErrInvalidCredentials means credentials were present but rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Resolver turns request credentials into an Identity.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// Chain tries each resolver in order. The first resolver that finds
// credentials decides the outcome.
type Chain []Resolver

func (c Chain) Resolve(r *http.Request) (Identity, error) {
	for _, res := range c {
		id, err := res.Resolve(r)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return id, err
	}
	return Identity{}, ErrNoCredentials
}
