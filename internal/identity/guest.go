package identity

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	ProviderGuest = "guest"
	GuestHeader   = "X-Guest-Id"
	maxGuestIDLen = 128
)

// GuestResolver identifies anonymous callers by a client-generated ID.
type GuestResolver struct{}

func (GuestResolver) Resolve(r *http.Request) (Identity, error) {
	id := strings.TrimSpace(r.Header.Get(GuestHeader))
	if id == "" {
		return Identity{}, ErrNoCredentials
	}
	if len(id) > maxGuestIDLen || strings.ContainsAny(id, ": \t") {
		return Identity{}, fmt.Errorf("%w: malformed guest id", ErrInvalidCredentials)
	}
	return Identity{UserID: ProviderGuest + ":" + id, Provider: ProviderGuest, Guest: true}, nil
}
