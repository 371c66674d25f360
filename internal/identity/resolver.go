package identity

import (
	"errors"
	"net/http"
	"strings"
)

// Identity is the opaque caller-supplied user reference. The gateway
// never verifies it; upstream auth (e.g. Clerk) is expected to have
// done that already.
type Identity string

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

var ErrUnauthenticated = errors.New("identity: no identity provided")

// Resolver extracts the caller identity and subscription tier from
// request headers.
//
// Tier policy: when the premium allow-list is non-empty it is
// authoritative and the X-Tier header is ignored. When no allow-list is
// configured the X-Tier hint is trusted, falling back to the free tier
// for absent or unrecognized values.
type Resolver struct {
	premium map[Identity]bool
}

func NewResolver(premiumIdentities []string) *Resolver {
	premium := make(map[Identity]bool, len(premiumIdentities))
	for _, id := range premiumIdentities {
		premium[Identity(id)] = true
	}

	return &Resolver{premium: premium}
}

func (r *Resolver) Resolve(header http.Header) (Identity, Tier, error) {
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return "", "", ErrUnauthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "", ErrUnauthenticated
	}

	id := Identity(strings.TrimSpace(parts[1]))

	if len(r.premium) > 0 {
		if r.premium[id] {
			return id, TierPremium, nil
		}
		return id, TierFree, nil
	}

	if Tier(strings.ToLower(header.Get("X-Tier"))) == TierPremium {
		return id, TierPremium, nil
	}

	return id, TierFree, nil
}
