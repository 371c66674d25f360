package identity

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func TestResolve_MissingIdentity(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name   string
		header http.Header
	}{
		{"no header", headers()},
		{"wrong scheme", headers("Authorization", "Basic a@x.com")},
		{"bearer without value", headers("Authorization", "Bearer ")},
		{"bare token", headers("Authorization", "a@x.com")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := r.Resolve(tt.header)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestResolve_AllowListIsAuthoritative(t *testing.T) {
	r := NewResolver([]string{"vip@x.com"})

	id, tier, err := r.Resolve(headers("Authorization", "Bearer vip@x.com"))
	require.NoError(t, err)
	assert.Equal(t, Identity("vip@x.com"), id)
	assert.Equal(t, TierPremium, tier)

	// A premium hint cannot override a non-empty allow-list
	id, tier, err = r.Resolve(headers(
		"Authorization", "Bearer someone@x.com",
		"X-Tier", "premium",
	))
	require.NoError(t, err)
	assert.Equal(t, Identity("someone@x.com"), id)
	assert.Equal(t, TierFree, tier)
}

func TestResolve_TierHintTrustedWithoutAllowList(t *testing.T) {
	r := NewResolver(nil)

	_, tier, err := r.Resolve(headers(
		"Authorization", "Bearer a@x.com",
		"X-Tier", "premium",
	))
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)

	_, tier, err = r.Resolve(headers(
		"Authorization", "Bearer a@x.com",
		"X-Tier", "PREMIUM",
	))
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)
}

func TestResolve_DefaultsToFree(t *testing.T) {
	r := NewResolver(nil)

	_, tier, err := r.Resolve(headers("Authorization", "Bearer a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, TierFree, tier)

	// Unknown hints fall back to free
	_, tier, err = r.Resolve(headers(
		"Authorization", "Bearer a@x.com",
		"X-Tier", "platinum",
	))
	require.NoError(t, err)
	assert.Equal(t, TierFree, tier)
}
