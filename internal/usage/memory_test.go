package usage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
)

func TestMemory_ConsumeUpToLimit(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id := identity.Identity("a@x.com")

	const limit = int64(3)
	for i := int64(1); i <= limit; i++ {
		dec, err := store.TryConsume(ctx, id, limit)
		require.NoError(t, err)
		assert.True(t, dec.Admitted)
		assert.Equal(t, i, dec.Used)
	}

	// One past the limit is rejected and the counter stays put
	dec, err := store.TryConsume(ctx, id, limit)
	require.NoError(t, err)
	assert.False(t, dec.Admitted)
	assert.Equal(t, limit, dec.Used)

	used, err := store.Peek(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, limit, used)
}

func TestMemory_UnlimitedAlwaysAdmitsAndCounts(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id := identity.Identity("premium@x.com")

	for i := int64(1); i <= 10; i++ {
		dec, err := store.TryConsume(ctx, id, Unlimited)
		require.NoError(t, err)
		assert.True(t, dec.Admitted)
		assert.Equal(t, i, dec.Used)
	}
}

func TestMemory_PeekUnknownIdentityIsZero(t *testing.T) {
	store := NewMemory()

	used, err := store.Peek(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestMemory_ZeroLimitRejectsFirstRequest(t *testing.T) {
	store := NewMemory()

	dec, err := store.TryConsume(context.Background(), "a@x.com", 0)
	require.NoError(t, err)
	assert.False(t, dec.Admitted)
	assert.Zero(t, dec.Used)
}

func TestMemory_ConcurrentConsumeAdmitsExactlyOnce(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id := identity.Identity("contended@x.com")

	const workers = 50
	var wg sync.WaitGroup
	admits := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := store.TryConsume(ctx, id, 1)
			assert.NoError(t, err)
			admits <- dec.Admitted
		}()
	}

	wg.Wait()
	close(admits)

	admitted := 0
	for ok := range admits {
		if ok {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted)

	used, err := store.Peek(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), used)
}

func TestMemory_IdentitiesAreIndependent(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	dec, err := store.TryConsume(ctx, "a@x.com", 1)
	require.NoError(t, err)
	assert.True(t, dec.Admitted)

	// Exhausting a@x.com does not touch b@x.com
	dec, err = store.TryConsume(ctx, "b@x.com", 1)
	require.NoError(t, err)
	assert.True(t, dec.Admitted)
}

func TestMemory_ResetClearsCounter(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id := identity.Identity("a@x.com")

	_, err := store.TryConsume(ctx, id, 1)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx, id))

	dec, err := store.TryConsume(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, dec.Admitted)
	assert.Equal(t, int64(1), dec.Used)
}
