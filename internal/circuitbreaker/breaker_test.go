package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream failed")

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := New(Config{MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Call(func() error { return errDownstream })
		assert.ErrorIs(t, err, errDownstream)
	}

	assert.Equal(t, StateOpen, cb.State())

	// Open circuit fails fast without invoking the call
	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{MaxFailures: 2, Timeout: time.Minute})

	require.Error(t, cb.Call(func() error { return errDownstream }))
	require.NoError(t, cb.Call(func() error { return nil }))
	require.Error(t, cb.Call(func() error { return errDownstream }))

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Call(func() error { return errDownstream }))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// First call after the timeout probes the downstream and closes
	// the circuit on success.
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Call(func() error { return errDownstream }))

	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Call(func() error { return errDownstream }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreaker_IsFailureFilter(t *testing.T) {
	errClient := errors.New("our request was malformed")

	cb := New(Config{
		MaxFailures: 1,
		Timeout:     time.Minute,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, errClient)
		},
	})

	// Filtered errors propagate but never trip the breaker
	for i := 0; i < 5; i++ {
		err := cb.Call(func() error { return errClient })
		assert.ErrorIs(t, err, errClient)
	}
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Call(func() error { return errDownstream }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreaker_Reset(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: time.Hour})

	require.Error(t, cb.Call(func() error { return errDownstream }))
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())

	require.NoError(t, cb.Call(func() error { return nil }))
}
