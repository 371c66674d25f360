package provider

import (
	"context"
	"errors"
)

// Sentinel errors surfaced by provider adapters.
var (
	ErrUnavailable = errors.New("provider: unavailable")
	ErrRateLimited = errors.New("provider: rate limited")
	ErrAuthFailed  = errors.New("provider: authentication failed")
	ErrBadRequest  = errors.New("provider: request rejected")
)

// Describer is the external vision-analysis capability: given image
// bytes and an instructional prompt, return generated text. Calls are
// synchronous and must honor ctx for cancellation and timeout.
type Describer interface {
	Name() string
	Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
	Ping(ctx context.Context) error
}
