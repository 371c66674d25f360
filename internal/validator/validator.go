package validator

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("validator: unsupported image type")
	ErrTooLarge        = errors.New("validator: image exceeds maximum size")
	ErrEmptyPayload    = errors.New("validator: empty image payload")
)

// Payload is an uploaded image as received at the request boundary.
type Payload struct {
	Data        []byte
	ContentType string
	Size        int64
}

// Validator checks uploads against the configured format and size
// policy before any quota or provider cost is spent. It is a pure
// check; it performs no I/O.
type Validator struct {
	allowed  map[string]bool
	maxBytes int64
}

func New(allowedTypes []string, maxBytes int64) *Validator {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = true
	}

	return &Validator{allowed: allowed, maxBytes: maxBytes}
}

// Validate runs the checks in order, stopping at the first failure:
// content type, size ceiling, then emptiness.
func (v *Validator) Validate(p Payload) error {
	contentType := strings.ToLower(strings.TrimSpace(p.ContentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	if !v.allowed[contentType] {
		return ErrUnsupportedType
	}

	if p.Size > v.maxBytes {
		return ErrTooLarge
	}

	if p.Size <= 0 {
		return ErrEmptyPayload
	}

	return nil
}
