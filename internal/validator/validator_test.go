package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestValidator() *Validator {
	return New([]string{"image/jpeg", "image/png", "image/webp"}, 5242880)
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{"valid jpeg", "image/jpeg", 2048, nil},
		{"valid png", "image/png", 1024, nil},
		{"valid webp", "image/webp", 4096, nil},
		{"content type with charset", "image/jpeg; charset=binary", 2048, nil},
		{"uppercase content type", "IMAGE/JPEG", 2048, nil},
		{"at size ceiling", "image/jpeg", 5242880, nil},
		{"gif rejected", "image/gif", 2048, ErrUnsupportedType},
		{"pdf rejected", "application/pdf", 2048, ErrUnsupportedType},
		{"missing content type", "", 2048, ErrUnsupportedType},
		{"over size ceiling", "image/jpeg", 6 * 1024 * 1024, ErrTooLarge},
		{"empty payload", "image/jpeg", 0, ErrEmptyPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(Payload{ContentType: tt.contentType, Size: tt.size})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// The type check runs first: an oversized gif reports the type, not the size.
func TestValidate_TypeCheckedBeforeSize(t *testing.T) {
	v := newTestValidator()

	err := v.Validate(Payload{ContentType: "image/gif", Size: 10 * 1024 * 1024})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
