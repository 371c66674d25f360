package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiReply(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]},"finishReason":"STOP"}]}`
}

func TestGemini_Describe(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff}

	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "models/gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, geminiReply("a red apple on a table"))
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-1.5-flash", WithBaseURL(srv.URL))

	text, err := g.Describe(context.Background(), image, "image/jpeg", "Describe this image")
	require.NoError(t, err)
	assert.Equal(t, "a red apple on a table", text)

	// The request carries the image inline plus the prompt
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)

	inline := gotBody.Contents[0].Parts[0].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/jpeg", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), inline.Data)
	assert.Equal(t, "Describe this image", gotBody.Contents[0].Parts[1].Text)
}

func TestGemini_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad api key", http.StatusUnauthorized, ErrAuthFailed},
		{"forbidden", http.StatusForbidden, ErrAuthFailed},
		{"rejected request", http.StatusBadRequest, ErrBadRequest},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			g := NewGemini("test-key", "gemini-1.5-flash", WithBaseURL(srv.URL))

			_, err := g.Describe(context.Background(), []byte{0x01}, "image/png", "prompt")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGemini_UnreachableHost(t *testing.T) {
	g := NewGemini("test-key", "gemini-1.5-flash", WithBaseURL("http://127.0.0.1:1"))

	_, err := g.Describe(context.Background(), []byte{0x01}, "image/png", "prompt")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGemini_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-1.5-flash", WithBaseURL(srv.URL))

	_, err := g.Describe(context.Background(), []byte{0x01}, "image/png", "prompt")
	assert.Error(t, err)
}

func TestGemini_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		io.WriteString(w, `{"name":"models/gemini-1.5-flash"}`)
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-1.5-flash", WithBaseURL(srv.URL))
	assert.NoError(t, g.Ping(context.Background()))
}
