package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/storage"
)

// A request finishing while the server drains must be dropped, not
// sent on the closed channel.
func TestRequestLogger_RequestAfterCloseIsDropped(t *testing.T) {
	rl := NewRequestLogger(&storage.Postgres{}, 4)

	router := gin.New()
	router.Use(rl.Handler())
	router.GET("/api/usage", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rl.Close()

	require.NotPanics(t, func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequestLogger_CloseIsIdempotent(t *testing.T) {
	rl := NewRequestLogger(&storage.Postgres{}, 4)

	require.NotPanics(t, func() {
		rl.Close()
		rl.Close()
	})
}
