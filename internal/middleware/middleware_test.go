package middleware

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return buf
}

// A panic surfaces in the same {"error","kind"} shape the handlers use.
func TestRecovery_EmitsGatewayErrorShape(t *testing.T) {
	captureLog(t)

	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("usage store corrupted")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "internal", body["kind"])

	// Panic detail never reaches the caller
	assert.NotContains(t, rec.Body.String(), "usage store corrupted")
}

func TestLogger_IncludesResolvedIdentityAndTier(t *testing.T) {
	buf := captureLog(t)

	router := gin.New()
	router.Use(Logger())
	router.Use(IdentityTag(identity.NewResolver(nil)))
	router.GET("/api/usage", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set("Authorization", "Bearer a@x.com")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Contains(t, buf.String(), "identity=a@x.com")
	assert.Contains(t, buf.String(), "tier=free")
}

func TestLogger_AnonymousRequestLogsDash(t *testing.T) {
	buf := captureLog(t)

	router := gin.New()
	router.Use(Logger())
	router.Use(IdentityTag(identity.NewResolver(nil)))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, buf.String(), "identity=- tier=-")
}
