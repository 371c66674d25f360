package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/gateway"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/usage"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/validator"
)

type AnalyzeHandler struct {
	gateway *gateway.Gateway
}

func NewAnalyzeHandler(gw *gateway.Gateway) *AnalyzeHandler {
	return &AnalyzeHandler{gateway: gw}
}

// Handles POST /api/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file upload"})
		return
	}

	payload := validator.Payload{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}

	result, err := h.gateway.Analyze(c.Request.Context(), c.Request.Header, payload)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":      result.Text,
		"tier":          result.Tier,
		"analyses_used": result.AnalysesUsed,
		"limit":         renderLimit(result.Limit),
	})
}

// Handles GET /api/usage
func (h *AnalyzeHandler) Usage(c *gin.Context) {
	report, err := h.gateway.Usage(c.Request.Context(), c.Request.Header)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":          report.Tier,
		"analyses_used": report.AnalysesUsed,
		"limit":         renderLimit(report.Limit),
	})
}

// renderLimit keeps the original response contract: a number for
// limited tiers, the string "unlimited" for premium.
func renderLimit(limit int64) interface{} {
	if limit == usage.Unlimited {
		return "unlimited"
	}
	return limit
}

// writeError maps gateway error kinds to HTTP statuses. Client-side
// kinds carry their specific reason; server-side kinds already hold a
// generic message, so nothing internal reaches the caller.
func writeError(c *gin.Context, err error) {
	gwErr, ok := err.(*gateway.Error)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch gwErr.Kind {
	case gateway.KindUnauthenticated:
		status = http.StatusUnauthorized
	case gateway.KindQuotaExceeded:
		status = http.StatusTooManyRequests
	case gateway.KindUnsupportedType:
		status = http.StatusUnsupportedMediaType
	case gateway.KindTooLarge:
		status = http.StatusRequestEntityTooLarge
	case gateway.KindEmptyPayload:
		status = http.StatusBadRequest
	case gateway.KindProviderFailure:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error": gwErr.Message,
		"kind":  gwErr.Kind.String(),
	})
}
