package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/gateway"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/service"
)

type AdminHandler struct {
	auth    *service.AuthService
	gateway *gateway.Gateway
}

func NewAdminHandler(auth *service.AuthService, gw *gateway.Gateway) *AdminHandler {
	return &AdminHandler{auth: auth, gateway: gw}
}

// Handles POST /admin/register
func (h *AdminHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.auth.Register(ctx, req.Email, req.Password, req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Admin user created"})
}

// Handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Handles POST /admin/usage/:identity/reset — the billing-cycle
// counter reset.
func (h *AdminHandler) ResetUsage(c *gin.Context) {
	id := identity.Identity(c.Param("identity"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identity required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.gateway.ResetUsage(ctx, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usage counter reset"})
}
