package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Live answers as long as the process runs.
func (h *Handler) Live(c *gin.Context) { c.Status(http.StatusOK) }

// Health handles GET /health and checks the content store and storage.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{"content": "ok"}
	healthy := true
	if err := h.docs.Ping(ctx); err != nil {
		checks["content"] = "unreachable"
		healthy = false
	}
	if h.storage != nil {
		checks["storage"] = "ok"
		if err := h.storage.Ping(ctx); err != nil {
			checks["storage"] = "unreachable"
			healthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": h.now().UTC(),
	})
}
