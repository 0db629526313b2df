package api

import (
	"errors"
	"net/http"

	"github.com/brueckenwerk/cms/internal/locale"
	"github.com/brueckenwerk/cms/internal/notify"
	"github.com/gin-gonic/gin"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Contact handles POST /api/contact.
func (h *Handler) Contact(c *gin.Context) {
	if h.mailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Contact form is not available"})
		return
	}
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.mailer.SendContact(c.Request.Context(), notify.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Locale:  locale.From(c),
	})
	if errors.Is(err, notify.ErrDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Contact form is not available"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
