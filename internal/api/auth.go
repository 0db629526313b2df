package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.docs.Users.ByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		writeError(c, err)
		return
	}
	if err != nil || !access.CheckPassword(user.PasswordHash, req.Password) {
		log.Info().Str("email", req.Email).Msg("Failed login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, exp, err := h.tokens.Issue(access.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"expires_at":  exp.UTC(),
		"user":        user.Public(),
		"permissions": access.Permissions(user.Role),
	})
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin editor"`
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.docs.Users.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// CreateUser handles POST /api/admin/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := access.NewUser(req.Email, req.Name, req.Role, req.Password)
	if errors.Is(err, access.ErrWeakPassword) || errors.Is(err, access.ErrPasswordTooLong) {
		badRequest(c, err)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	user.Touch(h.now().UTC())
	if err := h.docs.Users.Insert(c.Request.Context(), user); err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("user_id", user.ID).Str("by", access.Email(c)).Msg("User created")
	c.JSON(http.StatusCreated, user.Public())
}

// DeleteUser handles DELETE /api/admin/users/:id. Users cannot delete
// themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == access.UserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := h.docs.Users.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("user_id", id).Str("by", access.Email(c)).Msg("User deleted")
	c.Status(http.StatusNoContent)
}
