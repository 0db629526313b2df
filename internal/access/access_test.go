package access

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCan(t *testing.T) {
	assert.True(t, Can(RoleAdmin, MediaDelete))
	assert.True(t, Can(RoleAdmin, UsersManage))
	assert.True(t, Can(RoleEditor, ContentWrite))
	assert.True(t, Can(RoleEditor, MediaWrite))
	assert.False(t, Can(RoleEditor, MediaDelete))
	assert.False(t, Can(RoleEditor, UsersManage))
	assert.False(t, Can("", ContentWrite))
	assert.False(t, Can("Admin", ContentWrite))
	assert.True(t, ValidRole(RoleEditor))
	assert.False(t, ValidRole("viewer"))
}

func TestPasswords(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong horse battery"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	raw, exp, err := tokens.Issue(Claims{UserID: "u1", Email: "jane@example.org", Role: RoleEditor})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "u1", Email: "jane@example.org", Role: RoleEditor}, claims)

	_, err = NewTokens("other", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(Claims{UserID: "u1", Role: RoleAdmin})
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = NewTokens("", time.Hour).Issue(Claims{UserID: "u1"})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokens("s3cret", time.Hour)
	editor, _, _ := tokens.Issue(Claims{UserID: "u1", Email: "e@example.org", Role: RoleEditor})
	admin, _, _ := tokens.Issue(Claims{UserID: "u2", Email: "a@example.org", Role: RoleAdmin})

	r := gin.New()
	r.DELETE("/media", AuthMiddleware(tokens), RequirePermission(MediaDelete), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	r.GET("/whoami", OptionalAuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, Role(c))
	})

	do := func(method, path, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodDelete, "/media", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodDelete, "/media", "Token "+admin).Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodDelete, "/media", "Bearer garbage").Code)
	assert.Equal(t, http.StatusForbidden, do(http.MethodDelete, "/media", "Bearer "+editor).Code)

	w := do(http.MethodDelete, "/media", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", w.Body.String())

	assert.Equal(t, "", do(http.MethodGet, "/whoami", "Bearer garbage").Body.String())
	assert.Equal(t, RoleEditor, do(http.MethodGet, "/whoami", "Bearer "+editor).Body.String())
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Jane@Example.org ", "Jane", RoleEditor, "long enough pw")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jane@example.org", u.Email)
	assert.True(t, CheckPassword(u.PasswordHash, "long enough pw"))

	_, err = NewUser("x@example.org", "X", "owner", "long enough pw")
	assert.Error(t, err)
	_, err = NewUser("x@example.org", "X", RoleAdmin, "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = NewUser("x@example.org", "X", RoleAdmin, strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = NewUser("x@example.org", "X", RoleAdmin, strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
