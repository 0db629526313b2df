package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/content/memstore"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/brueckenwerk/cms/internal/notify"
	"github.com/brueckenwerk/cms/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []notify.ContactMessage
	err  error
}

func (f *fakeMailer) SendContact(_ context.Context, msg notify.ContactMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type testEnv struct {
	router  *gin.Engine
	backend *memstore.Backend
	objects *storage.MemoryStore
	tokens  *access.Tokens
	mailer  *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend, docs := memstore.New()
	objects := storage.NewMemoryStore()
	svc := media.NewService(objects, docs, media.Resolver{MediaBaseURL: "https://example.org/api/media"})
	tokens := access.NewTokens("test-secret", time.Hour)
	mailer := &fakeMailer{}
	h := NewHandler(Deps{Content: docs, Media: svc, Tokens: tokens, Mailer: mailer, MaxUploadBytes: 20 << 20})
	return &testEnv{router: NewRouter(h, RouterConfig{}), backend: backend, objects: objects, tokens: tokens, mailer: mailer}
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(access.Claims{UserID: "u-" + role, Email: role + "@example.org", Role: role})
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLiveAndHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/live", "", nil).Code)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}

func TestServeMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.objects.Put(ctx, "docs/report.pdf", []byte("%PDF"), "application/pdf"))
	require.NoError(t, env.objects.Put(ctx, "team/jane.webp", []byte("RIFF"), "image/webp"))
	require.NoError(t, env.backend.Media.SetNoIndex(ctx, "docs/report.pdf", true))

	w := env.do(t, http.MethodGet, "/api/media/docs/report.pdf", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "noindex", w.Header().Get("X-Robots-Tag"))

	w = env.do(t, http.MethodGet, "/api/media/team/jane.webp", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Robots-Tag"))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/media/nope.webp", "", nil).Code)
}

func TestPublicContentIsLocalized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.backend.TeamMembers.Insert(ctx, models.TeamMember{
		ID: "t1", Name: "Jane Doe", Role: models.Localized{"en": "Founder", "de": "Gründerin"}, Picture: "team/jane.webp",
	}))
	require.NoError(t, env.backend.BlogPosts.Insert(ctx, models.BlogPost{
		ID: "b1", Slug: "hello", Title: models.Localized{"en": "Hello", "de": "Hallo"},
		Body: models.Localized{"en": "Body"}, Published: true, PublishedAt: &published,
	}))
	require.NoError(t, env.backend.BlogPosts.Insert(ctx, models.BlogPost{ID: "b2", Slug: "draft", Title: models.Localized{"en": "Draft"}}))

	w := env.do(t, http.MethodGet, "/api/public/team?lang=de", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	team := decode[[]teamMemberView](t, w)
	require.Len(t, team, 1)
	assert.Equal(t, "Gründerin", team[0].Role)
	assert.Equal(t, "https://example.org/api/media/team/jane.webp", team[0].PictureURL)

	posts := decode[[]postView](t, env.do(t, http.MethodGet, "/api/public/posts", "", nil))
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Empty(t, posts[0].Body)

	req := httptest.NewRequest(http.MethodGet, "/api/public/posts/hello", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	post := decode[postView](t, w)
	assert.Equal(t, "Hallo", post.Title)
	assert.Equal(t, "Body", post.Body)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/public/posts/draft", "", nil).Code)
}

func TestPublicPostDraftPreview(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.backend.BlogPosts.Insert(context.Background(), models.BlogPost{
		ID: "b2", Slug: "draft", Title: models.Localized{"en": "Draft"}, Body: models.Localized{"en": "Soon"},
	}))
	editor := env.token(t, access.RoleEditor)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/public/posts/draft", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/public/posts/draft", "garbage", nil).Code)

	w := env.do(t, http.MethodGet, "/api/public/posts/draft", editor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Soon", decode[postView](t, w).Body)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	assert.Empty(t, decode[[]postView](t, env.do(t, http.MethodGet, "/api/public/posts", editor, nil)))
}

func TestAdminCRUDNormalizesMediaReferences(t *testing.T) {
	env := newTestEnv(t)
	editor := env.token(t, access.RoleEditor)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/admin/projects", "", models.Project{Name: "x"}).Code)

	w := env.do(t, http.MethodPost, "/api/admin/projects", editor, map[string]any{
		"name": "Bridges of Hope",
		"logo": "https://example.org/api/media/projects/bridges.webp?v=3",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Project](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "projects/bridges.webp", created.Logo)
	assert.Equal(t, "bridges-of-hope", created.Slug)
	assert.False(t, created.CreatedAt.IsZero())

	w = env.do(t, http.MethodPut, "/api/admin/projects/"+created.ID, editor, map[string]any{
		"name": "Bridges of Hope", "logo": "/api/media/projects/new.webp",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Project](t, w)
	assert.Equal(t, "projects/new.webp", updated.Logo)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	stored, err := env.backend.Projects.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "projects/new.webp", stored.Logo)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/admin/projects", editor, map[string]any{"logo": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/admin/projects/missing", editor, map[string]any{"name": "x"}).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/admin/projects/"+created.ID, editor, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/admin/projects/"+created.ID, editor, nil).Code)
}

func TestAdminPostPublishStampsDate(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/admin/posts", env.token(t, access.RoleAdmin), map[string]any{
		"title": map[string]string{"en": "Annual Report"}, "published": true, "thumbnail": "/api/media/posts/cover.webp",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[models.BlogPost](t, w)
	assert.NotNil(t, post.PublishedAt)
	assert.Equal(t, "annual-report", post.Slug)
	assert.Equal(t, "posts/cover.webp", post.Thumbnail)
}

func multipartUpload(t *testing.T, filename, contentType, folder string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

// Upload through the dashboard, attach to a team member, then try to delete.
func TestMediaLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, access.RoleAdmin)

	img := image.NewRGBA(image.Rect(0, 0, 3000, 2000))
	for x := 0; x < 3000; x += 9 {
		img.Set(x, x%2000, color.RGBA{R: 10, G: 200, B: 10, A: 255})
	}
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, img, nil))

	body, ct := multipartUpload(t, "photo.JPG", "image/jpeg", "", jpg.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	file := decode[media.File](t, w)
	assert.Equal(t, "photo.webp", file.Key)

	obj, err := env.objects.Stat(context.Background(), "photo.webp")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", obj.ContentType)

	w = env.do(t, http.MethodPost, "/api/admin/team", admin, map[string]any{"name": "Jane Doe", "picture": file.URL})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/admin/media", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Files []media.File `json:"files"`
	}](t, w)
	require.Len(t, list.Files, 1)
	assert.Len(t, list.Files[0].UsedBy, 1)

	w = env.do(t, http.MethodGet, "/api/admin/media/usage", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Doe")

	w = env.do(t, http.MethodDelete, "/api/admin/media?key=photo.webp", admin, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[struct {
		Error  string        `json:"error"`
		UsedBy []media.Usage `json:"used_by"`
	}](t, w)
	assert.Contains(t, conflict.Error, "Jane Doe")
	require.Len(t, conflict.UsedBy, 1)
	assert.Equal(t, models.KindTeamMember, conflict.UsedBy[0].Type)

	_, ok := env.objects.Bytes("photo.webp")
	assert.True(t, ok)
}

func TestMediaAdminErrors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, access.RoleAdmin)
	editor := env.token(t, access.RoleEditor)
	require.NoError(t, env.objects.Put(context.Background(), "old.pdf", []byte("x"), "application/pdf"))

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/admin/media?key=old.pdf", editor, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/admin/media", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/admin/media?key=missing.pdf", admin, nil).Code)

	w := env.do(t, http.MethodPut, "/api/admin/media/noindex", editor, map[string]any{"key": "old.pdf", "noindex": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meta, err := env.backend.Media.Get(context.Background(), "old.pdf")
	require.NoError(t, err)
	assert.True(t, meta.NoIndex)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/admin/media/noindex", editor, map[string]any{"key": "old.pdf"}).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/admin/media?key=old.pdf", admin, nil).Code)
	_, err = env.backend.Media.Get(context.Background(), "old.pdf")
	assert.Error(t, err)

	env.backend.Courses.Err = errors.New("mongo down")
	w = env.do(t, http.MethodGet, "/api/admin/media", admin, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "mongo down")
}

func TestLoginAndUsers(t *testing.T) {
	env := newTestEnv(t)
	user, err := access.NewUser("admin@example.org", "Admin", access.RoleAdmin, "a very long password")
	require.NoError(t, err)
	require.NoError(t, env.backend.Users.Insert(context.Background(), user))

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@example.org", "password": "wrong password",
	}).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.org", "password": "whatever",
	}).Code)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "Admin@Example.org", "password": "a very long password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}](t, w)
	assert.Equal(t, user.ID, login.User.ID)
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = env.do(t, http.MethodPost, "/api/admin/users", login.Token, map[string]string{
		"email": "ed@example.org", "name": "Ed", "password": "another long one", "role": "editor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ed := decode[models.PublicUser](t, w)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/admin/users", login.Token, map[string]string{
		"email": "ED@example.org", "name": "Ed 2", "password": "another long one", "role": "editor",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/admin/users", login.Token, map[string]string{
		"email": "x@example.org", "name": "X", "password": "short", "role": "editor",
	}).Code)
	w = env.do(t, http.MethodPost, "/api/admin/users", login.Token, map[string]string{
		"email": "y@example.org", "name": "Y", "password": strings.Repeat("long ", 20), "role": "editor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at most 72 bytes")

	users := decode[[]models.PublicUser](t, env.do(t, http.MethodGet, "/api/admin/users", login.Token, nil))
	assert.Len(t, users, 2)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/admin/users", env.token(t, access.RoleEditor), nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/admin/users/"+user.ID, login.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/admin/users/"+ed.ID, login.Token, nil).Code)
}

func TestContact(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/contact?lang=de", "", map[string]string{
		"name": "Max", "email": "max@example.com", "message": "Ich möchte helfen.",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "de", env.mailer.sent[0].Locale)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Max", "email": "not-an-email", "message": "hi",
	}).Code)

	env.mailer.err = notify.ErrDisabled
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Max", "email": "max@example.com", "message": "hi",
	}).Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Not found"))
}
