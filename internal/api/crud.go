package api

import (
	"net/http"
	"time"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// editable is the pointer side of a content record the dashboard can write.
type editable[T any] interface {
	*T
	models.Document
	models.MediaNormalizer
	SetID(id string)
	Stamps() *models.Timestamps
}

type slugger interface{ EnsureSlug() }

type publisher interface{ Publish(now time.Time) }

// collection serves admin CRUD for one record type. Media references are
// normalized to canonical keys before every write.
type collection[T models.Document, P editable[T]] struct {
	repo      content.Repository[T]
	normalize func(string) string
	now       func() time.Time
}

func newCollection[T models.Document, P editable[T]](h *Handler, repo content.Repository[T]) *collection[T, P] {
	return &collection[T, P]{repo: repo, normalize: h.media.Resolver().Normalize, now: h.now}
}

func (col *collection[T, P]) register(g *gin.RouterGroup, path string, guards ...gin.HandlerFunc) {
	with := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc(nil), guards...), h)
	}
	g.GET(path, col.list)
	g.GET(path+"/:id", col.get)
	g.POST(path, with(col.create)...)
	g.PUT(path+"/:id", with(col.update)...)
	g.DELETE(path+"/:id", with(col.remove)...)
}

func (col *collection[T, P]) list(c *gin.Context) {
	docs, err := col.repo.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (col *collection[T, P]) get(c *gin.Context) {
	doc, err := col.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (col *collection[T, P]) prepare(p P, now time.Time) {
	p.NormalizeMedia(col.normalize)
	if s, ok := any(p).(slugger); ok {
		s.EnsureSlug()
	}
	if pub, ok := any(p).(publisher); ok {
		pub.Publish(now)
	}
	p.Stamps().Touch(now)
}

func (col *collection[T, P]) create(c *gin.Context) {
	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, err)
		return
	}
	p := P(&doc)
	p.SetID(uuid.NewString())
	*p.Stamps() = models.Timestamps{}
	col.prepare(p, col.now().UTC())

	if err := col.repo.Insert(c.Request.Context(), doc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (col *collection[T, P]) update(c *gin.Context) {
	id := c.Param("id")
	existing, err := col.repo.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, err)
		return
	}
	p := P(&doc)
	p.SetID(id)
	*p.Stamps() = *P(&existing).Stamps()
	col.prepare(p, col.now().UTC())

	if err := col.repo.Replace(c.Request.Context(), doc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (col *collection[T, P]) remove(c *gin.Context) {
	if err := col.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
