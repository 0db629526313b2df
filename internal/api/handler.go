// Package api is the gin HTTP surface of the site backend.
package api

import (
	"context"
	"time"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/brueckenwerk/cms/internal/notify"
)

// Pinger is implemented by storage backends that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of every route.
type Handler struct {
	docs      *content.Store
	media     *media.Service
	storage   Pinger
	tokens    *access.Tokens
	mailer    notify.Mailer
	maxUpload int64
	now       func() time.Time
}

// Deps are the collaborators passed to NewHandler. Storage and Mailer may be nil.
type Deps struct {
	Content        *content.Store
	Media          *media.Service
	Storage        Pinger
	Tokens         *access.Tokens
	Mailer         notify.Mailer
	MaxUploadBytes int64
}

func NewHandler(d Deps) *Handler {
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &Handler{
		docs:      d.Content,
		media:     d.Media,
		storage:   d.Storage,
		tokens:    d.Tokens,
		mailer:    d.Mailer,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}
