// Package app builds the shared collaborators of every binary from Config.
package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/config"
	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/content/memstore"
	"github.com/brueckenwerk/cms/internal/content/mongostore"
	"github.com/brueckenwerk/cms/internal/content/pgstore"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/brueckenwerk/cms/internal/notify"
	"github.com/brueckenwerk/cms/internal/storage"
	"github.com/rs/zerolog/log"
)

// App holds the constructed dependencies.
type App struct {
	Config  *config.Config
	Content *content.Store
	Objects storage.ObjectStore
	Media   *media.Service
	Tokens  *access.Tokens
	// Mailer is nil when the contact form is not configured.
	Mailer notify.Mailer
}

// New opens the content store and object storage selected by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	docs, err := OpenContent(ctx, cfg)
	if err != nil {
		return nil, err
	}
	objects, err := OpenStorage(ctx, cfg)
	if err != nil {
		_ = docs.Close(ctx)
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Content: docs,
		Objects: objects,
		Media:   media.NewService(objects, docs, NewResolver(cfg)),
		Tokens:  access.NewTokens(cfg.JWTSecret, cfg.JWTExpiration()),
	}
	if cfg.ContactEnabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			_ = docs.Close(ctx)
			return nil, fmt.Errorf("load AWS config for SES: %w", err)
		}
		a.Mailer = notify.NewSESMailer(awsCfg, cfg.SESFromEmail, cfg.ContactRecipient)
	} else {
		log.Warn().Msg("SES_FROM_EMAIL or CONTACT_RECIPIENT not set, contact form disabled")
	}
	return a, nil
}

// Close releases the content store connection.
func (a *App) Close(ctx context.Context) {
	if err := a.Content.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Closing content store failed")
	}
}

// NewResolver derives the media resolver from cfg.
func NewResolver(cfg *config.Config) media.Resolver {
	return media.Resolver{
		MediaBaseURL: cfg.MediaBaseURL,
		Endpoint:     cfg.S3Endpoint,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
	}
}

// OpenContent connects the backend named by CONTENT_DRIVER.
func OpenContent(ctx context.Context, cfg *config.Config) (*content.Store, error) {
	switch cfg.ContentDriver {
	case "mongo":
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "postgres":
		return pgstore.Open(ctx, cfg.DatabaseURL)
	case "memory":
		log.Warn().Msg("Using in-memory content store, data is lost on restart")
		_, docs := memstore.New()
		return docs, nil
	default:
		return nil, fmt.Errorf("unknown content driver %q", cfg.ContentDriver)
	}
}

// OpenStorage builds the object store named by STORAGE_DRIVER.
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	case "memory":
		log.Warn().Msg("Using in-memory object storage, files are lost on restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
