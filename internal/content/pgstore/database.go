// Package pgstore implements the content store on PostgreSQL, keeping each
// collection as a JSONB document table.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Table names.
const (
	ProjectsTable    = "projects"
	TeamMembersTable = "team_members"
	CoursesTable     = "courses"
	BlogPostsTable   = "blog_posts"
	UsersTable       = "users"
	MediaTable       = "media"
)

// Open connects with retry logic for serverless databases, verifies the
// schema and returns the Store.
func Open(ctx context.Context, dsn string) (*content.Store, error) {
	pool, err := Connect(ctx, dsn, 5, time.Second)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(ctx, pool); err != nil {
		log.Warn().Err(err).Msg("Content schema init failed")
	}
	return NewStore(pool), nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *content.Store {
	return &content.Store{
		Projects:    NewCollection[models.Project](pool, ProjectsTable),
		TeamMembers: NewCollection[models.TeamMember](pool, TeamMembersTable),
		Courses:     NewCollection[models.Course](pool, CoursesTable),
		BlogPosts:   NewCollection[models.BlogPost](pool, BlogPostsTable),
		Media:       &Media{pool: pool},
		Users:       &Users{Collection: NewCollection[models.User](pool, UsersTable)},
		Ping:        pool.Ping,
		Close: func(context.Context) error {
			pool.Close()
			log.Info().Msg("Database connection pool closed")
			return nil
		},
	}
}

// Connect creates a pool and pings it, retrying with exponential backoff
// (1s, 2s, 4s, ...) to ride out cold starts.
func Connect(ctx context.Context, dsn string, maxRetries int, initialDelay time.Duration) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Simple protocol keeps us compatible with transaction poolers.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Info().Int("attempt", attempt).Int("max", maxRetries).
			Str("host", poolConfig.ConnConfig.Host).Msg("Connecting to database")

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				log.Info().Int("attempt", attempt).Msg("Database connection established")
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("Database connection failed")

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}
