package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func documentTable(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`, name)
}

// InitSchema creates the document tables and the media side table.
// Idempotent; safe to call at every startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("nil pool")
	}

	stmts := []string{
		documentTable(ProjectsTable),
		documentTable(TeamMembersTable),
		documentTable(CoursesTable),
		documentTable(BlogPostsTable),
		documentTable(UsersTable),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users ((lower(doc->>'email')));`,
		`CREATE TABLE IF NOT EXISTS media (
			key TEXT PRIMARY KEY,
			noindex BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range stmts {
		if _, err := tx.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	log.Info().Msg("Content schema verified")
	return nil
}
