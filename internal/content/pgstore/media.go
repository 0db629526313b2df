package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Media keeps the per-file side records in the media table.
type Media struct {
	pool *pgxpool.Pool
}

func (m *Media) List(ctx context.Context) ([]models.MediaMeta, error) {
	rows, err := m.pool.Query(ctx, `SELECT key, noindex, created_at, updated_at FROM media ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	out := []models.MediaMeta{}
	for rows.Next() {
		var meta models.MediaMeta
		if err := rows.Scan(&meta.Key, &meta.NoIndex, &meta.CreatedAt, &meta.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func (m *Media) Get(ctx context.Context, key string) (models.MediaMeta, error) {
	var meta models.MediaMeta
	err := m.pool.QueryRow(ctx, `SELECT key, noindex, created_at, updated_at FROM media WHERE key=$1`, key).
		Scan(&meta.Key, &meta.NoIndex, &meta.CreatedAt, &meta.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return meta, content.ErrNotFound
	}
	if err != nil {
		return meta, fmt.Errorf("get media %s: %w", key, err)
	}
	return meta, nil
}

func (m *Media) Upsert(ctx context.Context, key string) error {
	_, err := m.pool.Exec(ctx, `INSERT INTO media(key, noindex, created_at, updated_at) VALUES ($1, false, now(), now())
		ON CONFLICT (key) DO UPDATE SET updated_at=now()`, key)
	if err != nil {
		return fmt.Errorf("upsert media %s: %w", key, err)
	}
	return nil
}

func (m *Media) SetNoIndex(ctx context.Context, key string, noindex bool) error {
	_, err := m.pool.Exec(ctx, `INSERT INTO media(key, noindex, created_at, updated_at) VALUES ($1, $2, now(), now())
		ON CONFLICT (key) DO UPDATE SET noindex=EXCLUDED.noindex, updated_at=now()`, key, noindex)
	if err != nil {
		return fmt.Errorf("set noindex %s: %w", key, err)
	}
	return nil
}

func (m *Media) Delete(ctx context.Context, key string) error {
	tag, err := m.pool.Exec(ctx, `DELETE FROM media WHERE key=$1`, key)
	if err != nil {
		return fmt.Errorf("delete media %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}
