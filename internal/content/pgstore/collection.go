package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Collection is a Repository over one JSONB document table.
type Collection[T models.Document] struct {
	pool  *pgxpool.Pool
	table string
}

func NewCollection[T models.Document](pool *pgxpool.Pool, table string) *Collection[T] {
	return &Collection[T]{pool: pool, table: table}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.pool.Query(ctx, fmt.Sprintf(`SELECT doc::text FROM %s ORDER BY created_at, id`, c.table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		var doc T
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.table, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.getOne(ctx, fmt.Sprintf(`SELECT doc::text FROM %s WHERE id=$1`, c.table), id)
}

func (c *Collection[T]) getOne(ctx context.Context, query string, arg any) (T, error) {
	var doc T
	var raw string
	err := c.pool.QueryRow(ctx, query, arg).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return doc, content.ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("get %s: %w", c.table, err)
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", c.table, err)
	}
	return doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = c.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, c.table), doc.DocID(), string(b))
	if isUniqueViolation(err) {
		return content.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.table, err)
	}
	return nil
}

func (c *Collection[T]) Replace(ctx context.Context, doc T) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tag, err := c.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET doc=$2::jsonb, updated_at=now() WHERE id=$1`, c.table), doc.DocID(), string(b))
	if isUniqueViolation(err) {
		return content.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("replace %s: %w", c.table, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, c.table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.table, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

// Users adds the case-insensitive email lookup.
type Users struct {
	*Collection[models.User]
}

func (u *Users) ByEmail(ctx context.Context, email string) (models.User, error) {
	return u.getOne(ctx, `SELECT doc::text FROM users WHERE lower(doc->>'email') = lower($1)`, email)
}
