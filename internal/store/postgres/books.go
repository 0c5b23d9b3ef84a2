package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"worldmap/internal/store"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (c *Client) CreateBook(ctx context.Context, book string) error {
	if _, err := c.pool.Exec(ctx, `INSERT INTO books (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, book); err != nil {
		return fmt.Errorf("creating book %q: %w", book, err)
	}
	return nil
}

func (c *Client) BookExists(ctx context.Context, book string) (bool, error) {
	return bookExists(ctx, c.pool, book)
}

func (c *Client) Clear(ctx context.Context, book string) error {
	if err := requireBook(ctx, c.pool, book); err != nil {
		return err
	}
	if _, err := c.pool.Exec(ctx, `DELETE FROM entries WHERE book = $1`, book); err != nil {
		return fmt.Errorf("clearing %q: %w", book, err)
	}
	return nil
}

func bookExists(ctx context.Context, q querier, book string) (bool, error) {
	var found string
	err := q.QueryRow(ctx, `SELECT name FROM books WHERE name = $1`, book).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up book %q: %w", book, err)
	}
	return true, nil
}

func requireBook(ctx context.Context, q querier, book string) error {
	ok, err := bookExists(ctx, q, book)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", book, store.ErrBookNotFound)
	}
	return nil
}
