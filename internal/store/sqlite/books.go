package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worldmap/internal/store"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (c *Client) CreateBook(ctx context.Context, book string) error {
	_, err := c.db.ExecContext(ctx, `INSERT INTO books (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, book)
	if err != nil {
		return fmt.Errorf("creating book %q: %w", book, err)
	}
	return nil
}

func (c *Client) BookExists(ctx context.Context, book string) (bool, error) {
	return bookExists(ctx, c.db, book)
}

func (c *Client) Clear(ctx context.Context, book string) error {
	if err := requireBook(ctx, c.db, book); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM entries WHERE book = ?`, book); err != nil {
		return fmt.Errorf("clearing %q: %w", book, err)
	}
	return nil
}

func bookExists(ctx context.Context, q querier, book string) (bool, error) {
	var found string
	err := q.QueryRowContext(ctx, `SELECT name FROM books WHERE name = ?`, book).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
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
