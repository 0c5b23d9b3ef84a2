package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"worldmap/internal/store"
)

func (c *Client) FindByPrefix(ctx context.Context, book, prefix string) ([]store.Entry, error) {
	if err := requireBook(ctx, c.db, book); err != nil {
		return nil, err
	}

	query := `
	SELECT name, content, metadata
	FROM entries
	WHERE book = ?
	  AND substr(name, 1, length(?)) = ?
	ORDER BY name
	`

	rows, err := c.db.QueryContext(ctx, query, book, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("finding entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows, book)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Get(ctx context.Context, book, name string) (*store.Entry, error) {
	if err := requireBook(ctx, c.db, book); err != nil {
		return nil, err
	}

	var e store.Entry
	var metaBytes []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT name, content, metadata FROM entries WHERE book = ? AND name = ?`,
		book, name,
	).Scan(&e.Name, &e.Content, &metaBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry %q: %w", name, err)
	}
	e.Book = book
	if err := decodeMetadata(&e, metaBytes); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) Create(ctx context.Context, e store.Entry) error {
	metaJSON, err := json.Marshal(e.Metadata())
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireBook(ctx, tx, e.Book); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO entries (book, name, content, metadata, updated_at)
	VALUES (?, ?, ?, ?, datetime('now'))
	ON CONFLICT (book, name) DO NOTHING
	`, e.Book, e.Name, e.Content, metaJSON)
	if err != nil {
		return fmt.Errorf("creating entry %q: %w", e.Name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("creating entry %q: %w", e.Name, store.ErrEntryExists)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entry %q: %w", e.Name, err)
	}
	return nil
}

func (c *Client) UpdateWhere(ctx context.Context, book string, match store.Predicate, mutate store.Mutator) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	matched, err := matchEntries(ctx, tx, book, match)
	if err != nil {
		return 0, err
	}

	for _, e := range matched {
		name := e.Name
		mutate(&e)
		metaJSON, err := json.Marshal(e.Metadata())
		if err != nil {
			return 0, fmt.Errorf("marshaling metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
		UPDATE entries SET content = ?, metadata = ?, updated_at = datetime('now')
		WHERE book = ? AND name = ?
		`, e.Content, metaJSON, book, name)
		if err != nil {
			return 0, fmt.Errorf("updating entry %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing update: %w", err)
	}
	return len(matched), nil
}

func (c *Client) DeleteWhere(ctx context.Context, book string, match store.Predicate) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	matched, err := matchEntries(ctx, tx, book, match)
	if err != nil {
		return 0, err
	}

	for _, e := range matched {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE book = ? AND name = ?`, book, e.Name); err != nil {
			return 0, fmt.Errorf("deleting entry %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return len(matched), nil
}

func matchEntries(ctx context.Context, tx *sql.Tx, book string, match store.Predicate) ([]store.Entry, error) {
	if err := requireBook(ctx, tx, book); err != nil {
		return nil, err
	}

	var (
		rows *sql.Rows
		err  error
	)
	if name, ok := match.ExactName(); ok {
		rows, err = tx.QueryContext(ctx, `SELECT name, content, metadata FROM entries WHERE book = ? AND name = ?`, book, name)
	} else {
		rows, err = tx.QueryContext(ctx, `SELECT name, content, metadata FROM entries WHERE book = ? ORDER BY name`, book)
	}
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	all, err := scanEntries(rows, book)
	if err != nil {
		return nil, err
	}

	var matched []store.Entry
	for _, e := range all {
		if match.Match(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func scanEntries(rows *sql.Rows, book string) ([]store.Entry, error) {
	entries := []store.Entry{}
	for rows.Next() {
		var e store.Entry
		var metaBytes []byte
		if err := rows.Scan(&e.Name, &e.Content, &metaBytes); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Book = book
		if err := decodeMetadata(&e, metaBytes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

func decodeMetadata(e *store.Entry, raw []byte) error {
	var meta store.Metadata
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("unmarshaling metadata for %q: %w", e.Name, err)
		}
	}
	e.ApplyMetadata(meta)
	return nil
}
