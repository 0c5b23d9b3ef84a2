package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"worldmap/internal/store"
)

// DefaultPlayerEntry holds the player's location between runs.
const DefaultPlayerEntry = "[MapPlayer]"

type positionRecord struct {
	Location string `json:"location"`
}

// Position is the player's current node, persisted in one entry of the
// bound book.
type Position struct {
	db        store.Store
	entryName string

	mu      sync.RWMutex
	book    string
	current string
}

func NewPosition(db store.Store, entryName string) *Position {
	if entryName == "" {
		entryName = DefaultPlayerEntry
	}
	return &Position{db: db, entryName: entryName}
}

// Load binds the position to book and reads the stored location, if any.
func (p *Position) Load(ctx context.Context, book string) error {
	entry, err := p.db.Get(ctx, book, p.entryName)
	if err != nil {
		return fmt.Errorf("reading player position: %w", err)
	}

	var rec positionRecord
	if entry != nil {
		if err := json.Unmarshal([]byte(entry.Content), &rec); err != nil {
			return fmt.Errorf("decoding player position: %w", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.book = book
	p.current = rec.Location
	return nil
}

func (p *Position) Current() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// MoveTo persists nodeID and then makes it current.
func (p *Position) MoveTo(ctx context.Context, nodeID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.book == "" {
		return fmt.Errorf("player position is not bound to a book")
	}
	data, err := json.Marshal(positionRecord{Location: nodeID})
	if err != nil {
		return err
	}
	entry := store.Entry{
		Book:     p.book,
		Name:     p.entryName,
		Content:  string(data),
		Keys:     []string{},
		Priority: store.PrioritySystem,
	}
	if err := store.Upsert(ctx, p.db, entry); err != nil {
		return fmt.Errorf("writing player position: %w", err)
	}
	p.current = nodeID
	return nil
}
