// Package memory is an in-process store.Store used by tests and the
// memory:// DSN.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"worldmap/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	books map[string]map[string]store.Entry
}

func New() *Store {
	return &Store{books: make(map[string]map[string]store.Entry)}
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *Store) CreateBook(ctx context.Context, book string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[book]; !ok {
		s.books[book] = make(map[string]store.Entry)
	}
	return nil
}

func (s *Store) BookExists(ctx context.Context, book string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.books[book]
	return ok, nil
}

func (s *Store) FindByPrefix(ctx context.Context, book, prefix string) ([]store.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.books[book]
	if !ok {
		return nil, fmt.Errorf("finding entries in %q: %w", book, store.ErrBookNotFound)
	}

	out := []store.Entry{}
	for name, e := range entries {
		if strings.HasPrefix(name, prefix) {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Get(ctx context.Context, book, name string) (*store.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.books[book]
	if !ok {
		return nil, fmt.Errorf("getting entry %q: %w", name, store.ErrBookNotFound)
	}
	e, ok := entries[name]
	if !ok {
		return nil, nil
	}
	out := clone(e)
	return &out, nil
}

func (s *Store) Create(ctx context.Context, e store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.books[e.Book]
	if !ok {
		return fmt.Errorf("creating entry %q: %w", e.Name, store.ErrBookNotFound)
	}
	if _, exists := entries[e.Name]; exists {
		return fmt.Errorf("creating entry %q: %w", e.Name, store.ErrEntryExists)
	}
	entries[e.Name] = clone(e)
	return nil
}

func (s *Store) UpdateWhere(ctx context.Context, book string, match store.Predicate, mutate store.Mutator) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.books[book]
	if !ok {
		return 0, fmt.Errorf("updating entries: %w", store.ErrBookNotFound)
	}

	updated := 0
	for name, e := range entries {
		if !match.Match(e) {
			continue
		}
		next := clone(e)
		mutate(&next)
		next.Book = book
		next.Name = name
		entries[name] = next
		updated++
	}
	return updated, nil
}

func (s *Store) DeleteWhere(ctx context.Context, book string, match store.Predicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.books[book]
	if !ok {
		return 0, fmt.Errorf("deleting entries: %w", store.ErrBookNotFound)
	}

	deleted := 0
	for name, e := range entries {
		if match.Match(e) {
			delete(entries, name)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Clear(ctx context.Context, book string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[book]; !ok {
		return fmt.Errorf("clearing %q: %w", book, store.ErrBookNotFound)
	}
	s.books[book] = make(map[string]store.Entry)
	return nil
}

func clone(e store.Entry) store.Entry {
	e.Keys = append([]string{}, e.Keys...)
	return e
}
