package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEntryExists  = errors.New("entry already exists")
	ErrBookNotFound = errors.New("book not found")
)

// Store is the entry-based persistence layer the location graph writes
// through to. Entries are grouped into books and addressed by name.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	CreateBook(ctx context.Context, book string) error
	BookExists(ctx context.Context, book string) (bool, error)

	FindByPrefix(ctx context.Context, book, prefix string) ([]Entry, error)
	Get(ctx context.Context, book, name string) (*Entry, error)
	Create(ctx context.Context, e Entry) error
	UpdateWhere(ctx context.Context, book string, match Predicate, mutate Mutator) (int, error)
	DeleteWhere(ctx context.Context, book string, match Predicate) (int, error)
	Clear(ctx context.Context, book string) error
}

// Predicate selects entries. Predicates built by ByName also carry the
// exact name so adapters can look it up directly instead of scanning.
type Predicate struct {
	name  string
	exact bool
	fn    func(Entry) bool
}

func (p Predicate) Match(e Entry) bool {
	if p.exact {
		return e.Name == p.name
	}
	return p.fn != nil && p.fn(e)
}

// ExactName returns the entry name p is restricted to, if any.
func (p Predicate) ExactName() (string, bool) {
	return p.name, p.exact
}

type Mutator func(*Entry)

func ByName(name string) Predicate {
	return Predicate{name: name, exact: true}
}

func ByPrefix(prefix string) Predicate {
	return Where(func(e Entry) bool { return strings.HasPrefix(e.Name, prefix) })
}

func Where(fn func(Entry) bool) Predicate {
	return Predicate{fn: fn}
}

func SetContent(content string) Mutator {
	return func(e *Entry) { e.Content = content }
}

// Upsert overwrites the content of the named entry, creating it from
// template when it does not exist yet.
func Upsert(ctx context.Context, s Store, template Entry) error {
	n, err := s.UpdateWhere(ctx, template.Book, ByName(template.Name), SetContent(template.Content))
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return s.Create(ctx, template)
}
