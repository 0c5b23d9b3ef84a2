// Package graph keeps the in-memory location graph and writes every change
// through to the entry store.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"worldmap/internal/logging"
	"worldmap/internal/store"
)

var (
	ErrNotInitialized = errors.New("location graph is not initialized")
	ErrNodeNotFound   = errors.New("node not found")
	ErrNameRequired   = errors.New("name is required to create a node")
	ErrParentCycle    = errors.New("parent chain contains a cycle")
)

// Graph owns the node cache. Mutations return only after the entry store
// accepted the write; on a failed write the cache is left untouched.
type Graph struct {
	db     store.Store
	logger *zap.Logger

	mu          sync.RWMutex
	book        string
	initialized bool
	nodes       map[string]Node
}

func New(db store.Store, logger *zap.Logger) *Graph {
	return &Graph{
		db:     db,
		logger: logging.OrNop(logger).Named("graph"),
		nodes:  make(map[string]Node),
	}
}

// Initialize reloads the cache from every node entry in book. The graph is
// marked initialized only once loading succeeded.
func (g *Graph) Initialize(ctx context.Context, book string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initialized = false
	g.book = ""
	g.nodes = make(map[string]Node)

	if g.db == nil {
		g.logger.Warn("no entry store bound; location graph stays uninitialized")
		return ErrNotInitialized
	}

	entries, err := g.db.FindByPrefix(ctx, book, nodeEntryPrefix)
	if err != nil {
		g.logger.Error("loading node entries", zap.String("book", book), zap.Error(err))
		return fmt.Errorf("loading nodes from %q: %w", book, err)
	}

	for _, e := range entries {
		id, ok := NodeIDFromEntryName(e.Name)
		if !ok {
			g.logger.Warn("skipping entry with malformed node name", zap.String("entry", e.Name))
			continue
		}
		node, err := decodeNode(id, e.Content)
		if err != nil {
			g.logger.Warn("skipping unreadable node entry", zap.String("entry", e.Name), zap.Error(err))
			continue
		}
		g.nodes[id] = node
	}

	g.book = book
	g.initialized = true
	g.logger.Info("location graph loaded", zap.String("book", book), zap.Int("nodes", len(g.nodes)))
	return nil
}

func (g *Graph) IsInitialized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.initialized
}

// Book returns the bound book, or "" before initialization.
func (g *Graph) Book() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.book
}

func (g *Graph) Store() store.Store {
	return g.db
}

// ProcessUpdate applies each update in order. Items are independent: a
// failed item is reported in the joined error and does not undo earlier ones.
func (g *Graph) ProcessUpdate(ctx context.Context, updates []Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.initialized {
		g.logger.Warn("ignoring update batch on uninitialized graph", zap.Int("items", len(updates)))
		return ErrNotInitialized
	}

	var errs []error
	for i, u := range updates {
		if u.ID == "" {
			g.logger.Warn("skipping update without id", zap.Int("index", i), zap.String("op", u.Op))
			continue
		}

		var err error
		switch u.Op {
		case OpAddOrUpdate:
			_, err = g.upsertLocked(ctx, u.ID, u.Patch)
		case OpRemove:
			err = g.removeLocked(ctx, u.ID)
		default:
			g.logger.Warn("skipping update with unknown op", zap.Int("index", i), zap.String("op", u.Op), zap.String("id", u.ID))
			continue
		}
		if err != nil {
			g.logger.Error("update failed", zap.Int("index", i), zap.String("op", u.Op), zap.String("id", u.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s %q: %w", u.Op, u.ID, err))
		}
	}
	return errors.Join(errs...)
}

// UpdateDetail merges p into an existing node.
func (g *Graph) UpdateDetail(ctx context.Context, id string, p Patch) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.initialized {
		g.logger.Warn("ignoring detail update on uninitialized graph", zap.String("id", id))
		return Node{}, ErrNotInitialized
	}
	if _, ok := g.nodes[id]; !ok {
		g.logger.Warn("detail update for unknown node", zap.String("id", id))
		return Node{}, fmt.Errorf("%q: %w", id, ErrNodeNotFound)
	}
	return g.upsertLocked(ctx, id, p)
}

// AddNPC appends npc to the node unless an NPC with the same id is there.
func (g *Graph) AddNPC(ctx context.Context, id string, npc NPC) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, err := g.requireLocked(id)
	if err != nil {
		return err
	}
	if npc.ID == "" {
		return fmt.Errorf("adding npc to %q: npc id is required", id)
	}
	if node.HasNPC(npc.ID) {
		return nil
	}

	npcs := append(append([]NPC{}, node.NPCs...), npc)
	_, err = g.upsertLocked(ctx, id, Patch{NPCs: npcs})
	return err
}

// RemoveNPC drops the NPC from the node; an absent NPC is a no-op.
func (g *Graph) RemoveNPC(ctx context.Context, id, npcID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, err := g.requireLocked(id)
	if err != nil {
		return err
	}
	if !node.HasNPC(npcID) {
		return nil
	}

	npcs := make([]NPC, 0, len(node.NPCs))
	for _, npc := range node.NPCs {
		if npc.ID != npcID {
			npcs = append(npcs, npc)
		}
	}
	_, err = g.upsertLocked(ctx, id, Patch{NPCs: npcs})
	return err
}

func (g *Graph) requireLocked(id string) (Node, error) {
	if !g.initialized {
		g.logger.Warn("ignoring npc change on uninitialized graph", zap.String("id", id))
		return Node{}, ErrNotInitialized
	}
	node, ok := g.nodes[id]
	if !ok {
		g.logger.Warn("npc change for unknown node", zap.String("id", id))
		return Node{}, fmt.Errorf("%q: %w", id, ErrNodeNotFound)
	}
	return node, nil
}

func (g *Graph) upsertLocked(ctx context.Context, id string, p Patch) (Node, error) {
	prev, existed := g.nodes[id]
	if !existed && (p.Name == nil || *p.Name == "") {
		return Node{}, fmt.Errorf("%q: %w", id, ErrNameRequired)
	}

	next := prev.Merge(p)
	next.ID = id

	if err := g.persistLocked(ctx, next); err != nil {
		return Node{}, err
	}
	g.nodes[id] = next
	return next.clone(), nil
}

func (g *Graph) removeLocked(ctx context.Context, id string) error {
	if _, err := g.db.DeleteWhere(ctx, g.book, store.ByName(NodeEntryName(id))); err != nil {
		return fmt.Errorf("deleting node entry %q: %w", id, err)
	}
	delete(g.nodes, id)
	return nil
}

func (g *Graph) persistLocked(ctx context.Context, n Node) error {
	content, err := encodeNode(n)
	if err != nil {
		return err
	}

	name := NodeEntryName(n.ID)
	keys := []string{n.Name}
	updated, err := g.db.UpdateWhere(ctx, g.book, store.ByName(name), func(e *store.Entry) {
		e.Content = content
		e.Keys = keys
	})
	if err != nil {
		return fmt.Errorf("writing node entry %q: %w", n.ID, err)
	}
	if updated > 0 {
		return nil
	}

	err = g.db.Create(ctx, store.Entry{
		Book:     g.book,
		Name:     name,
		Content:  content,
		Keys:     keys,
		Priority: store.PriorityDefault,
	})
	if err != nil {
		return fmt.Errorf("creating node entry %q: %w", n.ID, err)
	}
	return nil
}

// sortedLocked returns cached nodes ordered by id, which is the iteration
// order every lookup in this package uses.
func (g *Graph) sortedLocked() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n.clone())
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}
