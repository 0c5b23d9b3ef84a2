package graph

import "fmt"

// Neighborhood is a consistent view of one node and its surroundings, taken
// under a single read lock.
type Neighborhood struct {
	Node       Node
	Breadcrumb []Node
	Siblings   []Node
	Children   []Node
}

func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sortedLocked()
}

func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// FindNodeByIDOrName tries an exact id first, then the first node (by id
// order) whose name matches exactly.
func (g *Graph) FindNodeByIDOrName(token string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if n, ok := g.nodes[token]; ok {
		return n.clone(), true
	}
	for _, n := range g.sortedLocked() {
		if n.Name == token {
			return n, true
		}
	}
	return Node{}, false
}

func (g *Graph) Children(id string) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.childrenLocked(id)
}

// Siblings returns the other nodes sharing id's parent. Root nodes are
// siblings of each other.
func (g *Graph) Siblings(id string) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.siblingsLocked(id)
}

// Breadcrumb returns the path from the topmost ancestor down to id. The walk
// stops at a node without a parent or whose parent is not cached, and fails
// with ErrParentCycle when a node repeats.
func (g *Graph) Breadcrumb(id string) ([]Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.breadcrumbLocked(id)
}

func (g *Graph) Neighborhood(id string) (Neighborhood, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	current, ok := g.nodes[id]
	if !ok {
		return Neighborhood{}, fmt.Errorf("%q: %w", id, ErrNodeNotFound)
	}
	path, err := g.breadcrumbLocked(id)
	if err != nil {
		return Neighborhood{}, err
	}
	return Neighborhood{
		Node:       current.clone(),
		Breadcrumb: path,
		Siblings:   g.siblingsLocked(id),
		Children:   g.childrenLocked(id),
	}, nil
}

func (g *Graph) childrenLocked(id string) []Node {
	out := []Node{}
	for _, n := range g.sortedLocked() {
		if n.ParentID == id && n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) siblingsLocked(id string) []Node {
	out := []Node{}
	current, ok := g.nodes[id]
	if !ok {
		return out
	}
	for _, n := range g.sortedLocked() {
		if n.ID != id && n.ParentID == current.ParentID {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) breadcrumbLocked(id string) ([]Node, error) {
	current, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrNodeNotFound)
	}

	visited := map[string]struct{}{id: {}}
	path := []Node{current.clone()}
	for current.ParentID != "" {
		parent, ok := g.nodes[current.ParentID]
		if !ok {
			break
		}
		if _, seen := visited[parent.ID]; seen {
			return nil, fmt.Errorf("walking parents of %q: %w at %q", id, ErrParentCycle, parent.ID)
		}
		visited[parent.ID] = struct{}{}
		path = append(path, parent.clone())
		current = parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
