// Package locator renders the situational summary for the player's current
// node and keeps it in a single always-included entry.
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"worldmap/internal/graph"
	"worldmap/internal/logging"
	"worldmap/internal/store"
)

type Summary struct {
	Current    graph.Node
	Breadcrumb []graph.Node
	Siblings   []graph.Node
	Children   []graph.Node
}

type Builder struct {
	graph     *graph.Graph
	entryName string
	logger    *zap.Logger
}

func New(g *graph.Graph, entryName string, logger *zap.Logger) *Builder {
	return &Builder{
		graph:     g,
		entryName: entryName,
		logger:    logging.OrNop(logger).Named("locator"),
	}
}

// Build gathers the summary for nodeID without touching the store.
func (b *Builder) Build(nodeID string) (Summary, error) {
	hood, err := b.graph.Neighborhood(nodeID)
	if err != nil {
		return Summary{}, err
	}
	sortByName(hood.Siblings)
	sortByName(hood.Children)

	return Summary{
		Current:    hood.Node,
		Breadcrumb: hood.Breadcrumb,
		Siblings:   hood.Siblings,
		Children:   hood.Children,
	}, nil
}

// UpdateLocator rebuilds the summary for nodeID and overwrites the locator
// entry. An unbound graph or unknown node is logged and skipped.
func (b *Builder) UpdateLocator(ctx context.Context, nodeID string) error {
	if !b.graph.IsInitialized() || b.graph.Store() == nil {
		b.logger.Warn("skipping locator update: no bound book", zap.String("node", nodeID))
		return nil
	}

	summary, err := b.Build(nodeID)
	if errors.Is(err, graph.ErrNodeNotFound) {
		b.logger.Warn("skipping locator update: unknown node", zap.String("node", nodeID))
		return nil
	}
	if err != nil {
		b.logger.Error("building locator summary", zap.String("node", nodeID), zap.Error(err))
		return err
	}

	text, err := Render(summary)
	if err != nil {
		return err
	}

	entry := store.Entry{
		Book:          b.graph.Book(),
		Name:          b.entryName,
		Content:       text,
		Keys:          []string{},
		AlwaysInclude: true,
		Priority:      store.PrioritySystem,
	}
	if err := store.Upsert(ctx, b.graph.Store(), entry); err != nil {
		b.logger.Error("writing locator entry", zap.String("entry", b.entryName), zap.Error(err))
		return fmt.Errorf("writing locator entry: %w", err)
	}

	b.logger.Debug("locator updated", zap.String("node", nodeID), zap.Int("depth", len(summary.Breadcrumb)))
	return nil
}

// Render formats s deterministically.
func Render(s Summary) (string, error) {
	names := make([]string, 0, len(s.Breadcrumb))
	for _, n := range s.Breadcrumb {
		names = append(names, n.Name)
	}

	current := s.Current
	current.ParentID = ""
	details, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding current location: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Location: %s\n", strings.Join(names, " / "))
	sb.WriteString("\nCurrent location:\n")
	sb.Write(details)
	sb.WriteString("\n")

	writeList(&sb, "Nearby locations", s.Siblings)
	writeList(&sb, "Places within", s.Children)

	return sb.String(), nil
}

func writeList(sb *strings.Builder, title string, nodes []graph.Node) {
	if len(nodes) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, n := range nodes {
		if n.Type != "" {
			fmt.Fprintf(sb, "- %s (%s) [%s]\n", n.Name, n.Type, n.ID)
			continue
		}
		fmt.Fprintf(sb, "- %s [%s]\n", n.Name, n.ID)
	}
}

func sortByName(nodes []graph.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}
