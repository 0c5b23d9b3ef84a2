package maptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"worldmap/internal/graph"
	"worldmap/internal/tools"
)

func (ts *Toolset) ready() error {
	if ts.graph == nil || !ts.graph.IsInitialized() {
		ts.logger.Warn("map tool called before the graph was initialized")
		return tools.Failf("The map is not initialized.")
	}
	return nil
}

func (ts *Toolset) update(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	updates, skipped, err := graph.DecodeUpdates(args["batch"])
	if err != nil {
		return "", tools.Failf("Invalid map update: %v", err)
	}
	for i, err := range skipped {
		ts.logger.Warn("skipping undecodable map update", zap.Int("index", i), zap.Error(err))
	}
	if err := ts.graph.ProcessUpdate(ctx, updates); err != nil {
		return "", fmt.Errorf("applying map update: %w", err)
	}
	return fmt.Sprintf("Applied %d map updates.", len(updates)), nil
}

// addOrUpdate treats empty optional arguments as unset, so a generator can
// skip a positional slot with "".
func (ts *Toolset) addOrUpdate(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	id, _ := args.String("id")
	if id == "" {
		return "", tools.Failf("A location id is required.")
	}

	var p graph.Patch
	set := func(name string, dst **string) {
		if v, ok := args.String(name); ok && v != "" {
			*dst = &v
		}
	}
	set("name", &p.Name)
	set("parentId", &p.ParentID)
	set("type", &p.Type)
	set("coords", &p.Coords)
	set("description", &p.Description)

	err := ts.graph.ProcessUpdate(ctx, []graph.Update{{Op: graph.OpAddOrUpdate, ID: id, Patch: p}})
	if errors.Is(err, graph.ErrNameRequired) {
		return "", tools.Failf("Location %q does not exist yet and needs a name.", id)
	}
	if err != nil {
		return "", err
	}
	node, _ := ts.graph.Node(id)
	return fmt.Sprintf("Location %q saved.", node.Name), nil
}

func (ts *Toolset) remove(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	id, _ := args.String("id")
	node, ok := ts.graph.Node(id)
	if !ok {
		return "", tools.Failf("Node %q not found.", id)
	}
	if err := ts.graph.ProcessUpdate(ctx, []graph.Update{{Op: graph.OpRemove, ID: id}}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Location %q removed.", node.Name), nil
}

func (ts *Toolset) updateDetail(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	id, _ := args.String("id")
	patch, err := graph.DecodePatch(args["fields"])
	if err != nil {
		return "", tools.Failf("Invalid fields for %q: %v", id, err)
	}
	node, err := ts.graph.UpdateDetail(ctx, id, patch)
	if errors.Is(err, graph.ErrNodeNotFound) {
		return "", tools.Failf("Node %q not found.", id)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Location %q updated.", node.Name), nil
}

func (ts *Toolset) addNPC(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	locationID, _ := args.String("locationId")
	npcID, _ := args.String("npcId")
	npcName, _ := args.String("npcName")
	if npcName == "" {
		npcName = npcID
	}

	err := ts.graph.AddNPC(ctx, locationID, graph.NPC{ID: npcID, Name: npcName})
	if errors.Is(err, graph.ErrNodeNotFound) {
		return "", tools.Failf("Node %q not found.", locationID)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is now at %s.", npcName, locationID), nil
}

func (ts *Toolset) removeNPC(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	locationID, _ := args.String("locationId")
	npcID, _ := args.String("npcId")

	err := ts.graph.RemoveNPC(ctx, locationID, npcID)
	if errors.Is(err, graph.ErrNodeNotFound) {
		return "", tools.Failf("Node %q not found.", locationID)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is no longer at %s.", npcID, locationID), nil
}

// moveNPC removes the NPC from every location that lists it, then adds it to
// the target. The name is kept from the first location it was found at.
func (ts *Toolset) moveNPC(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	npcID, _ := args.String("npcId")
	target, _ := args.String("locationId")
	if _, ok := ts.graph.Node(target); !ok {
		return "", tools.Failf("Node %q not found.", target)
	}

	npc := graph.NPC{ID: npcID, Name: npcID}
	found := false
	for _, n := range ts.graph.Nodes() {
		if !n.HasNPC(npcID) || n.ID == target {
			continue
		}
		for _, existing := range n.NPCs {
			if existing.ID == npcID && !found {
				npc = existing
				found = true
			}
		}
		if err := ts.graph.RemoveNPC(ctx, n.ID, npcID); err != nil {
			return "", err
		}
	}
	if err := ts.graph.AddNPC(ctx, target, npc); err != nil {
		return "", err
	}
	ts.logger.Debug("npc moved", zap.String("npc", npcID), zap.String("to", target))
	return fmt.Sprintf("%s moved to %s.", npc.Name, target), nil
}

func (ts *Toolset) moveTo(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	token, _ := args.String("location")
	node, ok := ts.graph.FindNodeByIDOrName(token)
	if !ok {
		return "", tools.Failf("Node %q not found.", token)
	}
	if ts.position == nil {
		return "", tools.Failf("Player position is not available.")
	}
	if err := ts.position.MoveTo(ctx, node.ID); err != nil {
		return "", fmt.Errorf("moving player to %q: %w", node.ID, err)
	}
	return fmt.Sprintf("Moved to %s.", node.Name), nil
}

func (ts *Toolset) describe(ctx context.Context, args tools.Args) (string, error) {
	if err := ts.ready(); err != nil {
		return "", err
	}
	token, _ := args.String("location")
	if token == "" && ts.position != nil {
		token = ts.position.Current()
	}
	if token == "" {
		return "", tools.Failf("No location given and the player has no position.")
	}
	node, ok := ts.graph.FindNodeByIDOrName(token)
	if !ok {
		return "", tools.Failf("Node %q not found.", token)
	}
	return describeNode(node, ts.graph.Children(node.ID)), nil
}

func describeNode(n graph.Node, children []graph.Node) string {
	var sb strings.Builder
	sb.WriteString(n.Name)
	if n.Type != "" {
		fmt.Fprintf(&sb, " (%s)", n.Type)
	}
	sb.WriteString("\n")
	if n.Description != "" {
		sb.WriteString(n.Description + "\n")
	}
	if n.Status != "" {
		fmt.Fprintf(&sb, "Status: %s\n", n.Status)
	}
	if len(n.NPCs) > 0 {
		names := make([]string, 0, len(n.NPCs))
		for _, npc := range n.NPCs {
			names = append(names, npc.Name)
		}
		fmt.Fprintf(&sb, "People here: %s\n", strings.Join(names, ", "))
	}
	if len(children) > 0 {
		names := make([]string, 0, len(children))
		for _, c := range children {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&sb, "Places within: %s\n", strings.Join(names, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}
