package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	OpAddOrUpdate = "add_or_update"
	OpRemove      = "remove"

	nodeEntryPrefix = "[MapNode:"
	nodeEntrySuffix = "]"
)

type NPC struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Node is one place in the world. ID travels in the entry name, not the
// serialized content.
type Node struct {
	ID            string   `json:"-"`
	Name          string   `json:"name"`
	ParentID      string   `json:"parentId,omitempty"`
	Type          string   `json:"type,omitempty"`
	Coords        string   `json:"coords,omitempty"`
	Description   string   `json:"description,omitempty"`
	Illustration  string   `json:"illustration,omitempty"`
	Status        string   `json:"status,omitempty"`
	NPCs          []NPC    `json:"npcs,omitempty"`
	ZoomThreshold *float64 `json:"zoomThreshold,omitempty"`
}

// Patch holds the fields an update sets. Nil means leave unchanged.
type Patch struct {
	Name          *string  `json:"name,omitempty"`
	ParentID      *string  `json:"parentId,omitempty"`
	Type          *string  `json:"type,omitempty"`
	Coords        *string  `json:"coords,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Illustration  *string  `json:"illustration,omitempty"`
	Status        *string  `json:"status,omitempty"`
	NPCs          []NPC    `json:"npcs,omitempty"`
	ZoomThreshold *float64 `json:"zoomThreshold,omitempty"`
}

type Update struct {
	Op string `json:"op"`
	ID string `json:"id"`
	Patch
}

func NodeEntryName(id string) string {
	return nodeEntryPrefix + id + nodeEntrySuffix
}

func NodeIDFromEntryName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, nodeEntryPrefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, nodeEntrySuffix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Merge returns n with every field set in p applied. An empty name counts as
// unset since every node keeps a name. NPCs are deduplicated by id, first
// occurrence wins.
func (n Node) Merge(p Patch) Node {
	out := n.clone()
	if p.Name != nil && *p.Name != "" {
		out.Name = *p.Name
	}
	if p.ParentID != nil {
		out.ParentID = *p.ParentID
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Coords != nil {
		out.Coords = *p.Coords
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Illustration != nil {
		out.Illustration = *p.Illustration
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.NPCs != nil {
		out.NPCs = dedupeNPCs(p.NPCs)
		if len(out.NPCs) == 0 {
			out.NPCs = nil
		}
	}
	if p.ZoomThreshold != nil {
		v := *p.ZoomThreshold
		out.ZoomThreshold = &v
	}
	return out
}

func (n Node) HasNPC(id string) bool {
	for _, npc := range n.NPCs {
		if npc.ID == id {
			return true
		}
	}
	return false
}

func (n Node) clone() Node {
	if n.NPCs != nil {
		n.NPCs = append([]NPC{}, n.NPCs...)
	}
	if n.ZoomThreshold != nil {
		v := *n.ZoomThreshold
		n.ZoomThreshold = &v
	}
	return n
}

func dedupeNPCs(npcs []NPC) []NPC {
	seen := make(map[string]struct{}, len(npcs))
	out := make([]NPC, 0, len(npcs))
	for _, npc := range npcs {
		if _, ok := seen[npc.ID]; ok {
			continue
		}
		seen[npc.ID] = struct{}{}
		out = append(out, npc)
	}
	return out
}

func encodeNode(n Node) (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("encoding node %q: %w", n.ID, err)
	}
	return string(data), nil
}

func decodeNode(id, content string) (Node, error) {
	var n Node
	if err := json.Unmarshal([]byte(content), &n); err != nil {
		return Node{}, fmt.Errorf("decoding node %q: %w", id, err)
	}
	n.ID = id
	n.NPCs = dedupeNPCs(n.NPCs)
	if len(n.NPCs) == 0 {
		n.NPCs = nil
	}
	return n, nil
}

// DecodeUpdates converts a batch of loosely typed JSON values, as produced by
// the command parser, into updates. Each item is decoded on its own: an item
// that does not fit is left out and reported in skipped, keyed by its index.
// Only a batch that is not a list fails as a whole.
func DecodeUpdates(value any) (updates []Update, skipped map[int]error, err error) {
	items, ok := value.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("decoding updates: expected a list, got %T", value)
	}

	updates = make([]Update, 0, len(items))
	for i, item := range items {
		u, err := decodeUpdate(item)
		if err != nil {
			if skipped == nil {
				skipped = make(map[int]error)
			}
			skipped[i] = err
			continue
		}
		updates = append(updates, u)
	}
	return updates, skipped, nil
}

func decodeUpdate(item any) (Update, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return Update{}, fmt.Errorf("encoding update: %w", err)
	}
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("decoding update: %w", err)
	}
	return u, nil
}

func DecodePatch(value any) (Patch, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Patch{}, fmt.Errorf("encoding patch: %w", err)
	}
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return Patch{}, fmt.Errorf("decoding patch: %w", err)
	}
	return p, nil
}
