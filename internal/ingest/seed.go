package ingest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"worldmap/internal/graph"
)

// SeedFile is the yaml layout of a seed file. Children nest to set their
// parent implicitly.
type SeedFile struct {
	Nodes []SeedNode `yaml:"nodes"`
}

type SeedNode struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	ParentID      string      `yaml:"parent"`
	Type          string      `yaml:"type"`
	Coords        string      `yaml:"coords"`
	Description   string      `yaml:"description"`
	Illustration  string      `yaml:"illustration"`
	Status        string      `yaml:"status"`
	ZoomThreshold *float64    `yaml:"zoom_threshold"`
	NPCs          []graph.NPC `yaml:"npcs"`
	Children      []SeedNode  `yaml:"children"`
}

func parseSeed(data []byte) ([]graph.Update, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	var updates []graph.Update
	for i, n := range file.Nodes {
		var err error
		updates, err = flatten(updates, n, "", fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
	}
	return updates, nil
}

func flatten(out []graph.Update, n SeedNode, parent, where string) ([]graph.Update, error) {
	if n.ID == "" {
		return nil, fmt.Errorf("%s: id is required", where)
	}
	if n.ParentID == "" {
		n.ParentID = parent
	}
	out = append(out, graph.Update{Op: graph.OpAddOrUpdate, ID: n.ID, Patch: n.patch()})
	for i, child := range n.Children {
		var err error
		out, err = flatten(out, child, n.ID, fmt.Sprintf("%s.children[%d]", where, i))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// patch sets only the fields the seed spells out, so reseeding does not wipe
// details added later by commands.
func (n SeedNode) patch() graph.Patch {
	var p graph.Patch
	set := func(v string, dst **string) {
		if v != "" {
			*dst = &v
		}
	}
	set(n.Name, &p.Name)
	set(n.ParentID, &p.ParentID)
	set(n.Type, &p.Type)
	set(n.Coords, &p.Coords)
	set(n.Description, &p.Description)
	set(n.Illustration, &p.Illustration)
	set(n.Status, &p.Status)
	if n.ZoomThreshold != nil {
		v := *n.ZoomThreshold
		p.ZoomThreshold = &v
	}
	if len(n.NPCs) > 0 {
		p.NPCs = append([]graph.NPC{}, n.NPCs...)
	}
	return p
}
