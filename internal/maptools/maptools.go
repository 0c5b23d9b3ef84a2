// Package maptools registers the Map command family: the tools a generator
// or an operator uses to edit the location graph and move the player.
package maptools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"worldmap/internal/graph"
	"worldmap/internal/logging"
	"worldmap/internal/tools"
)

const Module = "Map"

// Position is where the player currently is.
type Position interface {
	Current() string
	MoveTo(ctx context.Context, nodeID string) error
}

type Toolset struct {
	graph    *graph.Graph
	position Position
	logger   *zap.Logger
}

func New(g *graph.Graph, position Position, logger *zap.Logger) *Toolset {
	return &Toolset{
		graph:    g,
		position: position,
		logger:   logging.OrNop(logger).Named("maptools"),
	}
}

// Register adds every Map tool to r.
func Register(r *tools.Registry, ts *Toolset) error {
	var errs []error
	for _, t := range ts.Tools() {
		errs = append(errs, r.Register(t))
	}
	return errors.Join(errs...)
}

func (ts *Toolset) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Module:      Module,
			Name:        "Update",
			Description: "Apply a batch of add_or_update/remove operations",
			Parameters:  []string{"batch"},
			Schema: object([]string{"batch"}, map[string]*jsonschema.Schema{
				"batch": {Type: "array"},
			}),
			Action: ts.update,
		},
		{
			Module:      Module,
			Name:        "AddOrUpdate",
			Description: "Create a location or change its main fields",
			Parameters:  []string{"id", "name", "parentId", "type", "coords", "description"},
			Schema: object([]string{"id"}, map[string]*jsonschema.Schema{
				"id":          str(),
				"name":        str(),
				"parentId":    str(),
				"type":        str(),
				"coords":      str(),
				"description": str(),
			}),
			Action: ts.addOrUpdate,
		},
		{
			Module:      Module,
			Name:        "Remove",
			Description: "Delete a location",
			Parameters:  []string{"id"},
			Schema:      object([]string{"id"}, map[string]*jsonschema.Schema{"id": str()}),
			Action:      ts.remove,
		},
		{
			Module:      Module,
			Name:        "UpdateDetail",
			Description: "Merge a set of fields into an existing location",
			Parameters:  []string{"id", "fields"},
			Schema: object([]string{"id", "fields"}, map[string]*jsonschema.Schema{
				"id":     str(),
				"fields": {Type: "object"},
			}),
			Action: ts.updateDetail,
		},
		{
			Module:      Module,
			Name:        "AddNPC",
			Description: "Place an NPC at a location",
			Parameters:  []string{"locationId", "npcId", "npcName"},
			Schema: object([]string{"locationId", "npcId"}, map[string]*jsonschema.Schema{
				"locationId": str(),
				"npcId":      str(),
				"npcName":    str(),
			}),
			Action: ts.addNPC,
		},
		{
			Module:      Module,
			Name:        "RemoveNPC",
			Description: "Take an NPC away from a location",
			Parameters:  []string{"locationId", "npcId"},
			Schema: object([]string{"locationId", "npcId"}, map[string]*jsonschema.Schema{
				"locationId": str(),
				"npcId":      str(),
			}),
			Action: ts.removeNPC,
		},
		{
			Module:      Module,
			Name:        "MoveNPC",
			Description: "Move an NPC from wherever it is to another location",
			Parameters:  []string{"npcId", "locationId"},
			Schema: object([]string{"npcId", "locationId"}, map[string]*jsonschema.Schema{
				"npcId":      str(),
				"locationId": str(),
			}),
			Action: ts.moveNPC,
		},
		{
			Module:      Module,
			Name:        "MoveTo",
			Description: "Move the player to a location given by id or name",
			Parameters:  []string{"location"},
			Schema:      object([]string{"location"}, map[string]*jsonschema.Schema{"location": str()}),
			Action:      ts.moveTo,
		},
		{
			Module:      Module,
			Name:        "Describe",
			Description: "Describe a location given by id or name, or the current one",
			Parameters:  []string{"location"},
			Schema:      object(nil, map[string]*jsonschema.Schema{"location": str()}),
			Action:      ts.describe,
		},
	}
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Required: required, Properties: props}
}

func str() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"}
}
