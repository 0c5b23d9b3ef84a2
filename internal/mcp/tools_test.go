package mcp

import (
	"context"
	"strings"
	"testing"

	"worldmap/internal/engine"
	"worldmap/internal/store/memory"
)

const seedText = `<command>[Map.Update([
{"op":"add_or_update","id":"town_a","name":"Town A","type":"city"},
{"op":"add_or_update","id":"inn_1","parentId":"town_a","name":"The Inn","type":"building"},
{"op":"add_or_update","id":"smithy","parentId":"town_a","name":"Smithy","type":"building"}
])][Map.AddNPC("inn_1","bram","Bram")][Map.MoveTo("inn_1")]</command>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	e, err := engine.New(memory.New(), engine.Options{Book: "world"}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if err := e.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := e.Process(ctx, seedText); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewServer(e, "test")
}

func TestGetLocation(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGetLocation(context.Background(), nil, GetLocationInput{Location: "The Inn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.ID != "inn_1" || output.ParentID != "town_a" {
		t.Fatalf("unexpected location output: %+v", output)
	}
	if len(output.NPCs) != 1 || output.NPCs[0].Name != "Bram" {
		t.Fatalf("unexpected npcs: %+v", output.NPCs)
	}
}

func TestGetLocation_NotFound(t *testing.T) {
	server := newTestServer(t)

	_, _, err := server.handleGetLocation(context.Background(), nil, GetLocationInput{Location: "Missing"})
	if err == nil {
		t.Fatalf("expected error")
	}
	_, _, err = server.handleGetLocation(context.Background(), nil, GetLocationInput{})
	if err == nil {
		t.Fatalf("expected error for empty location")
	}
}

func TestListLocations(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleListLocations(context.Background(), nil, ListLocationsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Locations) != 3 {
		t.Fatalf("expected 3 locations, got %+v", output.Locations)
	}

	_, output, err = server.handleListLocations(context.Background(), nil, ListLocationsInput{Parent: "town_a", Type: "building"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Locations) != 2 || output.Locations[0].ID != "inn_1" || output.Locations[1].ID != "smithy" {
		t.Fatalf("unexpected filtered output: %+v", output.Locations)
	}
}

func TestGetBreadcrumb(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGetBreadcrumb(context.Background(), nil, BreadcrumbInput{Location: "inn_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Path) != 2 || output.Path[0].ID != "town_a" || output.Path[1].ID != "inn_1" {
		t.Fatalf("unexpected path: %+v", output.Path)
	}
}

func TestGetLocator_DefaultsToPlayerPosition(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGetLocator(context.Background(), nil, GetLocatorInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Location != "inn_1" {
		t.Fatalf("expected player location, got %q", output.Location)
	}
	if !strings.HasPrefix(output.Text, "Location: Town A / The Inn\n") {
		t.Fatalf("unexpected locator text: %q", output.Text)
	}
	if len(output.Siblings) != 1 || output.Siblings[0].Name != "Smithy" {
		t.Fatalf("unexpected siblings: %+v", output.Siblings)
	}
	if len(output.Children) != 0 {
		t.Fatalf("unexpected children: %+v", output.Children)
	}
}

func TestApplyCommands(t *testing.T) {
	server := newTestServer(t)

	text := `<command>[Map.AddOrUpdate("cellar","Cellar","inn_1")][Map.Nope()]</command>`
	_, output, err := server.handleApplyCommands(context.Background(), nil, ApplyCommandsInput{Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.PassID == "" || len(output.Results) != 2 {
		t.Fatalf("unexpected apply output: %+v", output)
	}
	if output.Results[0].Error != "" || output.Results[1].Error == "" {
		t.Fatalf("unexpected results: %+v", output.Results)
	}
	if _, ok := server.engine.Graph().Node("cellar"); !ok {
		t.Fatalf("expected cellar to exist")
	}
}

func TestInvokeTool(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleInvokeTool(context.Background(), nil, InvokeToolInput{
		Module:    "Map",
		Name:      "MoveTo",
		Arguments: map[string]any{"location": "Nowhere"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Result != `Error: Node "Nowhere" not found.` {
		t.Fatalf("unexpected result: %q", output.Result)
	}

	_, output, err = server.handleInvokeTool(context.Background(), nil, InvokeToolInput{
		Module:    "Map",
		Name:      "MoveTo",
		Arguments: map[string]any{"location": "Smithy"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Result != "Moved to Smithy." || server.engine.Position().Current() != "smithy" {
		t.Fatalf("unexpected move result: %q", output.Result)
	}
}
