package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"worldmap/internal/graph"
	"worldmap/internal/store/memory"
)

func ptr[T any](v T) *T { return &v }

func buildGraph(t *testing.T, updates ...graph.Update) *graph.Graph {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	if err := db.CreateBook(ctx, "world"); err != nil {
		t.Fatalf("create book: %v", err)
	}
	g := graph.New(db, nil)
	if err := g.Initialize(ctx, "world"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := g.ProcessUpdate(ctx, updates); err != nil {
		t.Fatalf("process update: %v", err)
	}
	return g
}

func node(id, name, parent string) graph.Update {
	u := graph.Update{Op: graph.OpAddOrUpdate, ID: id, Patch: graph.Patch{Name: ptr(name)}}
	if parent != "" {
		u.ParentID = ptr(parent)
	}
	return u
}

func codes(issues []Issue) map[string][]string {
	out := map[string][]string{}
	for _, issue := range issues {
		out[issue.Code] = append(out[issue.Code], issue.NodeID)
	}
	return out
}

func TestRun_CleanGraph(t *testing.T) {
	g := buildGraph(t,
		node("town_a", "Town A", ""),
		node("inn_1", "The Inn", "town_a"),
	)

	report, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}

func TestRun_ParentProblems(t *testing.T) {
	g := buildGraph(t,
		node("a", "A", "b"),
		node("b", "B", "a"),
		node("loner", "Loner", "loner"),
		node("lost", "Lost", "missing"),
	)

	report, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string][]string{
		codeParentCycle:    {"a", "b"},
		codeSelfParent:     {"loner"},
		codeDanglingParent: {"lost"},
	}
	if diff := cmp.Diff(want, codes(report.Issues)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if len(report.Errors()) != 3 || len(report.Warnings()) != 1 {
		t.Fatalf("unexpected severities: %d errors, %d warnings", len(report.Errors()), len(report.Warnings()))
	}
}

func TestRun_NamesCoordsAndNPCs(t *testing.T) {
	g := buildGraph(t,
		node("well_1", "Well", ""),
		node("well_2", "Well", ""),
		graph.Update{Op: graph.OpAddOrUpdate, ID: "farm", Patch: graph.Patch{Name: ptr("Farm"), Coords: ptr("1200,5")}},
		graph.Update{Op: graph.OpAddOrUpdate, ID: "mill", Patch: graph.Patch{Name: ptr("Mill"), Coords: ptr("40, 60")}},
		graph.Update{Op: graph.OpAddOrUpdate, ID: "barn", Patch: graph.Patch{Name: ptr("Barn"), Coords: ptr("north")}},
	)
	ctx := context.Background()
	for _, at := range []string{"farm", "mill"} {
		if err := g.AddNPC(ctx, at, graph.NPC{ID: "tom", Name: "Tom"}); err != nil {
			t.Fatalf("add npc: %v", err)
		}
	}

	report, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := codes(report.Issues)

	if len(got[codeDuplicateName]) != 2 {
		t.Fatalf("expected both wells reported, got %v", got[codeDuplicateName])
	}
	if len(got[codeInvalidCoords]) != 2 {
		t.Fatalf("expected farm and barn coords reported, got %v", got[codeInvalidCoords])
	}
	if len(got[codeNPCInManyPlaces]) != 1 || got[codeNPCInManyPlaces][0] != "tom" {
		t.Fatalf("unexpected npc issues: %v", got[codeNPCInManyPlaces])
	}
	if len(report.Errors()) != 0 {
		t.Fatalf("expected only warnings, got %+v", report.Errors())
	}
}

func TestRun_Uninitialized(t *testing.T) {
	_, err := Run(graph.New(memory.New(), nil))
	if !errors.Is(err, graph.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
