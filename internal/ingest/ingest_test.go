package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"worldmap/internal/graph"
	"worldmap/internal/store/memory"
)

func newGraph(t *testing.T) *graph.Graph {
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
	return g
}

func TestRun_ImportsSeeds(t *testing.T) {
	g := newGraph(t)
	root := filepath.Join("testdata", "seeds")
	opts := Options{Exclude: []string{filepath.Join(root, "excluded")}}

	result, err := Run(context.Background(), g, []string{root}, opts, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.NodesUpserted != 5 || g.Len() != 5 {
		t.Fatalf("expected 5 nodes, got result=%d graph=%d", result.NodesUpserted, g.Len())
	}

	cellar, ok := g.Node("cellar")
	if !ok || cellar.ParentID != "inn_1" {
		t.Fatalf("nested child should take its parent from the tree: %+v", cellar)
	}
	inn, _ := g.Node("inn_1")
	want := graph.Node{
		ID:       "inn_1",
		Name:     "The Inn",
		ParentID: "town_a",
		Type:     "building",
		NPCs:     []graph.NPC{{ID: "bram", Name: "Bram"}},
	}
	if diff := cmp.Diff(want, inn); diff != "" {
		t.Fatalf("inn mismatch (-want +got):\n%s", diff)
	}
	forest, _ := g.Node("forest")
	if forest.ZoomThreshold == nil || *forest.ZoomThreshold != 1.5 {
		t.Fatalf("unexpected zoom threshold: %+v", forest.ZoomThreshold)
	}
	shrine, _ := g.Node("shrine")
	if shrine.ParentID != "forest" {
		t.Fatalf("explicit parent not applied: %+v", shrine)
	}
}

func TestRun_SkipsUnchangedFiles(t *testing.T) {
	g := newGraph(t)
	root := filepath.Join("testdata", "seeds")
	opts := Options{Exclude: []string{filepath.Join(root, "excluded")}}
	ctx := context.Background()

	if _, err := Run(ctx, g, []string{root}, opts, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := Run(ctx, g, []string{root}, opts, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.FilesSkipped != 2 || result.NodesUpserted != 0 {
		t.Fatalf("expected both files skipped, got %+v", result)
	}

	opts.Full = true
	result, err = Run(ctx, g, []string{root}, opts, nil)
	if err != nil {
		t.Fatalf("full run: %v", err)
	}
	if result.FilesSkipped != 0 || result.NodesUpserted != 5 {
		t.Fatalf("full run should reimport, got %+v", result)
	}
}

func TestRun_ReportsBadFiles(t *testing.T) {
	g := newGraph(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("nodes:\n  - name: nameless\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "orphan.yaml"), []byte("nodes:\n  - id: ghost\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := Run(context.Background(), g, []string{dir}, Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
	if g.Len() != 0 {
		t.Fatalf("expected nothing imported, got %d nodes", g.Len())
	}
}

func TestRun_Uninitialized(t *testing.T) {
	g := graph.New(memory.New(), nil)
	if _, err := Run(context.Background(), g, []string{"testdata"}, Options{}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
