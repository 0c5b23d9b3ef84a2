package locator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldmap/internal/graph"
	"worldmap/internal/store"
	"worldmap/internal/store/memory"
)

const (
	testBook  = "world"
	entryName = "[MapLocator]"
)

func ptr[T any](v T) *T { return &v }

func add(id, name, parent string) graph.Update {
	u := graph.Update{Op: graph.OpAddOrUpdate, ID: id, Patch: graph.Patch{Name: ptr(name)}}
	if parent != "" {
		u.ParentID = ptr(parent)
	}
	return u
}

func setup(t *testing.T, updates ...graph.Update) (*Builder, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	require.NoError(t, db.CreateBook(ctx, testBook))
	g := graph.New(db, nil)
	require.NoError(t, g.Initialize(ctx, testBook))
	require.NoError(t, g.ProcessUpdate(ctx, updates))
	return New(g, entryName, nil), db
}

func readLocator(t *testing.T, db *memory.Store) *store.Entry {
	t.Helper()
	e, err := db.Get(context.Background(), testBook, entryName)
	require.NoError(t, err)
	return e
}

func TestUpdateLocator_TownAndInn(t *testing.T) {
	b, db := setup(t,
		add("town_a", "Town A", ""),
		add("inn_1", "The Inn", "town_a"),
	)

	require.NoError(t, b.UpdateLocator(context.Background(), "inn_1"))

	summary, err := b.Build("inn_1")
	require.NoError(t, err)
	assert.Empty(t, summary.Siblings)
	assert.Empty(t, summary.Children)

	entry := readLocator(t, db)
	require.NotNil(t, entry)
	assert.True(t, entry.AlwaysInclude)
	assert.Equal(t, store.PrioritySystem, entry.Priority)

	want := "Location: Town A / The Inn\n" +
		"\nCurrent location:\n" +
		"{\n  \"name\": \"The Inn\"\n}\n"
	assert.Equal(t, want, entry.Content)
	assert.NotContains(t, entry.Content, "Nearby locations")
	assert.NotContains(t, entry.Content, "Places within")
}

func TestUpdateLocator_SiblingsAndChildren(t *testing.T) {
	ctx := context.Background()
	b, db := setup(t,
		add("town_a", "Town A", ""),
		add("inn_1", "The Inn", "town_a"),
		add("smithy", "Smithy", "town_a"),
		add("cellar", "Cellar", "inn_1"),
		graph.Update{Op: graph.OpAddOrUpdate, ID: "attic", Patch: graph.Patch{Name: ptr("Attic"), ParentID: ptr("inn_1"), Type: ptr("room")}},
	)

	require.NoError(t, b.UpdateLocator(ctx, "inn_1"))
	content := readLocator(t, db).Content

	assert.Contains(t, content, "Nearby locations:\n- Smithy [smithy]\n")
	assert.Contains(t, content, "Places within:\n- Attic (room) [attic]\n- Cellar [cellar]\n")
	assert.NotContains(t, content, "parentId")
	assert.Less(t, strings.Index(content, "Nearby locations"), strings.Index(content, "Places within"))

	require.NoError(t, b.UpdateLocator(ctx, "cellar"))
	content = readLocator(t, db).Content
	assert.True(t, strings.HasPrefix(content, "Location: Town A / The Inn / Cellar\n"), "locator is overwritten, not appended")
	assert.Equal(t, 1, strings.Count(content, "Location:"))
}

func TestUpdateLocator_SkipsUnknownNode(t *testing.T) {
	b, db := setup(t, add("town_a", "Town A", ""))

	require.NoError(t, b.UpdateLocator(context.Background(), "nowhere"))
	assert.Nil(t, readLocator(t, db))
}

func TestUpdateLocator_SkipsUnboundGraph(t *testing.T) {
	db := memory.New()
	b := New(graph.New(db, nil), entryName, nil)

	require.NoError(t, b.UpdateLocator(context.Background(), "inn_1"))
}

func TestUpdateLocator_CycleIsReported(t *testing.T) {
	b, db := setup(t,
		add("a", "A", "b"),
		add("b", "B", "a"),
	)

	err := b.UpdateLocator(context.Background(), "a")
	assert.ErrorIs(t, err, graph.ErrParentCycle)
	assert.Nil(t, readLocator(t, db))
}

func TestRender_RootNode(t *testing.T) {
	b, _ := setup(t,
		add("north", "North", ""),
		add("south", "South", ""),
	)
	summary, err := b.Build("north")
	require.NoError(t, err)
	require.Len(t, summary.Breadcrumb, 1)

	text, err := Render(summary)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Location: North\n"))
	assert.Contains(t, text, "Nearby locations:\n- South [south]\n")
}
