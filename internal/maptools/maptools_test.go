package maptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldmap/internal/graph"
	"worldmap/internal/parser"
	"worldmap/internal/store/memory"
	"worldmap/internal/tools"
)

type fakePosition struct {
	current string
}

func (p *fakePosition) Current() string { return p.current }

func (p *fakePosition) MoveTo(ctx context.Context, nodeID string) error {
	p.current = nodeID
	return nil
}

func setup(t *testing.T) (*tools.Dispatcher, *graph.Graph, *fakePosition) {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	require.NoError(t, db.CreateBook(ctx, "world"))
	g := graph.New(db, nil)
	require.NoError(t, g.Initialize(ctx, "world"))

	pos := &fakePosition{}
	registry := tools.NewRegistry()
	require.NoError(t, Register(registry, New(g, pos, nil)))
	return tools.NewDispatcher(registry, nil), g, pos
}

func run(t *testing.T, d *tools.Dispatcher, function string, args ...any) tools.Result {
	t.Helper()
	if args == nil {
		args = []any{}
	}
	return d.Dispatch(context.Background(), parser.Command{Module: Module, Function: function, Args: args})
}

func TestRegister_RejectsSecondRegistration(t *testing.T) {
	registry := tools.NewRegistry()
	ts := New(nil, nil, nil)
	require.NoError(t, Register(registry, ts))
	assert.ErrorIs(t, Register(registry, ts), tools.ErrDuplicateTool)
}

func TestUpdate(t *testing.T) {
	d, g, _ := setup(t)

	batch := []any{
		map[string]any{"op": "add_or_update", "id": "town_a", "name": "Town A", "type": "city"},
		map[string]any{"op": "add_or_update", "id": "inn_1", "parentId": "town_a", "name": "The Inn"},
	}
	res := run(t, d, "Update", batch)
	require.NoError(t, res.Err)
	assert.Equal(t, "Applied 2 map updates.", res.Output)

	inn, ok := g.Node("inn_1")
	require.True(t, ok)
	assert.Equal(t, "town_a", inn.ParentID)

	res = run(t, d, "Update", "not a batch")
	assert.ErrorIs(t, res.Err, tools.ErrInvalidArguments)
}

func TestUpdate_BadItemDoesNotDropTheBatch(t *testing.T) {
	d, g, _ := setup(t)

	var batch []any
	require.NoError(t, json.Unmarshal([]byte(`[
		{"op":"add_or_update","id":"town_a","name":"Town A"},
		{"op":"add_or_update","id":"inn_1","name":"Inn","zoomThreshold":"5"},
		{"op":"add_or_update","id":7,"name":"Seven"},
		{"op":"add_or_update","id":"x","name":"X","parentId":"town_a"}
	]`), &batch))

	res := run(t, d, "Update", batch)
	require.NoError(t, res.Err)
	assert.Equal(t, "Applied 2 map updates.", res.Output)

	_, ok := g.Node("town_a")
	assert.True(t, ok)
	x, ok := g.Node("x")
	require.True(t, ok)
	assert.Equal(t, "town_a", x.ParentID)
	_, ok = g.Node("inn_1")
	assert.False(t, ok)
	assert.Equal(t, 2, g.Len())
}

func TestAddOrUpdate(t *testing.T) {
	d, g, _ := setup(t)

	res := run(t, d, "AddOrUpdate", "tavern", "The Tavern", "", "building", "120,80", "Smoky.")
	require.NoError(t, res.Err)

	node, ok := g.Node("tavern")
	require.True(t, ok)
	assert.Equal(t, "", node.ParentID)
	assert.Equal(t, "building", node.Type)
	assert.Equal(t, "120,80", node.Coords)

	res = run(t, d, "AddOrUpdate", "tavern", "", "", "", "", "Quiet now.")
	require.NoError(t, res.Err)
	node, _ = g.Node("tavern")
	assert.Equal(t, "The Tavern", node.Name)
	assert.Equal(t, "Quiet now.", node.Description)

	res = run(t, d, "AddOrUpdate", "nameless")
	var failure *tools.Failure
	require.ErrorAs(t, res.Err, &failure)
	assert.Contains(t, failure.Message, "needs a name")
}

func TestRemove(t *testing.T) {
	d, g, _ := setup(t)
	require.NoError(t, run(t, d, "AddOrUpdate", "cave", "Cave").Err)

	require.NoError(t, run(t, d, "Remove", "cave").Err)
	_, ok := g.FindNodeByIDOrName("Cave")
	assert.False(t, ok)

	out := d.Invoke(context.Background(), Module, "Remove", tools.Args{"id": "cave"})
	assert.Equal(t, `Error: Node "cave" not found.`, out)
}

func TestUpdateDetail(t *testing.T) {
	d, g, _ := setup(t)
	require.NoError(t, run(t, d, "AddOrUpdate", "gate", "North Gate").Err)

	res := run(t, d, "UpdateDetail", "gate", map[string]any{"status": "closed", "zoomThreshold": 2.5})
	require.NoError(t, res.Err)
	node, _ := g.Node("gate")
	assert.Equal(t, "closed", node.Status)
	require.NotNil(t, node.ZoomThreshold)
	assert.Equal(t, 2.5, *node.ZoomThreshold)

	out := d.Invoke(context.Background(), Module, "UpdateDetail", tools.Args{"id": "X", "fields": map[string]any{}})
	assert.Equal(t, `Error: Node "X" not found.`, out)
}

func TestNPCs(t *testing.T) {
	d, g, _ := setup(t)
	require.NoError(t, run(t, d, "AddOrUpdate", "inn", "Inn").Err)
	require.NoError(t, run(t, d, "AddOrUpdate", "market", "Market").Err)

	require.NoError(t, run(t, d, "AddNPC", "inn", "bram", "Bram").Err)
	require.NoError(t, run(t, d, "AddNPC", "inn", "bram", "Bram").Err)
	inn, _ := g.Node("inn")
	assert.Equal(t, []graph.NPC{{ID: "bram", Name: "Bram"}}, inn.NPCs)

	require.NoError(t, run(t, d, "RemoveNPC", "inn", "nobody").Err)

	require.NoError(t, run(t, d, "MoveNPC", "bram", "market").Err)
	inn, _ = g.Node("inn")
	market, _ := g.Node("market")
	assert.Empty(t, inn.NPCs)
	assert.Equal(t, []graph.NPC{{ID: "bram", Name: "Bram"}}, market.NPCs)

	require.NoError(t, run(t, d, "RemoveNPC", "market", "bram").Err)
	market, _ = g.Node("market")
	assert.Empty(t, market.NPCs)

	out := d.Invoke(context.Background(), Module, "AddNPC", tools.Args{"locationId": "void", "npcId": "x"})
	assert.Equal(t, `Error: Node "void" not found.`, out)
}

func TestMoveToAndDescribe(t *testing.T) {
	d, _, pos := setup(t)
	require.NoError(t, run(t, d, "AddOrUpdate", "town_a", "Town A", "", "city", "", "A market town.").Err)
	require.NoError(t, run(t, d, "AddOrUpdate", "inn_1", "The Inn", "town_a").Err)

	res := run(t, d, "MoveTo", "Town A")
	require.NoError(t, res.Err)
	assert.Equal(t, "town_a", pos.current)
	assert.Equal(t, "Moved to Town A.", res.Output)

	out := d.Invoke(context.Background(), Module, "Describe", tools.Args{})
	assert.Equal(t, "Town A (city)\nA market town.\nPlaces within: The Inn", out)

	out = d.Invoke(context.Background(), Module, "MoveTo", tools.Args{"location": "Atlantis"})
	assert.Equal(t, `Error: Node "Atlantis" not found.`, out)
	assert.Equal(t, "town_a", pos.current)
}

func TestUninitializedGraph(t *testing.T) {
	registry := tools.NewRegistry()
	require.NoError(t, Register(registry, New(graph.New(memory.New(), nil), &fakePosition{}, nil)))
	d := tools.NewDispatcher(registry, nil)

	out := d.Invoke(context.Background(), Module, "MoveTo", tools.Args{"location": "anywhere"})
	assert.Equal(t, "Error: The map is not initialized.", out)
}
