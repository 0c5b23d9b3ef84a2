package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldmap/internal/graph"
	"worldmap/internal/locator"
	"worldmap/internal/tools"
)

type GetLocationInput struct {
	Location string `json:"location" jsonschema:"location id or exact name"`
}

type ListLocationsInput struct {
	Parent string `json:"parent,omitempty" jsonschema:"only locations directly inside this id"`
	Type   string `json:"type,omitempty" jsonschema:"location type filter"`
}

type BreadcrumbInput struct {
	Location string `json:"location" jsonschema:"location id or exact name"`
}

type GetLocatorInput struct {
	Location string `json:"location,omitempty" jsonschema:"location id or name; defaults to the player position"`
}

type ApplyCommandsInput struct {
	Text string `json:"text" jsonschema:"generated text containing command blocks"`
}

type InvokeToolInput struct {
	Module    string         `json:"module" jsonschema:"tool module, e.g. Map"`
	Name      string         `json:"name" jsonschema:"tool name, e.g. MoveTo"`
	Arguments map[string]any `json:"arguments,omitempty" jsonschema:"named tool arguments"`
}

type NPCOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LocationOutput struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	ParentID      string      `json:"parent_id,omitempty"`
	Type          string      `json:"type,omitempty"`
	Coords        string      `json:"coords,omitempty"`
	Description   string      `json:"description,omitempty"`
	Illustration  string      `json:"illustration,omitempty"`
	Status        string      `json:"status,omitempty"`
	NPCs          []NPCOutput `json:"npcs"`
	ZoomThreshold *float64    `json:"zoom_threshold,omitempty"`
}

type LocationSummaryOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Type     string `json:"type,omitempty"`
}

type ListLocationsOutput struct {
	Locations []LocationSummaryOutput `json:"locations"`
}

type BreadcrumbOutput struct {
	Path []LocationSummaryOutput `json:"path"`
}

type LocatorOutput struct {
	Location   string                  `json:"location"`
	Text       string                  `json:"text"`
	Breadcrumb []LocationSummaryOutput `json:"breadcrumb"`
	Siblings   []LocationSummaryOutput `json:"siblings"`
	Children   []LocationSummaryOutput `json:"children"`
}

type CommandResultOutput struct {
	Command string `json:"command"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ApplyCommandsOutput struct {
	PassID   string                `json:"pass_id"`
	Location string                `json:"location,omitempty"`
	Results  []CommandResultOutput `json:"results"`
}

type InvokeToolOutput struct {
	Result string `json:"result"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_location",
		Description: "Retrieve a location by id or name",
	}, s.handleGetLocation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_locations",
		Description: "List locations with optional parent and type filters",
	}, s.handleListLocations)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_breadcrumb",
		Description: "Return the path from the outermost region down to a location",
	}, s.handleGetBreadcrumb)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_locator",
		Description: "Return the situational summary for a location or the player position",
	}, s.handleGetLocator)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "apply_commands",
		Description: "Parse command blocks from text and apply them to the map",
	}, s.handleApplyCommands)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "invoke_tool",
		Description: "Call one map tool with named arguments",
	}, s.handleInvokeTool)
}

func (s *Server) handleGetLocation(ctx context.Context, req *sdk.CallToolRequest, input GetLocationInput) (*sdk.CallToolResult, LocationOutput, error) {
	if input.Location == "" {
		return nil, LocationOutput{}, fmt.Errorf("location is required")
	}
	node, ok := s.engine.Graph().FindNodeByIDOrName(input.Location)
	if !ok {
		return nil, LocationOutput{}, fmt.Errorf("location %q not found", input.Location)
	}
	return nil, locationOutputFromGraph(node), nil
}

func (s *Server) handleListLocations(ctx context.Context, req *sdk.CallToolRequest, input ListLocationsInput) (*sdk.CallToolResult, ListLocationsOutput, error) {
	nodes := s.engine.Graph().Nodes()
	if input.Parent != "" {
		nodes = s.engine.Graph().Children(input.Parent)
	}

	output := make([]LocationSummaryOutput, 0, len(nodes))
	for _, node := range nodes {
		if input.Type != "" && node.Type != input.Type {
			continue
		}
		output = append(output, summaryOutputFromGraph(node))
	}
	return nil, ListLocationsOutput{Locations: output}, nil
}

func (s *Server) handleGetBreadcrumb(ctx context.Context, req *sdk.CallToolRequest, input BreadcrumbInput) (*sdk.CallToolResult, BreadcrumbOutput, error) {
	node, ok := s.engine.Graph().FindNodeByIDOrName(input.Location)
	if !ok {
		return nil, BreadcrumbOutput{}, fmt.Errorf("location %q not found", input.Location)
	}
	path, err := s.engine.Graph().Breadcrumb(node.ID)
	if err != nil {
		return nil, BreadcrumbOutput{}, err
	}
	return nil, BreadcrumbOutput{Path: summariesFromGraph(path)}, nil
}

func (s *Server) handleGetLocator(ctx context.Context, req *sdk.CallToolRequest, input GetLocatorInput) (*sdk.CallToolResult, LocatorOutput, error) {
	id := s.engine.Position().Current()
	if input.Location != "" {
		node, ok := s.engine.Graph().FindNodeByIDOrName(input.Location)
		if !ok {
			return nil, LocatorOutput{}, fmt.Errorf("location %q not found", input.Location)
		}
		id = node.ID
	}
	if id == "" {
		return nil, LocatorOutput{}, fmt.Errorf("no location given and the player has no position")
	}

	summary, err := s.engine.Locator().Build(id)
	if err != nil {
		return nil, LocatorOutput{}, err
	}
	text, err := locator.Render(summary)
	if err != nil {
		return nil, LocatorOutput{}, err
	}
	return nil, LocatorOutput{
		Location:   id,
		Text:       text,
		Breadcrumb: summariesFromGraph(summary.Breadcrumb),
		Siblings:   summariesFromGraph(summary.Siblings),
		Children:   summariesFromGraph(summary.Children),
	}, nil
}

func (s *Server) handleApplyCommands(ctx context.Context, req *sdk.CallToolRequest, input ApplyCommandsInput) (*sdk.CallToolResult, ApplyCommandsOutput, error) {
	if input.Text == "" {
		return nil, ApplyCommandsOutput{}, fmt.Errorf("text is required")
	}
	report, err := s.engine.Process(ctx, input.Text)
	if err != nil {
		return nil, ApplyCommandsOutput{}, err
	}

	output := ApplyCommandsOutput{
		PassID:   report.PassID,
		Location: report.Location,
		Results:  make([]CommandResultOutput, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		item := CommandResultOutput{Command: res.Command.String(), Output: res.Output}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		output.Results = append(output.Results, item)
	}
	return nil, output, nil
}

func (s *Server) handleInvokeTool(ctx context.Context, req *sdk.CallToolRequest, input InvokeToolInput) (*sdk.CallToolResult, InvokeToolOutput, error) {
	if input.Module == "" || input.Name == "" {
		return nil, InvokeToolOutput{}, fmt.Errorf("module and name are required")
	}
	result := s.engine.Invoke(ctx, input.Module, input.Name, tools.Args(input.Arguments))
	return nil, InvokeToolOutput{Result: result}, nil
}

func locationOutputFromGraph(node graph.Node) LocationOutput {
	npcs := make([]NPCOutput, 0, len(node.NPCs))
	for _, npc := range node.NPCs {
		npcs = append(npcs, NPCOutput{ID: npc.ID, Name: npc.Name})
	}
	return LocationOutput{
		ID:            node.ID,
		Name:          node.Name,
		ParentID:      node.ParentID,
		Type:          node.Type,
		Coords:        node.Coords,
		Description:   node.Description,
		Illustration:  node.Illustration,
		Status:        node.Status,
		NPCs:          npcs,
		ZoomThreshold: node.ZoomThreshold,
	}
}

func summaryOutputFromGraph(node graph.Node) LocationSummaryOutput {
	return LocationSummaryOutput{
		ID:       node.ID,
		Name:     node.Name,
		ParentID: node.ParentID,
		Type:     node.Type,
	}
}

func summariesFromGraph(nodes []graph.Node) []LocationSummaryOutput {
	out := make([]LocationSummaryOutput, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, summaryOutputFromGraph(node))
	}
	return out
}
