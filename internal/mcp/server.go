package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldmap/internal/engine"
)

type Server struct {
	engine *engine.Engine
	mcp    *sdk.Server
}

func NewServer(e *engine.Engine, version string) *Server {
	s := &Server{
		engine: e,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldmap",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
