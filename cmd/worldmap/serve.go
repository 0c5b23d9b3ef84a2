package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"worldmap/internal/engine"
	"worldmap/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var transcript string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, transcript)
		},
	}
	cmd.Flags().StringVar(&transcript, "watch", "", "Also apply commands appended to this transcript file")
	return cmd
}

func runServe(cmd *cobra.Command, transcript string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	server := mcp.NewServer(s.engine, version)
	if transcript == "" {
		return server.Run(ctx, &sdk.StdioTransport{})
	}

	w, err := engine.NewWatcher(ctx, s.engine, transcript, s.cfg.Debounce)
	if err != nil {
		return err
	}
	s.logger.Info("serving with transcript watch", zap.String("path", transcript))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(ctx) })
	g.Go(func() error {
		// the watcher stops with the group once the client disconnects
		defer stop()
		return server.Run(ctx, &sdk.StdioTransport{})
	})
	return g.Wait()
}
