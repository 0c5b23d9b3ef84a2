package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worldmap/internal/engine"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <transcript>",
		Short: "Apply commands as they are appended to a transcript file",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	w, err := engine.NewWatcher(ctx, s.engine, args[0], s.cfg.Debounce)
	if err != nil {
		return err
	}
	s.logger.Info("watching transcript", zap.String("path", args[0]), zap.Duration("debounce", s.cfg.Debounce))
	return w.Run(ctx)
}
