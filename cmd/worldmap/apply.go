package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [file]",
		Short: "Apply the commands found in a text file, or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runApply,
	}
	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	report, err := s.engine.Process(ctx, string(data))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(report.Results) == 0 {
		fmt.Fprintln(out, "No commands found.")
		return nil
	}
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(out, "  error %s: %v\n", res.Command, res.Err)
		case res.Output != "":
			fmt.Fprintf(out, "  ok    %s: %s\n", res.Command, res.Output)
		default:
			fmt.Fprintf(out, "  ok    %s\n", res.Command)
		}
	}
	if report.Location != "" {
		fmt.Fprintf(out, "Player is at %s.\n", report.Location)
	}
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(report.Results))
	}
	return nil
}
