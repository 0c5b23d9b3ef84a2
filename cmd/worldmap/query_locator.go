package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldmap/internal/locator"
)

func queryLocatorCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "locator [id-or-name]",
		Short: "Print the situational summary for a location or the player position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			return runQueryLocator(cmd, token, write)
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Also store the summary in the locator entry")
	return cmd
}

func runQueryLocator(cmd *cobra.Command, token string, write bool) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	e := s.engine
	id := e.Position().Current()
	if token != "" {
		node, ok := e.Graph().FindNodeByIDOrName(token)
		if !ok {
			fmt.Fprintf(os.Stdout, "No location found for %q.\n", token)
			return nil
		}
		id = node.ID
	}
	if id == "" {
		fmt.Fprintln(os.Stdout, "The player has no position yet.")
		return nil
	}

	if write {
		if err := e.Locator().UpdateLocator(ctx, id); err != nil {
			return err
		}
	}

	summary, err := e.Locator().Build(id)
	if err != nil {
		return err
	}
	text, err := locator.Render(summary)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, text)
	return nil
}
