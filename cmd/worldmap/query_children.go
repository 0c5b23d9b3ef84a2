package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func queryChildrenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "children <id-or-name>",
		Short: "List the locations directly inside another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryChildren(cmd, args[0])
		},
	}
	return cmd
}

func runQueryChildren(cmd *cobra.Command, token string) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	g := s.engine.Graph()
	node, ok := g.FindNodeByIDOrName(token)
	if !ok {
		fmt.Fprintf(os.Stdout, "No location found for %q.\n", token)
		return nil
	}

	children := g.Children(node.ID)
	if len(children) == 0 {
		fmt.Fprintf(os.Stdout, "%s has no places within.\n", node.Name)
		return nil
	}
	for _, child := range children {
		printNodeLine(child)
	}
	return nil
}
