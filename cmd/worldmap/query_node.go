package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func queryNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node <id-or-name>",
		Short: "Display a location and its fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryNode(cmd, strings.Join(args, " "))
		},
	}
	return cmd
}

func runQueryNode(cmd *cobra.Command, token string) error {
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

	path, err := g.Breadcrumb(node.ID)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(path))
	for _, n := range path {
		names = append(names, n.Name)
	}

	fmt.Fprintf(os.Stdout, "ID: %s\n", node.ID)
	fmt.Fprintf(os.Stdout, "Name: %s\n", node.Name)
	fmt.Fprintf(os.Stdout, "Path: %s\n", strings.Join(names, " / "))
	printField("Type", node.Type)
	printField("Coords", node.Coords)
	printField("Status", node.Status)
	printField("Description", node.Description)
	printField("Illustration", node.Illustration)
	if node.ZoomThreshold != nil {
		fmt.Fprintf(os.Stdout, "Zoom threshold: %g\n", *node.ZoomThreshold)
	}
	if len(node.NPCs) > 0 {
		fmt.Fprintln(os.Stdout, "NPCs:")
		for _, npc := range node.NPCs {
			fmt.Fprintf(os.Stdout, "  - %s [%s]\n", npc.Name, npc.ID)
		}
	}
	return nil
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(os.Stdout, "%s: %s\n", label, value)
}
