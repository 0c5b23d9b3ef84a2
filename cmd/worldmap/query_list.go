package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldmap/internal/graph"
)

func queryListCmd() *cobra.Command {
	var nodeType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every location in the book",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(cmd, nodeType)
		},
	}
	cmd.Flags().StringVar(&nodeType, "type", "", "Location type to filter")
	return cmd
}

func runQueryList(cmd *cobra.Command, nodeType string) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	nodes := s.engine.Graph().Nodes()
	printed := 0
	for _, node := range nodes {
		if nodeType != "" && node.Type != nodeType {
			continue
		}
		printNodeLine(node)
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(os.Stdout, "No locations found.")
	}
	return nil
}

func printNodeLine(node graph.Node) {
	parent := node.ParentID
	if parent == "" {
		parent = "-"
	}
	if node.Type != "" {
		fmt.Fprintf(os.Stdout, "%s (%s) [%s] parent=%s\n", node.Name, node.Type, node.ID, parent)
		return
	}
	fmt.Fprintf(os.Stdout, "%s [%s] parent=%s\n", node.Name, node.ID, parent)
}
