package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the location graph from the CLI",
	}
	cmd.AddCommand(queryNodeCmd())
	cmd.AddCommand(queryListCmd())
	cmd.AddCommand(queryChildrenCmd())
	cmd.AddCommand(queryLocatorCmd())
	return cmd
}
