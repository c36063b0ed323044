package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/felixgeelhaar/pymastery/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve lessons and validation to editors over MCP",
		Long: `Start an MCP server on stdio (default) or HTTP.

Add to your editor's MCP configuration:
  {"mcpServers": {"pymastery": {"command": "pymastery", "args": ["mcp"]}}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcpserver.NewServer(mcpserver.Config{
				Practice:  a.Practice,
				LearnerID: learner,
				Version:   Version,
			})

			if addr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", addr)
				return srv.ServeHTTP(cmd.Context(), addr)
			}
			return srv.ServeStdio(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "Serve over HTTP on this address instead of stdio")
	return cmd
}
