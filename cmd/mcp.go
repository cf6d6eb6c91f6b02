package cmd

import (
	"github.com/schovi/htmlesc/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve escape, unescape and lookup as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Exposed tools: escape, unescape, lookup. Diagnostics are written to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	server := mcp.NewServer(mcp.NewToolRegistry(), currentVersion(),
		mcp.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
	)
	return server.Run()
}
