package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "htmlesc",
	Short: "Escape and unescape HTML character references",
	Long: `htmlesc converts text to and from its HTML-safe form using named (&amp;),
decimal (&#38;) and hexadecimal (&#x26;) character references.

Quick start:
  htmlesc escape '<b>café</b>'            # &lt;b&gt;caf&eacute;&lt;/b&gt;
  htmlesc unescape 'caf&eacute; &#x41;'   # café A
  htmlesc lookup eacute                   # show a named reference
  cat page.txt | htmlesc escape           # read from stdin
  htmlesc mcp                             # serve the tools over MCP (stdio)`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(escapeCmd)
	rootCmd.AddCommand(unescapeCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}
