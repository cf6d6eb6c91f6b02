package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/schovi/htmlesc/internal/entity"
	"github.com/schovi/htmlesc/internal/textio"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>...",
	Short: "Show named character references",
	Long: `Show HTML4 named character references.

A query is a reference name in any common spelling (eacute, &eacute, &eacute;)
or a single character (é). Use --list to print the whole table.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if lookupListFlag {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runLookup,
}

var (
	lookupListFlag    bool
	lookupJsonFlag    bool
	lookupNoColorFlag bool
)

func init() {
	lookupCmd.Flags().BoolVar(&lookupListFlag, "list", false, "List every named reference")
	lookupCmd.Flags().BoolVar(&lookupJsonFlag, "json", false, "Output as JSON")
	lookupCmd.Flags().BoolVar(&lookupNoColorFlag, "no-color", false, "Disable colored output")
}

type lookupEntry struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
	CodePoint string `json:"code_point"`
	Character string `json:"character"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	table := entity.HTML4()

	var entries []entity.Entry
	if lookupListFlag {
		entries = table.Entries()
	} else {
		for _, q := range args {
			e, ok := table.Lookup(q)
			if !ok {
				return fmt.Errorf("no named reference for %q", q)
			}
			entries = append(entries, e)
		}
	}

	out := cmd.OutOrStdout()
	if lookupJsonFlag {
		list := make([]lookupEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, lookupEntry{
				Name:      e.Name,
				Reference: e.Reference(),
				CodePoint: e.CodePoint(),
				Character: string(e.Rune),
			})
		}
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	name := color.New(color.FgCyan, color.Bold)
	if lookupNoColorFlag || !textio.IsTerminal(out) {
		name.DisableColor()
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name.Sprint(e.Name), e.Reference(), e.CodePoint(), string(e.Rune))
	}
	return tw.Flush()
}
