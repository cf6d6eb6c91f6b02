package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/schovi/htmlesc/internal/escape"
	"github.com/schovi/htmlesc/internal/textio"
	"github.com/schovi/htmlesc/internal/vterm"
	"github.com/spf13/cobra"
)

var escapeCmd = &cobra.Command{
	Use:   "escape [text...]",
	Short: "Escape text for HTML",
	Long: `Escape text so it can be embedded in HTML.

Arguments are joined with spaces. Without arguments, stdin is read.

Characters that have an HTML4 name are written as named references
(&lt; &quot; &eacute;). Other non-ASCII characters and < > " ' & are written
as numeric references, hexadecimal by default.

Examples:
  htmlesc escape '<script>alert("x")</script>'
  htmlesc escape --no-named --decimal 'café'     # caf&#233;
  ls --color | htmlesc escape --strip-ansi > listing.html`,
	RunE: runEscape,
}

var (
	escapeDecimalFlag   bool
	escapeNoNamedFlag   bool
	escapeStripAnsiFlag bool
	escapeColsFlag      int
	escapeJsonFlag      bool
)

func init() {
	escapeCmd.Flags().BoolVar(&escapeDecimalFlag, "decimal", false, "Use decimal numeric references (&#233;) instead of hex (&#xE9;)")
	escapeCmd.Flags().BoolVar(&escapeNoNamedFlag, "no-named", false, "Never use named references")
	escapeCmd.Flags().BoolVar(&escapeStripAnsiFlag, "strip-ansi", false, "Remove terminal escape codes before escaping")
	escapeCmd.Flags().IntVar(&escapeColsFlag, "cols", vterm.DefaultColumns, "Terminal width used to render cursor movement (with --strip-ansi)")
	escapeCmd.Flags().BoolVar(&escapeJsonFlag, "json", false, "Output as JSON")
}

type transformResult struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Changed bool   `json:"changed"`
}

func runEscape(cmd *cobra.Command, args []string) error {
	input, err := textio.Input(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if escapeColsFlag < 0 {
		return fmt.Errorf("--cols must be non-negative")
	}

	text := input
	if escapeStripAnsiFlag {
		text = vterm.Plain(text, escapeColsFlag)
	}

	output := escape.Escape(text,
		escape.WithDecimal(escapeDecimalFlag),
		escape.WithNamedReferences(!escapeNoNamedFlag),
	)
	return writeResult(cmd, transformResult{
		Input:   input,
		Output:  output,
		Changed: output != input,
	}, escapeJsonFlag)
}

func writeResult(cmd *cobra.Command, res transformResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err := fmt.Fprint(out, textio.Terminate(res.Output, textio.IsTerminal(out)))
	return err
}
