package cmd

import (
	"github.com/schovi/htmlesc/internal/escape"
	"github.com/schovi/htmlesc/internal/textio"
	"github.com/spf13/cobra"
)

var unescapeCmd = &cobra.Command{
	Use:   "unescape [text...]",
	Short: "Decode HTML character references",
	Long: `Decode named (&amp;), decimal (&#38;) and hexadecimal (&#x26;) character
references.

Arguments are joined with spaces. Without arguments, stdin is read.

References that are malformed, unknown or not terminated by ';' are left as
written. With --lenient a reference may also end where its name or digits
stop, so '&amp' and '&#65x' decode to '&' and 'Ax'.`,
	RunE: runUnescape,
}

var (
	unescapeLenientFlag bool
	unescapeJsonFlag    bool
)

func init() {
	unescapeCmd.Flags().BoolVar(&unescapeLenientFlag, "lenient", false, "Accept references without a trailing ';'")
	unescapeCmd.Flags().BoolVar(&unescapeJsonFlag, "json", false, "Output as JSON")
}

func runUnescape(cmd *cobra.Command, args []string) error {
	input, err := textio.Input(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	output := escape.Unescape(input, escape.WithStrict(!unescapeLenientFlag))
	return writeResult(cmd, transformResult{
		Input:   input,
		Output:  output,
		Changed: output != input,
	}, unescapeJsonFlag)
}
