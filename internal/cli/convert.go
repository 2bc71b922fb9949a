package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Output string
}

// ConvertResult is the payload reported after a conversion.
type ConvertResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Tiers  int    `json:"tiers"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Rewrite a TextGrid file in the canonical short form",
		Long: `Read a TextGrid file in either textual dialect and write it back
in the short form. Empty-label entries are dropped on read and interval
gaps are refilled on write, so converting a file also normalizes it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (defaults to <input>.short.TextGrid)")

	return cmd
}

func runConvert(opts *ConvertOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	grid, err := codec.Read(input)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeParseFailed,
			fmt.Sprintf("reading %s: %v", input, err), nil)
	}
	formatter.VerboseLog("Read %d tier(s) from %s", grid.Len(), input)

	output := opts.Output
	if output == "" {
		output = defaultOutputPath(input)
	}
	if err := codec.Write(grid, output); err != nil {
		return formatter.Error(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := ConvertResult{Input: input, Output: output, Tiers: grid.Len()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Converted %s to %s (%d tier(s))\n",
		result.Input, result.Output, result.Tiers)
	return nil
}

// defaultOutputPath derives the conversion target from the input name.
func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, ".TextGrid")
	return base + ".short.TextGrid"
}
