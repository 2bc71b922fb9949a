package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
)

// StripOptions holds flags for the strip command.
type StripOptions struct {
	*RootOptions
	Label  string
	Tiers  []string
	Output string
}

// StripResult is the payload reported after a strip.
type StripResult struct {
	Input  string   `json:"input"`
	Output string   `json:"output"`
	Label  string   `json:"label"`
	Tiers  []string `json:"tiers,omitempty"`
}

// NewStripCommand creates the strip command.
func NewStripCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StripOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "strip <file>",
		Short: "Remove every entry carrying a given label",
		Long: `Drop all entries whose label equals --label from the selected
tiers (all tiers when --tiers is omitted). Useful for clearing silence
markers like "sp" before further processing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrip(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", "", "label to remove")
	cmd.Flags().StringSliceVar(&opts.Tiers, "tiers", nil, "tiers to strip (default: all)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cobra.CheckErr(cmd.MarkFlagRequired("label"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}

func runStrip(opts *StripOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	grid, err := codec.Read(input)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeParseFailed,
			fmt.Sprintf("reading %s: %v", input, err), nil)
	}

	for _, name := range opts.Tiers {
		if _, ok := grid.Tier(name); !ok {
			return formatter.Error(ExitFailure, ErrCodeBadTier,
				fmt.Sprintf("unknown tier %q in %s", name, input), nil)
		}
	}

	stripped := grid.RemoveLabels(opts.Label, opts.Tiers...)
	if err := codec.Write(stripped, opts.Output); err != nil {
		return formatter.Error(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := StripResult{Input: input, Output: opts.Output, Label: opts.Label, Tiers: opts.Tiers}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Stripped %q from %s into %s\n",
		result.Label, result.Input, result.Output)
	return nil
}
