package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
	"github.com/phonlab/tgkit/internal/tg"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Tiers      []string
	KeepOthers bool
	Output     string
}

// MergeResult is the payload reported after a merge.
type MergeResult struct {
	Input  string   `json:"input"`
	Output string   `json:"output"`
	Merged []string `json:"merged"`
	Tiers  int      `json:"tiers"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <file>",
		Short: "Fuse interval tiers into a single combined tier",
		Long: `Pool the entries of the selected interval tiers into one tier,
fusing overlapping entries. With no --tiers flag all interval tiers are
merged. Unmerged tiers are dropped unless --keep-others is set.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Tiers, "tiers", nil, "tiers to merge (default: all)")
	cmd.Flags().BoolVar(&opts.KeepOthers, "keep-others", false, "copy unmerged tiers through")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}

func runMerge(opts *MergeOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	grid, err := codec.Read(input)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeParseFailed,
			fmt.Sprintf("reading %s: %v", input, err), nil)
	}

	var mergeOpts []tg.MergeOption
	if len(opts.Tiers) > 0 {
		mergeOpts = append(mergeOpts, tg.MergeOnly(opts.Tiers...))
	}
	if !opts.KeepOthers {
		mergeOpts = append(mergeOpts, tg.MergeDropOthers())
	}

	merged, err := grid.MergeTiers(mergeOpts...)
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeBadTier, err.Error(), nil)
	}
	formatter.VerboseLog("Merged into %d tier(s)", merged.Len())

	if err := codec.Write(merged, opts.Output); err != nil {
		return formatter.Error(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := MergeResult{
		Input:  input,
		Output: opts.Output,
		Merged: opts.Tiers,
		Tiers:  merged.Len(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Merged %s into %s (%d tier(s))\n",
		result.Input, result.Output, result.Tiers)
	return nil
}
