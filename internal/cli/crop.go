package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
)

// CropOptions holds flags for the crop command.
type CropOptions struct {
	*RootOptions
	Start  float64
	End    float64
	Strict bool
	Soft   bool
	Output string
}

// CropResult is the payload reported after a crop.
type CropResult struct {
	Input   string  `json:"input"`
	Output  string  `json:"output"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	MaxTime float64 `json:"max_time"`
}

// NewCropCommand creates the crop command.
func NewCropCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CropOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "crop <file>",
		Short: "Cut a time window out of a TextGrid file",
		Long: `Crop every tier to the window [--start, --end] and rebase times so
the window start becomes zero. By default intervals straddling a window
edge are kept whole; --strict drops them and --soft truncates them at
the edge instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrop(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Start, "start", 0, "window start time")
	cmd.Flags().Float64Var(&opts.End, "end", 0, "window end time")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "drop intervals straddling a window edge")
	cmd.Flags().BoolVar(&opts.Soft, "soft", false, "truncate intervals at the window edge")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cobra.CheckErr(cmd.MarkFlagRequired("end"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}

func runCrop(opts *CropOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Strict && opts.Soft {
		return formatter.Error(ExitCommandError, ErrCodeGeneric,
			"--strict and --soft are mutually exclusive", nil)
	}
	if opts.End <= opts.Start {
		return formatter.Error(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("--end (%g) must be greater than --start (%g)", opts.End, opts.Start), nil)
	}

	grid, err := codec.Read(input)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeParseFailed,
			fmt.Sprintf("reading %s: %v", input, err), nil)
	}

	cropped := grid.CropTo(opts.Start, opts.End, opts.Strict, opts.Soft)
	formatter.VerboseLog("Cropped [%g, %g] from %s", opts.Start, opts.End, input)

	if err := codec.Write(cropped, opts.Output); err != nil {
		return formatter.Error(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := CropResult{
		Input:   input,
		Output:  opts.Output,
		Start:   opts.Start,
		End:     opts.End,
		MaxTime: cropped.MaxTime(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Cropped [%g, %g] of %s into %s\n",
		result.Start, result.End, result.Input, result.Output)
	return nil
}
