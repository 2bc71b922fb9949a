package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
	"github.com/phonlab/tgkit/internal/fixture"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string
}

// BuildResult is the payload reported after a build.
type BuildResult struct {
	Fixture string `json:"fixture"`
	Output  string `json:"output"`
	Tiers   int    `json:"tiers"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "build <fixture.yaml>",
		Short:         "Build a TextGrid file from a YAML fixture",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}

func runBuild(opts *BuildOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	grid, err := fixture.LoadTextgrid(input)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeBadFixture,
			fmt.Sprintf("loading %s: %v", input, err), nil)
	}
	formatter.VerboseLog("Built %d tier(s) from %s", grid.Len(), input)

	if err := codec.Write(grid, opts.Output); err != nil {
		return formatter.Error(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := BuildResult{Fixture: input, Output: opts.Output, Tiers: grid.Len()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Built %s from %s (%d tier(s))\n",
		result.Output, result.Fixture, result.Tiers)
	return nil
}
