package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
	"github.com/phonlab/tgkit/internal/tg"
)

// InfoResult summarizes one TextGrid file.
type InfoResult struct {
	Path    string     `json:"path"`
	MinTime float64    `json:"min_time"`
	MaxTime float64    `json:"max_time"`
	Tiers   []TierInfo `json:"tiers"`
}

// TierInfo summarizes one tier.
type TierInfo struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Entries int     `json:"entries"`
	MinTime float64 `json:"min_time"`
	MaxTime float64 `json:"max_time"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "info <file>",
		Short:         "Show bounds and tier summary of a TextGrid file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInfo(rootOpts *RootOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	grid, err := codec.Read(input)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeParseFailed,
			fmt.Sprintf("reading %s: %v", input, err), nil)
	}

	result := InfoResult{Path: input, MinTime: grid.MinTime(), MaxTime: grid.MaxTime()}
	for _, name := range grid.TierNames() {
		tier, _ := grid.Tier(name)
		minTime, maxTime := tier.Bounds()
		result.Tiers = append(result.Tiers, TierInfo{
			Name:    name,
			Kind:    tierKind(tier),
			Entries: tier.Len(),
			MinTime: minTime,
			MaxTime: maxTime,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s  [%g, %g]\n", result.Path, result.MinTime, result.MaxTime)
	for _, t := range result.Tiers {
		fmt.Fprintf(formatter.Writer, "  %-20s %-8s %4d entries  [%g, %g]\n",
			t.Name, t.Kind, t.Entries, t.MinTime, t.MaxTime)
	}
	return nil
}

func tierKind(tier tg.Tier) string {
	if _, ok := tier.(*tg.IntervalTier); ok {
		return "interval"
	}
	return "point"
}
