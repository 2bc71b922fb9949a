package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/corpus"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Substring bool
}

// SearchResult is the payload reported by a search.
type SearchResult struct {
	Query string              `json:"query"`
	Hits  []corpus.Occurrence `json:"hits"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "search <db> <label>",
		Short:         "Find label occurrences across an indexed corpus",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Substring, "substring", false, "match labels containing the query")

	return cmd
}

func runSearch(opts *SearchOptions, dbPath, label string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	store, err := corpus.Open(dbPath)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeIndexFailed,
			fmt.Sprintf("opening %s: %v", dbPath, err), nil)
	}
	defer store.Close()

	hits, err := store.SearchLabel(cmd.Context(), label, opts.Substring)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeIndexFailed, err.Error(), nil)
	}

	result := SearchResult{Query: label, Hits: hits}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(hits) == 0 {
		fmt.Fprintf(formatter.Writer, "No occurrences of %q\n", label)
		return nil
	}
	for _, hit := range hits {
		if hit.Kind == "interval" {
			fmt.Fprintf(formatter.Writer, "%s  %s  [%g, %g]  %q\n",
				hit.Path, hit.Tier, hit.Start, hit.End, hit.Label)
		} else {
			fmt.Fprintf(formatter.Writer, "%s  %s  [%g]  %q\n",
				hit.Path, hit.Tier, hit.Start, hit.Label)
		}
	}
	fmt.Fprintf(formatter.Writer, "%d occurrence(s)\n", len(hits))
	return nil
}
