package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phonlab/tgkit/internal/codec"
	"github.com/phonlab/tgkit/internal/corpus"
)

// IndexResult is the payload reported after indexing.
type IndexResult struct {
	Database string   `json:"database"`
	Indexed  []string `json:"indexed"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <db> <file...>",
		Short: "Add TextGrid files to a corpus index",
		Long: `Parse each file and store its tiers and entries in the SQLite
index at <db>, creating the database on first use. Re-indexing a path
replaces its previous snapshot.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runIndex(rootOpts *RootOptions, dbPath string, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	store, err := corpus.Open(dbPath)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeIndexFailed,
			fmt.Sprintf("opening %s: %v", dbPath, err), nil)
	}
	defer store.Close()

	result := IndexResult{Database: dbPath}
	for _, path := range files {
		grid, err := codec.Read(path)
		if err != nil {
			return formatter.Error(ExitCommandError, ErrCodeParseFailed,
				fmt.Sprintf("reading %s: %v", path, err), nil)
		}
		if err := store.IndexFile(cmd.Context(), path, grid); err != nil {
			return formatter.Error(ExitCommandError, ErrCodeIndexFailed, err.Error(), nil)
		}
		formatter.VerboseLog("Indexed %s (%d tier(s))", path, grid.Len())
		result.Indexed = append(result.Indexed, path)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Indexed %d file(s) into %s\n",
		len(result.Indexed), result.Database)
	return nil
}
