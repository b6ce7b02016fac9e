package cmd

import (
	"fmt"

	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the first entries of the Pokédex",
	Long: `Fetch the initial list (20 entries unless --limit or list_limit says
otherwise) and print one line per entry.

Example:
  pokedex list
  pokedex list --limit 151`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	entries, err := newClient().FetchBatch(cmd.Context(), cfg.ListLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintln(out, pokedex.Line(e))
	}
	return nil
}
