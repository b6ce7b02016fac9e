package cmd

import (
	"fmt"

	"github.com/f3rmion/pokedex/internal/anki"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the initial list as an Anki deck",
	Long: `Fetch the initial list and write it as an Anki .apkg deck with one
note per Pokémon (fields Number, Name, Types, Height, Weight).

Examples:
  pokedex export
  pokedex export -o kanto.apkg --limit 151 --deck "Kanto"`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOutput string
	exportDeck   string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "pokedex.apkg", "output file")
	exportCmd.Flags().StringVar(&exportDeck, "deck", "", "deck name (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	entries, err := newClient().FetchBatch(cmd.Context(), cfg.ListLimit)
	if err != nil {
		return err
	}

	deck := cfg.DeckName
	if exportDeck != "" {
		deck = exportDeck
	}

	if err := anki.Export(exportOutput, entries, anki.ExportOptions{DeckName: deck}); err != nil {
		return fmt.Errorf("exporting deck: %w", err)
	}
	logger.Info("deck exported", zap.String("path", exportOutput), zap.Int("notes", len(entries)))

	pkg, err := anki.OpenPackage(exportOutput)
	if err != nil {
		return fmt.Errorf("reading exported deck: %w", err)
	}
	defer pkg.Close()

	fmt.Fprint(cmd.OutOrStdout(), pkg.Summary())
	return nil
}
