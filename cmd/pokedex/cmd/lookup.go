package cmd

import (
	"errors"
	"fmt"

	"github.com/f3rmion/pokedex/internal/pokeapi"
	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/f3rmion/pokedex/internal/sprite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Look up a single Pokémon by name",
	Long: `Look up a Pokémon by name and print its number, types, height,
weight and sprite.

The output format can be changed with a Go template over the fields
.Number .Name .Types .Height .Weight and .Sprite.

Example:
  pokedex lookup pikachu
  pokedex lookup Bulbasaur --no-sprite
  pokedex lookup eevee --format '{{.Name}} {{.Weight}}kg'`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var (
	lookupFormat   string
	lookupNoSprite bool
)

// Sprite size for lookup output.
const (
	lookupSpriteCols = 32
	lookupSpriteRows = 16
)

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupFormat, "format", "", "Go template for the output")
	lookupCmd.Flags().BoolVar(&lookupNoSprite, "no-sprite", false, "do not print sprite art")
}

func runLookup(cmd *cobra.Command, args []string) error {
	summarizer := pokedex.NewSummarizer()
	if lookupFormat != "" {
		if err := summarizer.SetTemplate(lookupFormat + "\n"); err != nil {
			return err
		}
	}

	client := newClient()
	name := pokedex.NormalizeName(args[0])

	entry, err := client.Lookup(cmd.Context(), name)
	if err != nil {
		logger.Info("lookup failed", zap.String("name", name), zap.Error(err))
		if errors.Is(err, pokeapi.ErrNotFound) {
			return fmt.Errorf("Pokémon not found: %s", name)
		}
		return fmt.Errorf("Pokémon not found: %s: %w", name, err)
	}

	out := cmd.OutOrStdout()

	if cfg.Sprites && !lookupNoSprite && lookupFormat == "" {
		if art := lookupSprite(cmd, client, entry); art != "" {
			fmt.Fprintln(out, art)
		}
	}

	summary, err := summarizer.Summary(*entry)
	if err != nil {
		return err
	}
	fmt.Fprint(out, summary)
	return nil
}

// lookupSprite renders the entry's sprite, or a placeholder if it has
// none. Fetch failures are logged and yield no art.
func lookupSprite(cmd *cobra.Command, client *pokeapi.Client, entry *pokedex.Entry) string {
	if !entry.HasSprite() {
		return sprite.Placeholder(lookupSpriteCols, lookupSpriteRows)
	}

	img, err := client.Sprite(cmd.Context(), entry.SpriteURL)
	if err != nil {
		logger.Debug("sprite fetch failed", zap.String("url", entry.SpriteURL), zap.Error(err))
		return ""
	}
	return sprite.Render(img, lookupSpriteCols, lookupSpriteRows)
}
