package anki

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/f3rmion/pokedex/internal/pokeapi/pokeapitest"
	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func exportStarters(t *testing.T, opts ExportOptions) (*Package, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.apkg")
	require.NoError(t, Export(path, pokeapitest.Starters(), opts))

	pkg, err := OpenPackage(path)
	require.NoError(t, err)
	t.Cleanup(func() { pkg.Close() })
	return pkg, path
}

func TestExportRoundTrip(t *testing.T) {
	pkg, _ := exportStarters(t, ExportOptions{DeckName: "Starters", Now: fixedNow})

	assert.Len(t, pkg.Notes, 4)
	assert.Equal(t, 4, pkg.CardCount)
	require.Len(t, pkg.Models, 1)

	var names []string
	for _, d := range pkg.Decks {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"Default", "Starters"}, names)

	for _, m := range pkg.Models {
		assert.Equal(t, modelName, m.Name)
		require.Len(t, m.Fields, len(EntryFields))
		for i, f := range m.Fields {
			assert.Equal(t, EntryFields[i], f.Name)
			assert.Equal(t, i, f.Ord)
		}
	}
}

func TestExportFieldValues(t *testing.T) {
	pkg, _ := exportStarters(t, ExportOptions{Now: fixedNow})

	byName := make(map[string]*Note)
	for _, n := range pkg.Notes {
		byName[pkg.FieldValue(n, "name")] = n
	}
	require.Contains(t, byName, "Pikachu")

	pikachu := byName["Pikachu"]
	assert.Equal(t, "#025", pkg.FieldValue(pikachu, "Number"))
	assert.Equal(t, "electric", pkg.FieldValue(pikachu, "Types"))
	assert.Equal(t, "0.4 m", pkg.FieldValue(pikachu, "Height"))
	assert.Equal(t, "6 kg", pkg.FieldValue(pikachu, "Weight"))
	assert.Equal(t, "pokedex-25", pikachu.GUID)
	assert.Equal(t, "Pikachu", pikachu.SFLD)
	assert.Empty(t, pkg.FieldValue(pikachu, "Missing"))
}

func TestExportDefaultDeckName(t *testing.T) {
	pkg, _ := exportStarters(t, ExportOptions{Now: fixedNow})

	found := false
	for _, d := range pkg.Decks {
		if d.Name == "Pokédex" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExportTags(t *testing.T) {
	assert.Equal(t, " grass poison ", tags(pokedex.Entry{Types: []string{"grass", "poison"}}))
	assert.Empty(t, tags(pokedex.Entry{}))
}

func TestExportEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.apkg")
	require.NoError(t, Export(path, nil, ExportOptions{}))

	pkg, err := OpenPackage(path)
	require.NoError(t, err)
	defer pkg.Close()

	assert.Empty(t, pkg.Notes)
	assert.Zero(t, pkg.CardCount)
}

func TestExportUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "deck.apkg")
	err := Export(path, pokeapitest.Starters(), ExportOptions{})
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpenPackageMissingFile(t *testing.T) {
	_, err := OpenPackage(filepath.Join(t.TempDir(), "nope.apkg"))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	pkg, path := exportStarters(t, ExportOptions{DeckName: "Starters", Now: fixedNow})

	s := pkg.Summary()
	assert.Contains(t, s, path)
	assert.Contains(t, s, "Notes: 4")
	assert.Contains(t, s, "Cards: 4")
	assert.Contains(t, s, modelName+" (5 fields)")
	assert.Contains(t, s, "- Starters")
}

func TestChecksumIsStable(t *testing.T) {
	assert.Equal(t, checksum("#025"), checksum("#025"))
	assert.NotEqual(t, checksum("#025"), checksum("#001"))
	assert.Positive(t, checksum("#001"))
}
