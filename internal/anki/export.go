package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/f3rmion/pokedex/internal/pokedex"
)

// EntryFields are the note fields written for every entry, in order.
var EntryFields = []string{"Number", "Name", "Types", "Height", "Weight"}

const (
	modelName     = "Pokédex Entry"
	defaultDeckID = 1
	schemaVersion = 11
)

const schema = `
CREATE TABLE col (
	id integer primary key, crt integer not null, mod integer not null,
	scm integer not null, ver integer not null, dty integer not null,
	usn integer not null, ls integer not null, conf text not null,
	models text not null, decks text not null, dconf text not null,
	tags text not null
);
CREATE TABLE notes (
	id integer primary key, guid text not null, mid integer not null,
	mod integer not null, usn integer not null, tags text not null,
	flds text not null, sfld integer not null, csum integer not null,
	flags integer not null, data text not null
);
CREATE TABLE cards (
	id integer primary key, nid integer not null, did integer not null,
	ord integer not null, mod integer not null, usn integer not null,
	type integer not null, queue integer not null, due integer not null,
	ivl integer not null, factor integer not null, reps integer not null,
	lapses integer not null, left integer not null, odue integer not null,
	odid integer not null, flags integer not null, data text not null
);
CREATE TABLE revlog (
	id integer primary key, cid integer not null, usn integer not null,
	ease integer not null, ivl integer not null, lastIvl integer not null,
	factor integer not null, time integer not null, type integer not null
);
CREATE TABLE graves (usn integer not null, oid integer not null, type integer not null);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

// ExportOptions configures Export.
type ExportOptions struct {
	DeckName string
	Now      func() time.Time // defaults to time.Now
}

// Export writes entries to path as an .apkg deck with one note per entry.
func Export(path string, entries []pokedex.Entry, opts ExportOptions) error {
	if opts.DeckName == "" {
		opts.DeckName = "Pokédex"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tempDir, err := os.MkdirTemp("", "pokedex-export-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := writeCollection(dbPath, entries, opts); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(tempDir, "media"), []byte("{}"), 0644); err != nil {
		return fmt.Errorf("writing media manifest: %w", err)
	}

	if err := zipDir(tempDir, path); err != nil {
		return fmt.Errorf("creating zip: %w", err)
	}
	return nil
}

func writeCollection(dbPath string, entries []pokedex.Entry, opts ExportOptions) (err error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := opts.Now()
	nowMs := now.UnixMilli()
	modelID := nowMs
	deckID := nowMs + 1

	if err := insertCollection(tx, now, modelID, deckID, opts.DeckName, len(entries)); err != nil {
		return err
	}

	for i, e := range entries {
		noteID := nowMs + int64(i)
		cardID := nowMs + int64(len(entries)) + int64(i)
		if err := insertEntry(tx, e, noteID, cardID, modelID, deckID, now.Unix(), i+1); err != nil {
			return fmt.Errorf("inserting %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func insertCollection(tx *sql.Tx, now time.Time, modelID, deckID int64, deckName string, count int) error {
	models, err := json.Marshal(map[string]any{
		strconv.FormatInt(modelID, 10): noteType(modelID, deckID, now.Unix()),
	})
	if err != nil {
		return fmt.Errorf("marshaling models: %w", err)
	}

	decks, err := json.Marshal(map[string]any{
		strconv.Itoa(defaultDeckID):  deck(defaultDeckID, "Default", now.Unix()),
		strconv.FormatInt(deckID, 10): deck(deckID, deckName, now.Unix()),
	})
	if err != nil {
		return fmt.Errorf("marshaling decks: %w", err)
	}

	conf, err := json.Marshal(map[string]any{
		"nextPos":       count + 1,
		"estTimes":      true,
		"activeDecks":   []int64{deckID},
		"sortType":      "noteFld",
		"timeLim":       0,
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       deckID,
		"newSpread":     0,
		"dueCounts":     true,
		"curModel":      strconv.FormatInt(modelID, 10),
		"collapseTime":  1200,
	})
	if err != nil {
		return fmt.Errorf("marshaling conf: %w", err)
	}

	dconf, err := json.Marshal(map[string]any{
		"1": deckConfig(now.Unix()),
	})
	if err != nil {
		return fmt.Errorf("marshaling deck config: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')
	`, now.Unix(), now.UnixMilli(), now.UnixMilli(), schemaVersion,
		string(conf), string(models), string(decks), string(dconf))
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}
	return nil
}

func insertEntry(tx *sql.Tx, e pokedex.Entry, noteID, cardID, modelID, deckID, mod int64, due int) error {
	fields := []string{
		e.Number(),
		e.DisplayName(),
		strings.Join(e.Types, ", "),
		e.HeightMeters() + " m",
		e.WeightKilograms() + " kg",
	}

	_, err := tx.Exec(`
		INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')
	`, noteID, guid(e), modelID, mod, tags(e), strings.Join(fields, fieldSeparator), fields[1], checksum(fields[0]))
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')
	`, cardID, noteID, deckID, mod, due)
	if err != nil {
		return fmt.Errorf("inserting card: %w", err)
	}
	return nil
}

// guid is stable per Pokémon so re-importing an export updates notes.
func guid(e pokedex.Entry) string {
	return "pokedex-" + strconv.Itoa(e.ID)
}

// tags are the entry's types, space separated with surrounding spaces.
func tags(e pokedex.Entry) string {
	if len(e.Types) == 0 {
		return ""
	}
	return " " + strings.Join(e.Types, " ") + " "
}

// checksum is the first 8 hex digits of the SHA1 of the first field.
func checksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	csum, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return csum
}

func noteType(id, deckID, mod int64) map[string]any {
	flds := make([]map[string]any, len(EntryFields))
	for i, name := range EntryFields {
		flds[i] = map[string]any{
			"name": name, "ord": i, "sticky": false, "rtl": false,
			"font": "Arial", "size": 20, "media": []string{},
		}
	}

	return map[string]any{
		"id":    id,
		"name":  modelName,
		"type":  0,
		"mod":   mod,
		"usn":   -1,
		"sortf": 1,
		"did":   deckID,
		"flds":  flds,
		"tmpls": []map[string]any{{
			"name":  "Card 1",
			"ord":   0,
			"qfmt":  "{{Name}}",
			"afmt":  "{{FrontSide}}<hr id=answer>{{Number}}<br>{{Types}}<br>{{Height}} / {{Weight}}",
			"did":   nil,
			"bqfmt": "",
			"bafmt": "",
		}},
		"css":       ".card { font-family: arial; font-size: 20px; text-align: center; }",
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\begin{document}\n",
		"latexPost": "\\end{document}",
		"tags":      []string{},
		"vers":      []string{},
		"req":       []any{[]any{0, "any", []int{1}}},
	}
}

func deck(id int64, name string, mod int64) map[string]any {
	return map[string]any{
		"id":        id,
		"name":      name,
		"desc":      "",
		"mod":       mod,
		"usn":       -1,
		"collapsed": false,
		"dyn":       0,
		"conf":      1,
		"newToday":  []int{0, 0},
		"revToday":  []int{0, 0},
		"lrnToday":  []int{0, 0},
		"timeToday": []int{0, 0},
		"extendNew": 10,
		"extendRev": 50,
	}
}

func deckConfig(mod int64) map[string]any {
	return map[string]any{
		"id":       1,
		"name":     "Default",
		"mod":      mod,
		"usn":      0,
		"maxTaken": 60,
		"autoplay": true,
		"timer":    0,
		"replayq":  true,
		"dyn":      false,
		"new": map[string]any{
			"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500,
			"order": 1, "perDay": 20, "bury": true, "separate": true,
		},
		"rev": map[string]any{
			"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500,
			"ivlFct": 1, "bury": true, "minSpace": 1,
		},
		"lapse": map[string]any{
			"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0,
		},
	}
}

// zipDir writes every regular file in dir into a new zip at dest.
func zipDir(dir, dest string) error {
	outFile, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	zipWriter := zip.NewWriter(outFile)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		writer, err := zipWriter.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		zipWriter.Close()
		return err
	}

	return zipWriter.Close()
}
