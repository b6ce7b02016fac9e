package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/mattn/go-runewidth"
)

// Card geometry in terminal cells.
const (
	cardInnerWidth = 20
	cardOuterWidth = cardInnerWidth + 4 // border and padding
	cardGap        = 1

	thumbCols = 16
	thumbRows = 6

	detailCols = 32
	detailRows = 16
)

// gridColumns returns how many cards fit side by side in width.
func gridColumns(width int) int {
	cols := (width + cardGap) / (cardOuterWidth + cardGap)
	if cols < 1 {
		return 1
	}
	return cols
}

func typeTags(types []string) string {
	if len(types) == 0 {
		return helpStyle.Render("unknown")
	}
	tags := make([]string, len(types))
	for i, t := range types {
		tags[i] = typeTag(t)
	}
	return strings.Join(tags, " ")
}

// stats renders "0.7 m  6.9 kg".
func stats(e pokedex.Entry) string {
	return valueStyle.Render(fmt.Sprintf("%s m  %s kg", e.HeightMeters(), e.WeightKilograms()))
}

// center pads s to width using display width.
func center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// renderCard draws one grid card. art may be empty while the sprite loads.
func renderCard(e pokedex.Entry, art string, active bool) string {
	name := runewidth.Truncate(e.DisplayName(), cardInnerWidth-6, "…")

	header := numberStyle.Render(e.Number()) + " " + nameStyle.Render(name)
	if art == "" {
		art = strings.Repeat("\n", thumbRows-1)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		center(art, cardInnerWidth),
		center(typeTags(e.Types), cardInnerWidth),
		center(stats(e), cardInnerWidth),
	)

	style := cardStyle
	if active {
		style = cardActiveStyle
	}
	return style.Width(cardInnerWidth + 2).Render(body)
}

// renderGrid lays out cards in rows that fit width. art maps sprite URLs to
// rendered thumbnails.
func renderGrid(entries []pokedex.Entry, art func(pokedex.Entry) string, cursor int, active bool, width int) string {
	cols := gridColumns(width)

	var rows []string
	for start := 0; start < len(entries); start += cols {
		end := start + cols
		if end > len(entries) {
			end = len(entries)
		}

		var cards []string
		for i := start; i < end; i++ {
			if i > start {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, renderCard(entries[i], art(entries[i]), active && i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderDetail draws the single-entry card.
func renderDetail(e pokedex.Entry, art string) string {
	if art == "" {
		art = loadingStyle.Render("...")
	}

	info := lipgloss.JoinVertical(lipgloss.Left,
		numberStyle.Render(e.Number()),
		nameStyle.Render(e.DisplayName()),
		"",
		typeTags(e.Types),
		"",
		labelStyle.Render("Height")+valueStyle.Render(e.HeightMeters()+" m"),
		labelStyle.Render("Weight")+valueStyle.Render(e.WeightKilograms()+" kg"),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Center, art, "    ", info)
	return detailStyle.Render(body)
}
