package pokedex

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// summaryData is the flattened view handed to the summary template.
type summaryData struct {
	Number string
	Name   string
	Types  string
	Height string
	Weight string
	Sprite string
}

const defaultSummaryTemplate = `{{.Number}} {{.Name}}
Types:  {{if .Types}}{{.Types}}{{else}}unknown{{end}}
Height: {{.Height}} m
Weight: {{.Weight}} kg{{if .Sprite}}
Sprite: {{.Sprite}}{{end}}
`

// Summarizer renders plain-text summaries of entries.
type Summarizer struct {
	template *template.Template
}

// NewSummarizer creates a summarizer using the default template.
func NewSummarizer() *Summarizer {
	return &Summarizer{
		template: template.Must(template.New("summary").Parse(defaultSummaryTemplate)),
	}
}

// SetTemplate replaces the summary template.
func (s *Summarizer) SetTemplate(tmpl string) error {
	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	s.template = t
	return nil
}

// Summary renders the summary for a single entry.
func (s *Summarizer) Summary(e Entry) (string, error) {
	data := summaryData{
		Number: e.Number(),
		Name:   e.DisplayName(),
		Types:  strings.Join(e.Types, ", "),
		Height: e.HeightMeters(),
		Weight: e.WeightKilograms(),
		Sprite: e.SpriteURL,
	}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// Line renders a one-line listing of an entry, used by the list command.
func Line(e Entry) string {
	return fmt.Sprintf("%s  %-12s  %-18s  %5s m  %6s kg",
		e.Number(), e.DisplayName(), strings.Join(e.Types, "/"), e.HeightMeters(), e.WeightKilograms())
}
