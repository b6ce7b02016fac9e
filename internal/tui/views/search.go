// Package views provides the individual views for the TUI.
package views

import (
	"context"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/f3rmion/pokedex/internal/search"
	"github.com/f3rmion/pokedex/internal/sprite"
	"go.uber.org/zap"
)

// Fetcher is the part of the API client the search view uses.
type Fetcher interface {
	FetchBatch(ctx context.Context, limit int) ([]pokedex.Entry, error)
	Lookup(ctx context.Context, name string) (*pokedex.Entry, error)
	Sprite(ctx context.Context, url string) (image.Image, error)
}

// SearchOptions configures a SearchModel.
type SearchOptions struct {
	Limit   int  // size of the initial list
	Sprites bool // load and render sprite art
	Logger  *zap.Logger
}

// Message types
type listLoadedMsg struct {
	entries []pokedex.Entry
	err     error
}

type lookupDoneMsg struct {
	req   search.Request
	entry *pokedex.Entry
	err   error
}

type spriteLoadedMsg struct {
	url string
	err error
}

type clearCopiedMsg struct{}

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

// SearchModel is the search and browse view.
type SearchModel struct {
	ctx     context.Context
	client  Fetcher
	state   *search.State
	logger  *zap.Logger
	limit   int
	sprites bool
	cache   *sprite.Cache
	summary *pokedex.Summarizer

	input  textinput.Model
	focus  focusArea
	cursor int

	// cancel aborts the in-flight lookup, if any.
	cancel context.CancelFunc

	// Clipboard
	writeClipboard func(string) error
	copied         bool
	copyErr        error

	width  int
	height int
}

// NewSearchModel creates the view. ctx bounds every request it issues.
func NewSearchModel(ctx context.Context, client Fetcher, opts SearchOptions) SearchModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	ti := textinput.New()
	ti.Placeholder = "Type a Pokémon name..."
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 30
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))

	return SearchModel{
		ctx:            ctx,
		client:         client,
		state:          search.New(opts.Logger),
		logger:         opts.Logger,
		limit:          opts.Limit,
		sprites:        opts.Sprites,
		cache:          sprite.NewCache(),
		summary:        pokedex.NewSummarizer(),
		input:          ti,
		writeClipboard: clipboard.WriteAll,
	}
}

// State exposes the underlying view state.
func (m SearchModel) State() *search.State {
	return m.state
}

// Typing reports whether keys go to the text input.
func (m SearchModel) Typing() bool {
	return m.focus == focusInput
}

// SetSize updates the view dimensions.
func (m *SearchModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init mounts the view and starts the batch fetch.
func (m SearchModel) Init() tea.Cmd {
	if !m.state.Mount() {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.fetchList())
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case listLoadedMsg:
		m.state.ListLoaded(msg.entries, msg.err)
		m.cursor = 0
		return m, m.loadThumbnails()

	case lookupDoneMsg:
		if !m.state.LookupDone(msg.req, msg.entry, msg.err) {
			return m, nil
		}
		m.cancelLookup()
		if m.state.Selected != nil {
			return m, m.loadSprite(m.state.Selected.SpriteURL, detailCols, detailRows)
		}
		return m, nil

	case spriteLoadedMsg:
		if msg.err != nil {
			m.logger.Debug("sprite load failed", zap.String("url", msg.url), zap.Error(msg.err))
		}
		return m, nil

	case clearCopiedMsg:
		m.copied = false
		m.copyErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SearchModel) handleKey(msg tea.KeyMsg) (SearchModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.focus == focusResults && m.state.Mode == search.ModeList {
			return m.choose(m.cursor)
		}
		return m.submit()

	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil

	case "esc":
		if m.state.Mode == search.ModeList && m.state.Query == "" && m.state.ErrorMessage == "" {
			return m, tea.Quit
		}
		m.dismiss()
		return m, nil
	}

	if m.focus == focusResults {
		switch msg.String() {
		case "left", "h":
			m.moveCursor(-1)
		case "right", "l":
			m.moveCursor(1)
		case "up", "k":
			m.moveCursor(-gridColumns(m.width))
		case "down", "j":
			m.moveCursor(gridColumns(m.width))
		case "y":
			return m.copySummary()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.state.SetQuery(m.input.Value())
	return m, cmd
}

// submit runs the search action for the current query.
func (m SearchModel) submit() (SearchModel, tea.Cmd) {
	m.cancelLookup()
	m.state.SetQuery(m.input.Value())

	req, ok := m.state.Submit()
	if !ok {
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	return m, m.lookup(ctx, req)
}

// choose shows a list entry without a network call.
func (m SearchModel) choose(index int) (SearchModel, tea.Cmd) {
	m.cancelLookup()
	if !m.state.Choose(index) {
		return m, nil
	}
	m.input.SetValue(m.state.Query)
	m.input.CursorEnd()
	return m, m.loadSprite(m.state.Selected.SpriteURL, detailCols, detailRows)
}

func (m *SearchModel) dismiss() {
	m.cancelLookup()
	m.state.Dismiss()
	m.input.SetValue("")
	m.setFocus(focusInput)
}

func (m *SearchModel) cancelLookup() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *SearchModel) toggleFocus() {
	if m.focus == focusInput {
		m.setFocus(focusResults)
	} else {
		m.setFocus(focusInput)
	}
}

func (m *SearchModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *SearchModel) moveCursor(delta int) {
	if m.state.Mode != search.ModeList || len(m.state.List) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.state.List) {
		return
	}
	m.cursor = next
}

// copyTarget is the entry "y" copies: the open card, else the highlighted one.
func (m SearchModel) copyTarget() (pokedex.Entry, bool) {
	if m.state.Mode == search.ModeSingle && m.state.Selected != nil {
		return *m.state.Selected, true
	}
	if m.cursor < len(m.state.List) {
		return m.state.List[m.cursor], true
	}
	return pokedex.Entry{}, false
}

func (m SearchModel) copySummary() (SearchModel, tea.Cmd) {
	e, ok := m.copyTarget()
	if !ok {
		return m, nil
	}

	text, err := m.summary.Summary(e)
	if err == nil {
		err = m.writeClipboard(text)
	}
	if err != nil {
		m.logger.Warn("copy to clipboard failed", zap.Error(err))
		m.copyErr = err
	} else {
		m.copied = true
	}
	return m, clearCopiedAfter(2 * time.Second)
}

func (m SearchModel) fetchList() tea.Cmd {
	client, ctx, limit := m.client, m.ctx, m.limit
	return func() tea.Msg {
		entries, err := client.FetchBatch(ctx, limit)
		return listLoadedMsg{entries: entries, err: err}
	}
}

func (m SearchModel) lookup(ctx context.Context, req search.Request) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		entry, err := client.Lookup(ctx, req.Name)
		return lookupDoneMsg{req: req, entry: entry, err: err}
	}
}

func (m SearchModel) loadThumbnails() tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range m.state.List {
		cmds = append(cmds, m.loadSprite(e.SpriteURL, thumbCols, thumbRows))
	}
	return tea.Batch(cmds...)
}

// loadSprite fetches and renders a sprite unless it is cached or disabled.
func (m SearchModel) loadSprite(url string, cols, rows int) tea.Cmd {
	if !m.sprites || url == "" {
		return nil
	}
	if _, ok := m.cache.Get(url, cols, rows); ok {
		return nil
	}

	client, ctx, cache := m.client, m.ctx, m.cache
	return func() tea.Msg {
		img, err := client.Sprite(ctx, url)
		if err != nil {
			return spriteLoadedMsg{url: url, err: err}
		}
		cache.Put(url, cols, rows, sprite.Render(img, cols, rows))
		return spriteLoadedMsg{url: url}
	}
}

// art returns the rendered sprite for e, a placeholder if e has none, or
// "" while it is still loading.
func (m SearchModel) art(e pokedex.Entry, cols, rows int) string {
	if !m.sprites {
		return ""
	}
	if !e.HasSprite() {
		return sprite.Placeholder(cols, rows)
	}
	art, _ := m.cache.Get(e.SpriteURL, cols, rows)
	return art
}

// View renders the search view.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Pokédex"))
	b.WriteString("\n\n")

	// Input
	b.WriteString(m.input.View())
	if m.state.Loading {
		b.WriteString("  ")
		b.WriteString(loadingStyle.Render("Searching..."))
	}
	b.WriteString("\n")

	// Error
	if m.state.ErrorMessage != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.state.ErrorMessage))
		b.WriteString("\n")
	}

	// Results
	if m.state.Mode == search.ModeSingle && m.state.Selected != nil {
		e := *m.state.Selected
		b.WriteString(renderDetail(e, m.art(e, detailCols, detailRows)))
	} else {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Pokémon (" + strconv.Itoa(len(m.state.List)) + ")"))
		b.WriteString("\n")
		if m.state.IsLoading() {
			b.WriteString(loadingStyle.Render("Loading..."))
		} else {
			thumb := func(e pokedex.Entry) string { return m.art(e, thumbCols, thumbRows) }
			b.WriteString(renderGrid(m.state.List, thumb, m.cursor, m.focus == focusResults, m.width))
		}
	}

	// Help
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m SearchModel) renderHelp() string {
	switch {
	case m.copied:
		return copiedStyle.Render("Copied to clipboard")
	case m.copyErr != nil:
		return errorStyle.Render("Copy failed: " + m.copyErr.Error())
	}

	var parts []string
	if m.focus == focusInput {
		parts = append(parts, "enter: search", "tab: results")
	} else {
		if m.state.Mode == search.ModeList {
			parts = append(parts, "←/→/↑/↓: move", "enter: open")
		}
		parts = append(parts, "y: copy", "tab: search")
	}
	if m.state.Mode == search.ModeSingle {
		parts = append(parts, "esc: back")
	} else {
		parts = append(parts, "esc: quit")
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}
