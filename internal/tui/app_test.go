package tui

import (
	"context"
	"image"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/pokedex/internal/config"
	"github.com/f3rmion/pokedex/internal/pokeapi"
	"github.com/f3rmion/pokedex/internal/pokeapi/pokeapitest"
	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingFetcher records the context it was handed and never answers
// until the context is done.
type blockingFetcher struct {
	ctx context.Context
}

func (f *blockingFetcher) FetchBatch(ctx context.Context, limit int) ([]pokedex.Entry, error) {
	f.ctx = ctx
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *blockingFetcher) Lookup(ctx context.Context, name string) (*pokedex.Entry, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *blockingFetcher) Sprite(ctx context.Context, url string) (image.Image, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestApp(t *testing.T) AppModel {
	t.Helper()
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Sprites = false
	return NewApp(context.Background(), pokeapi.NewClient(srv.BaseURL()), cfg, zaptest.NewLogger(t))
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func TestAppLoadingUntilSized(t *testing.T) {
	m := newTestApp(t)
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "Pokédex")
}

func TestAppHelpOverlay(t *testing.T) {
	m := newTestApp(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	// "?" is query text while the input has focus.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.False(t, m.showHelp)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Press any key to close")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.showHelp)
}

func TestAppCtrlCCancelsRequests(t *testing.T) {
	f := &blockingFetcher{}
	m := NewApp(context.Background(), f, nil, nil)

	cmd := m.Init()
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() {
		batch := cmd().(tea.BatchMsg)
		// The second command is the list fetch; the first is the cursor blink.
		done <- batch[1]()
	}()

	_, quit := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, quit)
	assert.Equal(t, tea.Quit(), quit())

	msg := <-done
	require.NotNil(t, f.ctx)
	assert.ErrorIs(t, f.ctx.Err(), context.Canceled)
	assert.NotNil(t, msg)
}
