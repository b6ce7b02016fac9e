package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/pokedex/internal/config"
	"github.com/f3rmion/pokedex/internal/tui/views"
	"go.uber.org/zap"
)

// AppModel is the root TUI model. It owns layout, the help overlay and
// quitting, and delegates everything else to the search view.
type AppModel struct {
	cancel context.CancelFunc
	logger *zap.Logger

	// Layout state
	width  int
	height int
	ready  bool

	searchView views.SearchModel

	// Help overlay
	showHelp bool
}

// NewApp creates the TUI application. Requests issued by the app are
// cancelled when it quits or when ctx is done.
func NewApp(ctx context.Context, client views.Fetcher, cfg *config.Config, logger *zap.Logger) AppModel {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	return AppModel{
		cancel: cancel,
		logger: logger,
		searchView: views.NewSearchModel(ctx, client, views.SearchOptions{
			Limit:   cfg.ListLimit,
			Sprites: cfg.Sprites,
			Logger:  logger.Named("search"),
		}),
	}
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return m.searchView.Init()
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

		// Help overlay - any key closes it
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if msg.String() == "?" && !m.searchView.Typing() {
			m.showHelp = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.searchView.SetSize(m.width-4, m.height-2)
		return m, nil
	}

	var cmd tea.Cmd
	m.searchView, cmd = m.searchView.Update(msg)
	return m, cmd
}

// quit cancels outstanding requests and stops the program.
func (m AppModel) quit() tea.Cmd {
	m.logger.Debug("quitting")
	m.cancel()
	return tea.Quit
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return ContentStyle.
		Width(m.width).
		Height(m.height).
		Render(m.searchView.View())
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	helpText := HelpTitleStyle.Render("Pokédex") + "\n\n"

	helpText += HelpSectionStyle.Render("Search") + "\n"
	helpText += HelpKeyStyle.Render("enter") + HelpDescStyle.Render("Search by name") + "\n"
	helpText += HelpKeyStyle.Render("tab") + HelpDescStyle.Render("Focus results") + "\n"
	helpText += HelpKeyStyle.Render("esc") + HelpDescStyle.Render("Clear, or quit when empty") + "\n"

	helpText += HelpSectionStyle.Render("Results") + "\n"
	helpText += HelpKeyStyle.Render("←/→/↑/↓") + HelpDescStyle.Render("Move between cards") + "\n"
	helpText += HelpKeyStyle.Render("h/j/k/l") + HelpDescStyle.Render("Move between cards") + "\n"
	helpText += HelpKeyStyle.Render("enter") + HelpDescStyle.Render("Open card") + "\n"
	helpText += HelpKeyStyle.Render("y") + HelpDescStyle.Render("Copy summary") + "\n"
	helpText += HelpKeyStyle.Render("esc") + HelpDescStyle.Render("Back to the list") + "\n"

	helpText += HelpSectionStyle.Render("Global") + "\n"
	helpText += HelpKeyStyle.Render("?") + HelpDescStyle.Render("Show this help") + "\n"
	helpText += HelpKeyStyle.Render("ctrl+c") + HelpDescStyle.Render("Quit") + "\n"

	helpText += "\n" + HelpFooterStyle.Render("Press any key to close")

	// Center the help box
	helpBox := HelpBoxStyle.Render(helpText)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBox)
}
