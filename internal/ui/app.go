// Package ui renders the movie discovery screen with Bubble Tea.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marco/movieFinder/internal/catalog"
	"github.com/marco/movieFinder/internal/discover"
)

const maxCardWidth = 72

// Controller is the part of discover.Controller the view drives.
type Controller interface {
	Start()
	SetQuery(text string)
}

// SnapshotMsg delivers controller state to the model. In a running program
// these arrive through Updates.
type SnapshotMsg struct {
	Snapshot discover.Snapshot
}

// Model is the root Bubble Tea model. It holds no state of its own beyond
// the input widget and the latest snapshot.
type Model struct {
	ctrl    Controller
	updates *Updates
	posters catalog.PosterResolver
	input   textinput.Model
	spinner spinner.Model
	snap    discover.Snapshot
	width   int
	height  int
}

// New creates the model. Nothing is fetched until Init runs. updates may be
// nil when snapshots are fed to Update directly.
func New(ctrl Controller, posters catalog.PosterResolver, updates *Updates) Model {
	ti := textinput.New()
	ti.Placeholder = "Search through thousands of movies"
	ti.CharLimit = 100
	ti.Width = 48
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorSpinner)

	return Model{
		ctrl:    ctrl,
		updates: updates,
		posters: posters,
		input:   ti,
		spinner: s,
		// Loading until the first snapshot arrives.
		snap: discover.Snapshot{Status: discover.Status{
			AllMovies: discover.Loading,
			Trending:  discover.Loading,
		}},
	}
}

func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		func() tea.Msg {
			ctrl.Start()
			return nil
		},
		m.waitForSnapshot(),
	)
}

func (m Model) waitForSnapshot() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return m.updates.Next()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			m.ctrl.SetQuery(value)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputWidth := msg.Width - 8
		if inputWidth > 60 {
			inputWidth = 60
		}
		if inputWidth < 10 {
			inputWidth = 10
		}
		m.input.Width = inputWidth
		return m, nil

	case SnapshotMsg:
		if msg.Snapshot.Version > m.snap.Version {
			m.snap = msg.Snapshot
		}
		return m, m.waitForSnapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(renderHero())
	b.WriteString("\n")
	b.WriteString(renderSearch(m.input))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Trending Movies"))
	b.WriteString("\n")
	if m.snap.Loading() {
		b.WriteString(renderSpinner(m.spinner))
		b.WriteString("\n")
	} else {
		for i, movie := range m.snap.Trending {
			b.WriteString(renderTrendingItem(i+1, movie, m.posters))
			b.WriteString("\n")
		}
	}

	b.WriteString(sectionStyle.Render("All Movies"))
	b.WriteString("\n")
	switch {
	case m.snap.Loading():
		b.WriteString(renderSpinner(m.spinner))
		b.WriteString("\n")
	case m.snap.ErrorMessage != "":
		b.WriteString(errorStyle.Render(m.snap.ErrorMessage))
		b.WriteString("\n")
	case len(m.snap.Movies) == 0:
		b.WriteString(mutedStyle.Render("No movies found."))
		b.WriteString("\n")
	default:
		for _, movie := range m.snap.Movies {
			b.WriteString(renderMovieCard(movie, m.posters, m.cardWidth()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("esc: quit"))
	return b.String()
}

func (m Model) cardWidth() int {
	if m.width <= 0 {
		return 0
	}
	if m.width-2 > maxCardWidth {
		return maxCardWidth
	}
	return m.width - 2
}
