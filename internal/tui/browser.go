// Package tui implements rootup's optional interactive archive browser,
// `rootup list --interactive`.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/rootup/internal/depot"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// Run starts the interactive archive browser over d, blocking until the
// user quits.
func Run(d *depot.Depot) error {
	_, err := tea.NewProgram(New(d), tea.WithAltScreen()).Run()
	return err
}

func selectorForListing(a depot.ArchiveListing) store.Selector {
	return store.Selector{Serial: a.Serial}
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// BrowserKeyMap defines keybindings for the archive browser.
type BrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultBrowserKeyMap returns the default keybindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view files")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to archives")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the Bubble Tea model backing the archive browser.
type Model struct {
	d       *depot.Depot
	keyMap  BrowserKeyMap
	width   int
	height  int
	ready   bool

	archives []depot.ArchiveListing
	selected int

	viewingFiles bool
	files        []depot.FileListing

	lastErr error
}

// New constructs a browser Model over d's archives.
func New(d *depot.Depot) Model {
	return Model{d: d, keyMap: DefaultBrowserKeyMap()}
}

type archivesMsg struct {
	archives []depot.ArchiveListing
	err      error
}

type filesMsg struct {
	files []depot.FileListing
	err   error
}

func loadArchivesCmd(d *depot.Depot) tea.Cmd {
	return func() tea.Msg {
		listings, err := d.List(true)
		return archivesMsg{archives: listings, err: err}
	}
}

func loadFilesCmd(d *depot.Depot, a depot.ArchiveListing) tea.Cmd {
	return func() tea.Msg {
		row, err := d.GetArchive(selectorForListing(a))
		if err != nil {
			return filesMsg{err: err}
		}
		files, err := d.Files(row)
		return filesMsg{files: files, err: err}
	}
}

// Init loads the archive list.
func (m Model) Init() tea.Cmd {
	return loadArchivesCmd(m.d)
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		return m, nil

	case archivesMsg:
		m.archives = msg.archives
		m.lastErr = msg.err
		if m.selected >= len(m.archives) {
			m.selected = max(0, len(m.archives)-1)
		}
		return m, nil

	case filesMsg:
		m.files = msg.files
		m.lastErr = msg.err
		m.viewingFiles = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Back):
			if m.viewingFiles {
				m.viewingFiles = false
				m.files = nil
			}
			return m, nil

		case key.Matches(msg, m.keyMap.Up):
			if !m.viewingFiles && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case key.Matches(msg, m.keyMap.Down):
			if !m.viewingFiles && m.selected < len(m.archives)-1 {
				m.selected++
			}
			return m, nil

		case key.Matches(msg, m.keyMap.Select):
			if !m.viewingFiles && len(m.archives) > 0 {
				return m, loadFilesCmd(m.d, m.archives[m.selected])
			}
			return m, nil
		}
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	if !m.ready {
		return "loading...\n"
	}
	var b strings.Builder
	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()) + "\n\n")
	}

	if m.viewingFiles {
		b.WriteString(headerStyle.Render(fmt.Sprintf("files: %s", m.archives[m.selected].Name)) + "\n\n")
		for _, f := range m.files {
			b.WriteString(fmt.Sprintf("%s %6d %6d %10d  %s\n", f.Mode, f.UID, f.GID, f.Size, f.Path))
		}
		b.WriteString("\n" + dimStyle.Render("esc: back  q: quit"))
		return b.String()
	}

	b.WriteString(headerStyle.Render("installed archives") + "\n\n")
	for i, a := range m.archives {
		line := fmt.Sprintf("%-6d %-36s %-20s %s", a.Serial, a.UUID, a.Date, a.Name)
		if i == m.selected {
			b.WriteString(selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n" + dimStyle.Render("↑/↓: move  enter: files  q: quit"))
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
