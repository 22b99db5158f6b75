package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type viewerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func newViewerModel(title, content string) *viewerModel {
	return &viewerModel{title: title, content: content}
}

func (m *viewerModel) Init() tea.Cmd {
	return nil
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		chrome := lipgloss.Height(m.header()) + lipgloss.Height(m.footer())
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *viewerModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m *viewerModel) header() string {
	return titleStyle.Render(m.title)
}

func (m *viewerModel) footer() string {
	pct := 0.0
	if m.ready {
		pct = m.viewport.ScrollPercent() * 100
	}
	return helpStyle.Render(fmt.Sprintf("%3.0f%%  ↑/↓ scroll • q quit", pct))
}

func runInteractive(title, content string) error {
	p := tea.NewProgram(newViewerModel(title, content), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
