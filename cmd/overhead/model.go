package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/overhead/pkg/coordinates"
	"github.com/unklstewy/overhead/pkg/ticker"
)

// boardChangedMsg tells the model to take a fresh board snapshot.
type boardChangedMsg struct{}

// refresher is the part of ticker.Scheduler the model drives.
type refresher interface {
	Refresh()
}

type model struct {
	board     *ticker.Board
	scheduler refresher
	observer  coordinates.Geographic
	changes   <-chan struct{}
	snap      ticker.Snapshot
}

func newModel(board *ticker.Board, scheduler refresher, observer coordinates.Geographic, changes <-chan struct{}) model {
	return model{
		board:     board,
		scheduler: scheduler,
		observer:  observer,
		changes:   changes,
		snap:      board.Snapshot(),
	}
}

// waitForChange blocks until the board signals a change. The board never
// blocks on the channel, so several changes may collapse into one message.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return boardChangedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.scheduler.Refresh()
		}
	case boardChangedMsg:
		m.snap = m.board.Snapshot()
		return m, waitForChange(m.changes)
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	flapStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")).
			Background(lipgloss.Color("236"))

	scrambleStyle = flapStyle.Foreground(lipgloss.Color("244"))

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("OVERHEAD"))
	s.WriteString("\n\n")

	cell := flapStyle
	if m.snap.State == ticker.StateRevealing {
		cell = scrambleStyle
	}
	for _, row := range m.snap.Rows {
		s.WriteString(renderRow(row, cell))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	s.WriteString(statusStyle.Render(fmt.Sprintf("%s  %.4f, %.4f",
		m.snap.State, m.observer.Latitude, m.observer.Longitude)))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("r: refresh  q: quit"))
	s.WriteString("\n")

	return s.String()
}

// renderRow draws each cell as its own flap tile.
func renderRow(row string, style lipgloss.Style) string {
	tiles := make([]string, 0, ticker.Cols)
	for _, ch := range row {
		tiles = append(tiles, style.Render(" "+string(ch)+" "))
	}
	return strings.Join(tiles, " ")
}
