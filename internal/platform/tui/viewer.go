package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/sim"
)

// Viewer layout constants
const (
	maxSpeed     = 16 // Ticks per frame at the fastest setting
	tableReserve = 8  // Rows taken by title, status, borders and help
	minTableRows = 4
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tableStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// SessionFactory builds a fresh session. The viewer calls it on start and
// on every restart, so each call must return an independent session.
type SessionFactory func() (*sim.Session, error)

// ViewerModel is the Bubble Tea model that runs a session live and shows
// its sector table.
type ViewerModel struct {
	title    string
	factory  SessionFactory
	session  *sim.Session
	end      uint64 // Last tick to run; 0 runs until quit
	table    table.Model
	help     help.Model
	keys     ViewerKeyMap
	speed    int
	err      error
	width    int
	height   int
	quitting bool
}

// NewViewerModel creates a viewer and builds its first session.
func NewViewerModel(title string, end uint64, factory SessionFactory, width, height int) ViewerModel {
	h := help.New()
	h.Width = width

	m := ViewerModel{
		title:   title,
		factory: factory,
		end:     end,
		help:    h,
		keys:    DefaultViewerKeyMap(),
		speed:   1,
		width:   width,
		height:  height,
	}
	m.restart()
	return m
}

func (m *ViewerModel) restart() {
	m.session, m.err = m.factory()
	m.table = m.createTable()
	m.updateTableRows()
}

// createTable creates the sector table sized to the window.
func (m *ViewerModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Tag", Width: 4},
		{Title: "Floor", Width: 8},
		{Title: "Ceiling", Width: 8},
		{Title: "Light", Width: 5},
		{Title: "Flat", Width: 9},
		{Title: "Spc", Width: 4},
		{Title: "Controllers", Width: 40},
	}
	if w := m.width - 60; w > 40 {
		columns[len(columns)-1].Width = w
	}

	rows := m.height - tableReserve
	if rows < minTableRows {
		rows = minTableRows
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(rows),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows refreshes the table from the session's level.
func (m *ViewerModel) updateTableRows() {
	if m.session == nil {
		m.table.SetRows(nil)
		return
	}

	list := m.session.List()
	var rows []table.Row
	m.session.Level().Each(func(s *level.Sector) {
		var ctl []string
		for _, p := range []level.Plane{level.PlaneFloor, level.PlaneCeiling, level.PlaneLight} {
			if e, ok := list.Controller(s.ID, p); ok {
				ctl = append(ctl, fmt.Sprintf("%s:%s", p, e.Kind()))
			}
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", s.ID),
			fmt.Sprintf("%d", s.Tag),
			s.Floor.String(),
			s.Ceiling.String(),
			fmt.Sprintf("%d", s.Light),
			s.FloorPic,
			fmt.Sprintf("%d", s.Special),
			strings.Join(ctl, " "),
		})
	})
	m.table.SetRows(rows)
}

// advance steps the session up to n ticks, stopping at the end tick.
func (m *ViewerModel) advance(n int) {
	if m.session == nil || m.err != nil {
		return
	}
	for i := 0; i < n; i++ {
		if m.end > 0 && m.session.Tick() >= m.end {
			break
		}
		if err := m.session.Step(); err != nil {
			m.err = err
			break
		}
	}
	m.updateTableRows()
}

func (m ViewerModel) tickRate() int {
	if m.session == nil {
		return 35
	}
	return m.session.Config().TickRate
}

// Init starts the tick loop.
func (m ViewerModel) Init() tea.Cmd {
	return tickCmd(m.tickRate())
}

// Update handles messages for the viewer.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			if m.session != nil {
				m.session.Unload()
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Pause):
			if m.session != nil {
				if m.session.Paused() {
					m.session.Resume()
				} else {
					m.session.Pause()
				}
				m.updateTableRows()
			}
			return m, nil

		case key.Matches(msg, m.keys.Step):
			if m.session != nil && m.session.Paused() {
				m.session.Resume()
				m.advance(1)
				m.session.Pause()
			}
			return m, nil

		case key.Matches(msg, m.keys.Faster):
			if m.speed < maxSpeed {
				m.speed *= 2
			}
			return m, nil

		case key.Matches(msg, m.keys.Slower):
			if m.speed > 1 {
				m.speed /= 2
			}
			return m, nil

		case key.Matches(msg, m.keys.Restart):
			if m.session != nil {
				m.session.Unload()
			}
			m.restart()
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.updateTableRows()
		return m, nil

	case TickMsg:
		if m.session != nil && !m.session.Paused() {
			m.advance(m.speed)
		}
		return m, tickCmd(m.tickRate())
	}

	return m, nil
}

// View renders the viewer.
func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	if s := m.session; s != nil {
		status := fmt.Sprintf("tick %d (%.1fs)  index %d  live %d  speed x%d",
			s.Tick(), s.Config().Seconds(s.Tick()), s.Index(), s.List().Len(), m.speed)
		b.WriteString(statusStyle.Render(status))
		if s.Paused() {
			b.WriteString("  " + pausedStyle.Render("PAUSED"))
		} else if m.end > 0 && s.Tick() >= m.end {
			b.WriteString("  " + pausedStyle.Render("END"))
		}
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(tableStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// Session returns the session being shown.
func (m ViewerModel) Session() *sim.Session {
	return m.session
}

// Speed returns the ticks run per frame.
func (m ViewerModel) Speed() int {
	return m.speed
}

// IsQuitting returns true if the user asked to quit.
func (m ViewerModel) IsQuitting() bool {
	return m.quitting
}

// RunViewer runs the viewer in the local terminal.
func RunViewer(title string, end uint64, factory SessionFactory, width, height int) error {
	model := NewViewerModel(title, end, factory, width, height)
	if model.err != nil {
		return model.err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
