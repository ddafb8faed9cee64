package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/special"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	badStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// colorOutput is true when stdout is a terminal.
var colorOutput = term.IsTerminal(int(os.Stdout.Fd()))

// paint renders s with style only on a terminal, so piped output stays plain.
func paint(style lipgloss.Style, s string) string {
	if !colorOutput {
		return s
	}
	return style.Render(s)
}

// stateLabel formats a special's state with its color.
func stateLabel(st special.State) string {
	switch st {
	case special.StateActive:
		return paint(activeStyle, st.String())
	case special.StatePaused:
		return paint(pausedStyle, st.String())
	default:
		return paint(dimStyle, st.String())
	}
}

// printSectors prints the sector table with the special controlling each plane.
func printSectors(lvl *level.Level, list *special.List) {
	fmt.Println(paint(headerStyle, fmt.Sprintf("  %-4s %-4s %-8s %-8s %-5s %-9s %-4s  %s",
		"ID", "Tag", "Floor", "Ceiling", "Light", "FloorPic", "Spc", "Controllers")))

	lvl.Each(func(s *level.Sector) {
		var ctl []string
		for _, p := range []level.Plane{level.PlaneFloor, level.PlaneCeiling, level.PlaneLight} {
			if e, ok := list.Controller(s.ID, p); ok {
				ctl = append(ctl, fmt.Sprintf("%s=%s(%s)", p, e.Kind(), stateLabel(e.State())))
			}
		}
		controllers := paint(dimStyle, "-")
		if len(ctl) > 0 {
			controllers = strings.Join(ctl, " ")
		}
		fmt.Printf("  %-4d %-4d %-8s %-8s %-5d %-9s %-4d  %s\n",
			s.ID, s.Tag, s.Floor, s.Ceiling, s.Light, s.FloorPic, s.Special, controllers)
	})
}

// shortID trims a demo ID for listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
