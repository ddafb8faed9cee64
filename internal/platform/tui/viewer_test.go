package tui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	_ "github.com/vovakirdan/sectorsim/internal/lights"
	_ "github.com/vovakirdan/sectorsim/internal/movers"
	"github.com/vovakirdan/sectorsim/internal/rng"
	"github.com/vovakirdan/sectorsim/internal/sim"
)

func hangarFactory(t *testing.T) SessionFactory {
	t.Helper()
	return func() (*sim.Session, error) {
		lvl, err := level.Builtin("hangar")
		if err != nil {
			return nil, err
		}
		return sim.New(lvl, rng.NewCompat(1), core.DefaultConfig(),
			sim.WithTriggers(sim.Trigger{Action: sim.ActionStart, Kind: "door_normal", Tag: 1}))
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m ViewerModel, msg tea.Msg) ViewerModel {
	t.Helper()
	next, _ := m.Update(msg)
	vm, ok := next.(ViewerModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return vm
}

func TestViewerTicks(t *testing.T) {
	m := NewViewerModel("hangar", 0, hangarFactory(t), 100, 30)
	if m.Session() == nil {
		t.Fatal("viewer should build a session")
	}

	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))
	if m.Session().Tick() != 2 {
		t.Errorf("Tick() = %d, expected 2", m.Session().Tick())
	}
	if got := m.Session().Level().Sector(1).Ceiling; got != core.FromInt(4) {
		t.Errorf("door ceiling = %v, expected 4", got)
	}
	if !strings.Contains(m.View(), "tick 2") {
		t.Error("view should show the tick")
	}
}

func TestViewerSpeed(t *testing.T) {
	m := NewViewerModel("hangar", 0, hangarFactory(t), 100, 30)

	m = update(t, m, runes("+"))
	m = update(t, m, runes("+"))
	if m.Speed() != 4 {
		t.Fatalf("Speed() = %d, expected 4", m.Speed())
	}
	m = update(t, m, TickMsg(time.Now()))
	if m.Session().Tick() != 4 {
		t.Errorf("Tick() = %d, expected 4", m.Session().Tick())
	}

	for i := 0; i < 5; i++ {
		m = update(t, m, runes("-"))
	}
	if m.Speed() != 1 {
		t.Errorf("Speed() = %d, expected 1", m.Speed())
	}
}

func TestViewerPauseAndStep(t *testing.T) {
	m := NewViewerModel("hangar", 0, hangarFactory(t), 100, 30)
	m = update(t, m, TickMsg(time.Now()))

	m = update(t, m, runes("p"))
	if !m.Session().Paused() {
		t.Fatal("p should pause the session")
	}
	m = update(t, m, TickMsg(time.Now()))
	if m.Session().Tick() != 1 {
		t.Errorf("paused viewer ticked to %d", m.Session().Tick())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show the pause")
	}

	m = update(t, m, runes("."))
	if m.Session().Tick() != 2 || !m.Session().Paused() {
		t.Errorf("step: Tick() = %d paused %v", m.Session().Tick(), m.Session().Paused())
	}

	m = update(t, m, runes("p"))
	m = update(t, m, TickMsg(time.Now()))
	if m.Session().Tick() != 3 {
		t.Errorf("resumed viewer at tick %d, expected 3", m.Session().Tick())
	}
}

func TestViewerStopsAtEnd(t *testing.T) {
	m := NewViewerModel("hangar", 3, hangarFactory(t), 100, 30)
	for i := 0; i < 6; i++ {
		m = update(t, m, TickMsg(time.Now()))
	}
	if m.Session().Tick() != 3 {
		t.Errorf("Tick() = %d, expected 3", m.Session().Tick())
	}
	if !strings.Contains(m.View(), "END") {
		t.Error("view should mark the end")
	}
}

func TestViewerRestart(t *testing.T) {
	m := NewViewerModel("hangar", 0, hangarFactory(t), 100, 30)
	m = update(t, m, TickMsg(time.Now()))
	old := m.Session()

	m = update(t, m, runes("r"))
	if m.Session() == old || m.Session().Tick() != 0 {
		t.Error("restart should build a fresh session")
	}
	if err := old.Step(); !errors.Is(err, sim.ErrUnloaded) {
		t.Error("restart should unload the old session")
	}
}

func TestViewerFactoryError(t *testing.T) {
	boom := errors.New("boom")
	m := NewViewerModel("broken", 0, func() (*sim.Session, error) { return nil, boom }, 80, 24)

	m = update(t, m, TickMsg(time.Now()))
	if !strings.Contains(m.View(), "boom") {
		t.Error("view should show the factory error")
	}
}

func TestViewerQuit(t *testing.T) {
	m := NewViewerModel("hangar", 0, hangarFactory(t), 100, 30)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !next.(ViewerModel).IsQuitting() {
		t.Error("ctrl+c should quit")
	}
	if next.(ViewerModel).View() != "" {
		t.Error("quitting viewer should render nothing")
	}
}

// ptylessSession is an SSH session whose client did not request a PTY.
type ptylessSession struct {
	ssh.Session
	stderr bytes.Buffer
	code   int
	closed bool
}

func (s *ptylessSession) Pty() (ssh.Pty, <-chan ssh.Window, bool) { return ssh.Pty{}, nil, false }
func (s *ptylessSession) User() string { return "guest" }
func (s *ptylessSession) Stderr() io.ReadWriter { return &s.stderr }

func (s *ptylessSession) Exit(code int) error {
	s.code = code
	return nil
}

func (s *ptylessSession) Close() error {
	s.closed = true
	return nil
}

func TestSSHWithoutPTYGetsMessage(t *testing.T) {
	srv := &SSHServer{factory: hangarFactory(t), logger: log.New(io.Discard)}
	sess := &ptylessSession{}

	model, _ := srv.teaHandler(sess)
	if model != nil {
		t.Error("no viewer should start without a PTY")
	}
	if !strings.Contains(sess.stderr.String(), "ssh -t") {
		t.Errorf("client message = %q", sess.stderr.String())
	}
	if sess.code != 1 || !sess.closed {
		t.Errorf("exit code %d closed %v", sess.code, sess.closed)
	}
}
