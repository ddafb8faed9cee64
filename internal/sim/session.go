// Package sim runs the deterministic tick loop. A Session owns one level,
// one random source and one special list, and advances them in a fixed
// order so recorded demos and save states replay bit for bit.
package sim

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/rng"
	"github.com/vovakirdan/sectorsim/internal/special"
)

var (
	// ErrPaused is returned when stepping a paused session.
	ErrPaused = errors.New("sim: session is paused")

	// ErrUnloaded is returned when using a session after Unload.
	ErrUnloaded = errors.New("sim: level unloaded")
)

// Session is one running simulation. It is not safe for concurrent use;
// independent sessions share nothing.
type Session struct {
	cfg        core.RuntimeConfig
	lvl        *level.Level
	src        *rng.Counting
	list       *special.List
	consumers  []Consumer
	pending    []Trigger
	tick       uint64
	startIndex uint32
	lastCalls  uint64
	paused     bool
	unloaded   bool
	held       []special.SectorEffect // paused by Pause, resumed by Resume
	onApply    func(Trigger)
	logger     *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Sessions log nothing by default.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConsumer registers a consumer. Consumers run in registration order.
func WithConsumer(c Consumer) Option {
	return func(s *Session) {
		s.consumers = append(s.consumers, c)
	}
}

// WithTriggers schedules triggers before the first tick.
func WithTriggers(ts ...Trigger) Option {
	return func(s *Session) {
		s.pending = append(s.pending, cloneTriggers(ts)...)
	}
}

// New creates a session on lvl driven by src. Specials placed by the map's
// sector specials are spawned immediately, in table order, and may already
// draw from src.
func New(lvl *level.Level, src rng.Source, cfg core.RuntimeConfig, opts ...Option) (*Session, error) {
	if lvl == nil || src == nil {
		return nil, fmt.Errorf("sim: level and random source are required")
	}

	s := &Session{
		cfg:        cfg,
		lvl:        lvl,
		src:        rng.NewCounting(src),
		list:       special.NewList(),
		startIndex: src.Index(),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, t := range s.pending {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	SortTriggers(s.pending)

	s.watchList()

	if err := s.spawnMapSpecials(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) watchList() {
	s.list.OnRemove(func(e special.SectorEffect) {
		s.logger.Debug("special removed", "tick", s.tick, "kind", e.Kind(), "state", e.State())
	})
}

func (s *Session) spawnMapSpecials() error {
	ctx := s.context()
	var spawnErr error
	s.lvl.Each(func(sec *level.Sector) {
		if spawnErr != nil || sec.Special == 0 {
			return
		}
		k, ok := registry.ForSectorSpecial(sec.Special)
		if !ok {
			return
		}
		if _, err := s.spawn(ctx, k, sec.ID, nil); err != nil {
			spawnErr = fmt.Errorf("sim: sector %d special %d: %w", sec.ID, sec.Special, err)
		}
	})
	return spawnErr
}

// spawn starts kind k on one sector. It returns nil without an error when
// the kind's plane is already busy or the kind declined.
func (s *Session) spawn(ctx *special.Context, k registry.Kind, sector level.SectorID, args registry.Args) (special.SectorEffect, error) {
	if s.list.Busy(sector, k.Plane) {
		s.logger.Debug("plane busy, skipped", "tick", s.tick, "kind", k.Name, "sector", sector, "plane", k.Plane)
		return nil, nil
	}
	e, err := k.Spawn(ctx, s.list, sector, args)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	if err := s.list.Add(e); err != nil {
		return nil, err
	}
	s.logger.Debug("special started", "tick", s.tick, "kind", k.Name, "sector", sector)
	return e, nil
}

func (s *Session) context() *special.Context {
	return &special.Context{
		Level:  s.lvl,
		Random: s.src,
		Tick:   s.tick,
		Strict: s.cfg.Strict,
	}
}

// Tick returns the number of completed ticks.
func (s *Session) Tick() uint64 { return s.tick }

// Index returns the random source's current index.
func (s *Session) Index() uint32 { return s.src.Index() }

// StartIndex returns the index the session was created with, before map
// specials drew from it.
func (s *Session) StartIndex() uint32 { return s.startIndex }

// LastCalls returns how many random steps the last tick consumed.
func (s *Session) LastCalls() uint64 { return s.lastCalls }

// Level returns the session's level.
func (s *Session) Level() *level.Level { return s.lvl }

// List returns the live special registry.
func (s *Session) List() *special.List { return s.list }

// Config returns the runtime configuration.
func (s *Session) Config() core.RuntimeConfig { return s.cfg }

// Consumers returns the registered consumers in run order.
func (s *Session) Consumers() []Consumer { return s.consumers }

// Pending returns the triggers not yet applied.
func (s *Session) Pending() []Trigger { return cloneTriggers(s.pending) }

// Paused reports whether the whole session is paused.
func (s *Session) Paused() bool { return s.paused }

// Schedule queues triggers for future ticks.
func (s *Session) Schedule(ts ...Trigger) error {
	if s.unloaded {
		return ErrUnloaded
	}
	for _, t := range ts {
		if t.Tick < s.tick {
			return fmt.Errorf("sim: trigger %s is before current tick %d", t, s.tick)
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.pending = append(s.pending, cloneTriggers(ts)...)
	SortTriggers(s.pending)
	return nil
}

// Apply runs a trigger now, at the current tick boundary. The trigger's
// Tick is set to the current tick.
func (s *Session) Apply(t Trigger) error {
	if s.unloaded {
		return ErrUnloaded
	}
	t.Tick = s.tick
	if err := t.Validate(); err != nil {
		return err
	}
	return s.apply(s.context(), t)
}

func (s *Session) apply(ctx *special.Context, t Trigger) error {
	if s.onApply != nil {
		s.onApply(t)
	}
	s.logger.Debug("trigger", "tick", s.tick, "action", t.Action, "kind", t.Kind, "tag", t.Tag)

	sectors := s.lvl.SectorsByTag(t.Tag)
	if t.Action == ActionStart {
		k, err := registry.Lookup(t.Kind)
		if err != nil {
			return err
		}
		for _, id := range sectors {
			e, err := s.spawn(ctx, k, id, t.Args)
			if err != nil {
				return fmt.Errorf("sim: %s: sector %d: %w", t, id, err)
			}
			if e != nil && s.paused {
				e.Pause()
				s.held = append(s.held, e)
			}
		}
		return nil
	}

	set := mapset.New[level.SectorID]()
	for _, id := range sectors {
		set.Put(id)
	}
	for _, e := range s.list.Matching(set) {
		if t.Kind != "" && e.Kind() != t.Kind {
			continue
		}
		switch t.Action {
		case ActionPause:
			s.unhold(e)
			e.Pause()
		case ActionResume:
			if !s.paused {
				e.Resume()
			} else if e.IsPaused() && !s.isHeld(e) {
				s.held = append(s.held, e)
			}
		case ActionFree:
			s.unhold(e)
			e.Free()
		case ActionDestroy:
			s.unhold(e)
			e.FinalizeDestroy()
		}
	}
	return nil
}

// unhold drops e from the specials a session-wide Pause will resume, so an
// explicit pause outlives the session pause.
func (s *Session) unhold(e special.SectorEffect) {
	for i, h := range s.held {
		if h == e {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return
		}
	}
}

// isHeld reports whether e is paused only by the session-wide Pause.
func (s *Session) isHeld(e special.SectorEffect) bool {
	for _, h := range s.held {
		if h == e {
			return true
		}
	}
	return false
}

// Step advances the session by one tick: due triggers, then every special
// in registration order, then every consumer in registration order.
func (s *Session) Step() error {
	if s.unloaded {
		return ErrUnloaded
	}
	if s.paused {
		return ErrPaused
	}

	s.src.Reset()
	ctx := s.context()

	for len(s.pending) > 0 && s.pending[0].Tick <= s.tick {
		t := s.pending[0]
		s.pending = s.pending[1:]
		if err := s.apply(ctx, t); err != nil {
			return err
		}
	}

	s.list.Tick(ctx)
	for _, c := range s.consumers {
		c.Consume(ctx)
	}

	s.lastCalls = s.src.Calls()
	s.tick++
	return nil
}

// Run steps n times, stopping at the first error.
func (s *Session) Run(n uint64) error {
	for i := uint64(0); i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Pause pauses every active special and stops the session from stepping.
// Specials that were already paused individually stay paused after Resume.
func (s *Session) Pause() {
	if s.paused || s.unloaded {
		return
	}
	s.held = s.list.PauseAll()
	s.paused = true
	s.logger.Info("session paused", "tick", s.tick, "specials", len(s.held))
}

// Resume undoes Pause.
func (s *Session) Resume() {
	if !s.paused {
		return
	}
	for _, e := range s.held {
		e.Resume()
	}
	s.held = nil
	s.paused = false
	s.logger.Info("session resumed", "tick", s.tick)
}

// Unload force-terminates every special. The session cannot be stepped
// afterwards.
func (s *Session) Unload() {
	if s.unloaded {
		return
	}
	n := s.list.Len()
	s.list.DestroyAll()
	s.pending = nil
	s.held = nil
	s.unloaded = true
	s.logger.Info("level unloaded", "tick", s.tick, "destroyed", n)
}
