package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/rng"
)

var (
	// ErrNonDeterministic is returned when recording a clock-seeded session.
	ErrNonDeterministic = errors.New("sim: clock-seeded sessions cannot be recorded")

	// ErrDesync is returned when a replay does not reach the recorded digest.
	ErrDesync = errors.New("sim: demo desync")

	// ErrDemoEnded is returned when stepping past the last recorded tick.
	ErrDemoEnded = errors.New("sim: demo ended")
)

// Demo is a recorded session: the starting random index plus every trigger
// in the tick it was applied, and the digest the session reached.
type Demo struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Level       string        `yaml:"level"`
	StartIndex  uint32        `yaml:"start_index"`
	Ticks       uint64        `yaml:"ticks"`
	Triggers    []Trigger     `yaml:"triggers"`
	Hazard      *HazardConfig `yaml:"hazard,omitempty"`
	FinalDigest string        `yaml:"final_digest"`
	CreatedAt   time.Time     `yaml:"created_at"`
}

// Recorder captures the triggers applied to a session.
type Recorder struct {
	s    *Session
	demo Demo
}

// NewRecorder starts recording s, which must not have ticked yet.
// levelRef is how the level will be found again on replay (builtin name
// or path).
func NewRecorder(s *Session, name, levelRef string, hazard *HazardConfig) (*Recorder, error) {
	if s.cfg.RandomSeed {
		return nil, ErrNonDeterministic
	}
	if s.tick != 0 {
		return nil, fmt.Errorf("sim: recording must start at tick 0, session is at %d", s.tick)
	}

	r := &Recorder{
		s: s,
		demo: Demo{
			ID:         uuid.NewString(),
			Name:       name,
			Level:      levelRef,
			StartIndex: s.startIndex,
			Hazard:     hazard,
		},
	}
	s.onApply = func(t Trigger) {
		t.Tick = s.tick
		r.demo.Triggers = append(r.demo.Triggers, cloneTriggers([]Trigger{t})...)
	}
	return r, nil
}

// Session returns the recorded session.
func (r *Recorder) Session() *Session { return r.s }

// Finish stops recording and returns the demo.
func (r *Recorder) Finish() Demo {
	r.s.onApply = nil
	d := r.demo
	d.Ticks = r.s.tick
	d.FinalDigest = r.s.Digest()
	d.CreatedAt = time.Now().UTC()
	d.Triggers = cloneTriggers(r.demo.Triggers)
	return d
}

// Player replays a demo and can seek to any recorded tick. It keeps a save
// state every checkpoint interval; seeking restores the nearest checkpoint
// at or before the target and steps forward from there.
type Player struct {
	demo        Demo
	pristine    *level.Level
	cfg         core.RuntimeConfig
	opts        []Option
	s           *Session
	hazard      *Hazard
	interval    uint64
	checkpoints []SaveState
}

// NewPlayer prepares a replay of demo on lvl, which must be the level as
// loaded, before any tick.
func NewPlayer(demo Demo, lvl *level.Level, cfg core.RuntimeConfig, opts ...Option) (*Player, error) {
	interval := uint64(cfg.CheckpointInterval)
	if interval == 0 {
		interval = uint64(core.DefaultConfig().CheckpointInterval)
	}
	cfg.RandomSeed = false

	p := &Player{
		demo:     demo,
		pristine: lvl.Clone(),
		cfg:      cfg,
		opts:     opts,
		interval: interval,
	}

	s, err := p.fresh()
	if err != nil {
		return nil, err
	}
	p.s = s
	p.checkpoints = append(p.checkpoints, s.Save())
	return p, nil
}

func (p *Player) fresh() (*Session, error) {
	opts := append([]Option(nil), p.opts...)
	opts = append(opts, WithTriggers(p.demo.Triggers...))
	if p.demo.Hazard != nil {
		p.hazard = NewHazard(*p.demo.Hazard)
		opts = append(opts, WithConsumer(p.hazard))
	}
	return New(p.pristine.Clone(), rng.NewCompat(p.demo.StartIndex), p.cfg, opts...)
}

// Demo returns the demo being played.
func (p *Player) Demo() Demo { return p.demo }

// Session returns the replay session.
func (p *Player) Session() *Session { return p.s }

// Hazard returns the replayed hazard consumer, if the demo has one.
func (p *Player) Hazard() *Hazard { return p.hazard }

// Tick returns the replay position.
func (p *Player) Tick() uint64 { return p.s.Tick() }

// Checkpoints returns how many checkpoints have been taken.
func (p *Player) Checkpoints() int { return len(p.checkpoints) }

// Step replays one tick.
func (p *Player) Step() error {
	if p.s.Tick() >= p.demo.Ticks {
		return ErrDemoEnded
	}
	if err := p.s.Step(); err != nil {
		return err
	}
	t := p.s.Tick()
	if t%p.interval == 0 && t/p.interval == uint64(len(p.checkpoints)) {
		p.checkpoints = append(p.checkpoints, p.s.Save())
	}
	return nil
}

// Seek moves the replay to tick, backwards or forwards.
func (p *Player) Seek(tick uint64) error {
	if tick > p.demo.Ticks {
		return fmt.Errorf("sim: seek to %d past demo end %d", tick, p.demo.Ticks)
	}

	cur := p.s.Tick()
	k := tick / p.interval
	if k >= uint64(len(p.checkpoints)) {
		k = uint64(len(p.checkpoints)) - 1
	}
	base := k * p.interval

	// Step forward from the current position when no checkpoint is closer.
	if cur > tick || base > cur {
		if err := p.s.Restore(p.checkpoints[k]); err != nil {
			return fmt.Errorf("sim: seek: %w", err)
		}
		p.s.logger.Info("seek from checkpoint", "checkpoint", base, "target", tick)
	}

	for p.s.Tick() < tick {
		if err := p.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run replays to the end of the demo.
func (p *Player) Run() error {
	return p.Seek(p.demo.Ticks)
}

// Verify replays to the end and compares the final digest.
func (p *Player) Verify() error {
	if err := p.Run(); err != nil {
		return err
	}
	if got := p.s.Digest(); got != p.demo.FinalDigest {
		return fmt.Errorf("%w at tick %d: digest %s, recorded %s", ErrDesync, p.s.Tick(), shortDigest(got), shortDigest(p.demo.FinalDigest))
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
