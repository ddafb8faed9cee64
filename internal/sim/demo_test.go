package sim

import (
	"errors"
	"testing"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/rng"
)

func recordTour(t *testing.T, ticks uint64) (Demo, *Hazard) {
	t.Helper()
	hz := HazardConfig{Sector: 0, Health: 100}
	h := NewHazard(hz)
	s := newSession(t, 21, WithTriggers(tour()...), WithConsumer(h))
	r, err := NewRecorder(s, "tour", "hangar", &hz)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	live := map[uint64]Trigger{
		120: {Action: ActionPause, Kind: "plat_perpetual", Tag: 2},
		180: {Action: ActionResume, Tag: 2},
		330: {Action: ActionStart, Kind: "floor_lower_change", Tag: 1},
	}
	for s.Tick() < ticks {
		if trg, ok := live[s.Tick()]; ok {
			if err := s.Apply(trg); err != nil {
				t.Fatalf("Apply() failed: %v", err)
			}
		}
		if err := s.Step(); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}
	return r.Finish(), h
}

func newPlayer(t *testing.T, d Demo) *Player {
	t.Helper()
	p, err := NewPlayer(d, hangar(t), strictConfig())
	if err != nil {
		t.Fatalf("NewPlayer() failed: %v", err)
	}
	return p
}

func TestRecordAndVerify(t *testing.T) {
	d, h := recordTour(t, 700)

	if d.ID == "" || d.StartIndex != 21 || d.Ticks != 700 {
		t.Errorf("demo header = %q %d %d", d.ID, d.StartIndex, d.Ticks)
	}
	if len(d.Triggers) != len(tour())+3 {
		t.Errorf("recorded %d triggers, expected %d", len(d.Triggers), len(tour())+3)
	}
	for i := 1; i < len(d.Triggers); i++ {
		if d.Triggers[i].Tick < d.Triggers[i-1].Tick {
			t.Fatalf("triggers out of order at %d", i)
		}
	}

	p := newPlayer(t, d)
	if err := p.Verify(); err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if p.Hazard() == nil || p.Hazard().Health() != h.Health() {
		t.Error("replayed hazard should match the recorded one")
	}
	if err := p.Step(); !errors.Is(err, ErrDemoEnded) {
		t.Errorf("Step() past end error = %v", err)
	}
}

func TestTriggersDuringSessionPauseReplay(t *testing.T) {
	s := newSession(t, 5)
	r, err := NewRecorder(s, "paused", "hangar", nil)
	if err != nil {
		t.Fatal(err)
	}
	apply := func(trg Trigger) {
		t.Helper()
		if err := s.Apply(trg); err != nil {
			t.Fatalf("Apply(%s) failed: %v", trg, err)
		}
	}
	controller := func(tag int, plane level.Plane) string {
		t.Helper()
		e, ok := s.List().Controller(s.Level().SectorsByTag(tag)[0], plane)
		if !ok {
			t.Fatalf("tag %d %s has no controller", tag, plane)
		}
		if e.IsPaused() {
			return "paused"
		}
		return "active"
	}

	apply(Trigger{Action: ActionStart, Kind: "ceiling_crush_raise", Tag: 6})
	apply(Trigger{Action: ActionStart, Kind: "plat_perpetual", Tag: 2})
	if err := s.Run(10); err != nil {
		t.Fatal(err)
	}
	apply(Trigger{Action: ActionPause, Tag: 2})
	if err := s.Run(10); err != nil {
		t.Fatal(err)
	}

	s.Pause()
	apply(Trigger{Action: ActionPause, Kind: "ceiling_crush_raise", Tag: 6})
	apply(Trigger{Action: ActionResume, Tag: 2})
	apply(Trigger{Action: ActionStart, Kind: "door_normal", Tag: 1})
	if got := controller(1, level.PlaneCeiling); got != "paused" {
		t.Errorf("door started during session pause is %s", got)
	}
	s.Resume()
	if err := s.Run(40); err != nil {
		t.Fatal(err)
	}

	if got := controller(6, level.PlaneCeiling); got != "paused" {
		t.Errorf("crusher paused during session pause is %s after Resume", got)
	}
	if got := controller(2, level.PlaneFloor); got != "active" {
		t.Errorf("platform resumed during session pause is %s", got)
	}
	if got := controller(1, level.PlaneCeiling); got != "active" {
		t.Errorf("door is %s after Resume", got)
	}

	if err := newPlayer(t, r.Finish()).Verify(); err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
}

func TestVerifyDetectsDesync(t *testing.T) {
	d, _ := recordTour(t, 200)
	d.FinalDigest = "0000"

	if err := newPlayer(t, d).Verify(); !errors.Is(err, ErrDesync) {
		t.Errorf("Verify() error = %v, expected ErrDesync", err)
	}
}

func TestSeekMatchesStraightReplay(t *testing.T) {
	d, _ := recordTour(t, 650)

	straight := newPlayer(t, d)
	want := make(map[uint64]string)
	for straight.Tick() < d.Ticks {
		if err := straight.Step(); err != nil {
			t.Fatal(err)
		}
		want[straight.Tick()] = straight.Session().Digest()
	}
	if straight.Checkpoints() != 7 {
		t.Errorf("Checkpoints() = %d, expected 7", straight.Checkpoints())
	}

	p := newPlayer(t, d)
	for _, target := range []uint64{400, 130, 599, 1, 250, 250, 650, 99} {
		if err := p.Seek(target); err != nil {
			t.Fatalf("Seek(%d) failed: %v", target, err)
		}
		if p.Tick() != target {
			t.Fatalf("Tick() = %d after Seek(%d)", p.Tick(), target)
		}
		if got := p.Session().Digest(); got != want[target] {
			t.Errorf("Seek(%d) digest differs from straight replay", target)
		}
	}

	if err := p.Seek(651); err == nil {
		t.Error("Seek() past the end should fail")
	}
}

func TestRecorderRejects(t *testing.T) {
	s := newSession(t, 1)
	_ = s.Step()
	if _, err := NewRecorder(s, "late", "hangar", nil); err == nil {
		t.Error("recording a session that already ticked should fail")
	}

	cfg := strictConfig()
	cfg.RandomSeed = true
	s2, err := New(hangar(t), rng.NewCompat(1), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewRecorder(s2, "clock", "hangar", nil); !errors.Is(err, ErrNonDeterministic) {
		t.Errorf("NewRecorder() error = %v, expected ErrNonDeterministic", err)
	}
}
