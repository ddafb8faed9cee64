package lights

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/rng"
	"github.com/vovakirdan/sectorsim/internal/special"
)

type rig struct {
	lvl  *level.Level
	list *special.List
	ctx  *special.Context
}

func newRig(t *testing.T) *rig {
	t.Helper()
	lvl, err := level.Builtin("hangar")
	if err != nil {
		t.Fatalf("Builtin(hangar) failed: %v", err)
	}
	return &rig{
		lvl:  lvl,
		list: special.NewList(),
		ctx:  &special.Context{Level: lvl, Random: rng.NewCompat(1), Strict: true},
	}
}

func (r *rig) start(t *testing.T, kind string, sector level.SectorID) special.SectorEffect {
	t.Helper()
	k, err := registry.Lookup(kind)
	if err != nil {
		t.Fatalf("Lookup(%s) failed: %v", kind, err)
	}
	e, err := k.Spawn(r.ctx, r.list, sector, nil)
	if err != nil {
		t.Fatalf("Spawn(%s) failed: %v", kind, err)
	}
	if err := r.list.Add(e); err != nil {
		t.Fatalf("Add(%s) failed: %v", kind, err)
	}
	return e
}

func (r *rig) run(n int) {
	for i := 0; i < n; i++ {
		r.list.Tick(r.ctx)
		r.ctx.Tick++
	}
}

func TestFireFlicker(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "fireflicker", 7)
	s := r.lvl.Sector(7)

	if dark, bright := e.(*FireFlicker).Range(); dark != 128 || bright != 208 {
		t.Fatalf("Range() = %d, %d, expected 128, 208", dark, bright)
	}

	// Bytes from index 1: 0, 1, 73, 141, 255 -> amounts 0, 16, 16, 16, 48.
	expected := []int{208, 192, 192, 192, 160}
	for i, want := range expected {
		r.run(4)
		if s.Light != want {
			t.Errorf("flicker %d: light %d, expected %d", i+1, s.Light, want)
		}
	}

	check := rng.NewCompat(1)
	for i := 0; i < len(expected); i++ {
		check.NextByte()
	}
	if r.ctx.Random.Index() != check.Index() {
		t.Error("flicker should draw exactly one byte every 4 ticks")
	}
}

func TestFlash(t *testing.T) {
	r := newRig(t)
	r.start(t, "flash", 0)
	s := r.lvl.Sector(0)

	steps := []struct {
		ticks int
		light int
	}{
		{1, 144},  // initial count (0&64)+1
		{2, 192},  // dark for (1&7)+1
		{64, 192}, // bright for (73&64)+1
		{1, 144},
	}
	for i, st := range steps {
		r.run(st.ticks)
		if s.Light != st.light {
			t.Errorf("step %d: light %d, expected %d", i, s.Light, st.light)
		}
	}
}

func TestStrobe(t *testing.T) {
	r := newRig(t)
	r.start(t, "strobe_fast", 12)
	s := r.lvl.Sector(12)

	r.run(1)
	if s.Light != 0 {
		t.Fatalf("light %d, expected 0 when no neighbor is darker", s.Light)
	}
	r.run(14)
	if s.Light != 0 {
		t.Fatalf("light %d, strobe should stay dark for 15 ticks", s.Light)
	}
	r.run(1)
	if s.Light != 144 {
		t.Fatalf("light %d, expected 144 after the dark phase", s.Light)
	}
	r.run(5)
	if s.Light != 0 {
		t.Errorf("light %d, bright phase should last 5 ticks", s.Light)
	}
}

func TestStrobeSyncUsesNoRandom(t *testing.T) {
	r := newRig(t)
	before := r.ctx.Random.Index()
	e := r.start(t, "strobe_slow_sync", 11)
	if r.ctx.Random.Index() != before {
		t.Error("synchronized strobe consumed random output")
	}
	if e.Kind() != "strobe_slow_sync" {
		t.Errorf("Kind() = %q, expected strobe_slow_sync", e.Kind())
	}
}

func TestStrobeKeepsDamageSpecial(t *testing.T) {
	r := newRig(t)
	r.lvl.Sector(12).Special = damageStrobeSpecial
	r.lvl.Sector(11).Special = 2

	k, ok := registry.ForSectorSpecial(damageStrobeSpecial)
	if !ok || k.Name != "strobe_fast" {
		t.Fatalf("ForSectorSpecial(4) = %q, %v", k.Name, ok)
	}
	r.start(t, "strobe_fast", 12)
	r.start(t, "strobe_fast", 11)

	if r.lvl.Sector(12).Special != damageStrobeSpecial {
		t.Error("damaging strobe should keep its sector special")
	}
	if r.lvl.Sector(11).Special != 0 {
		t.Error("plain strobe should clear its sector special")
	}
}

func TestGlow(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "glow", 0)
	g := e.(*Glow)
	s := r.lvl.Sector(0)

	r.run(6)
	if s.Light != 152 || g.direction != 1 {
		t.Fatalf("light %d direction %d, expected 152 rising", s.Light, g.direction)
	}
	r.run(5)
	if s.Light != 184 || g.direction != -1 {
		t.Errorf("light %d direction %d, expected 184 falling", s.Light, g.direction)
	}
}

func TestMapSpecialClearsSector(t *testing.T) {
	r := newRig(t)
	k, ok := registry.ForSectorSpecial(17)
	if !ok {
		t.Fatal("sector special 17 is not registered")
	}
	e, err := k.Spawn(r.ctx, r.list, 7, nil)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if e.Kind() != "fireflicker" || r.lvl.Sector(7).Special != 0 {
		t.Errorf("kind %q special %d", e.Kind(), r.lvl.Sector(7).Special)
	}
}

func TestFreeRestoresLight(t *testing.T) {
	r := newRig(t)
	a := r.start(t, "fireflicker", 7)
	b := r.start(t, "strobe_fast", 12)
	r.run(21)

	a.Free()
	b.FinalizeDestroy()

	if r.lvl.Sector(7).Light != 208 {
		t.Errorf("freed flicker left light at %d", r.lvl.Sector(7).Light)
	}
	if r.lvl.Sector(12).Light != 0 {
		t.Errorf("destroyed strobe should leave the light as is, got %d", r.lvl.Sector(12).Light)
	}
	if r.list.Busy(7, level.PlaneLight) || r.list.Busy(12, level.PlaneLight) {
		t.Error("terminated lights still claim their sectors")
	}
}

func TestPausedLightDrawsNoRandom(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "fireflicker", 7)
	e.Pause()

	before := r.ctx.Random.Index()
	light := r.lvl.Sector(7).Light
	r.run(40)
	if r.ctx.Random.Index() != before || r.lvl.Sector(7).Light != light {
		t.Error("paused flicker mutated the sector or consumed random output")
	}
}

func TestSaveRestoreContinues(t *testing.T) {
	kinds := []struct {
		kind   string
		sector level.SectorID
	}{
		{"fireflicker", 7},
		{"flash", 0},
		{"strobe_slow", 12},
		{"glow", 0},
	}

	for _, k := range kinds {
		t.Run(k.kind, func(t *testing.T) {
			r := newRig(t)
			e := r.start(t, k.kind, k.sector)
			r.run(23)
			rec := e.Save()

			clone := r.lvl.Clone()
			restored, err := registry.Restore(clone, rec)
			if err != nil {
				t.Fatalf("Restore() failed: %v", err)
			}
			if !reflect.DeepEqual(restored.Save(), rec) {
				t.Errorf("restored record differs:\n got %+v\nwant %+v", restored.Save(), rec)
			}

			other := &rig{
				lvl:  clone,
				list: special.NewList(),
				ctx:  &special.Context{Level: clone, Random: r.ctx.Random.CloneAt(r.ctx.Random.Index())},
			}
			if err := other.list.Add(restored); err != nil {
				t.Fatal(err)
			}
			r.run(150)
			other.run(150)
			if r.lvl.Sector(k.sector).Light != clone.Sector(k.sector).Light {
				t.Error("restored light diverged from the original")
			}
			if r.ctx.Random.Index() != other.ctx.Random.Index() {
				t.Error("restored light consumed a different amount of random output")
			}
		})
	}
}
