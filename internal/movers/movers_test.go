package movers

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/sectorsim/internal/core"
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

func (r *rig) start(t *testing.T, kind string, sector level.SectorID, args registry.Args) special.SectorEffect {
	t.Helper()
	k, err := registry.Lookup(kind)
	if err != nil {
		t.Fatalf("Lookup(%s) failed: %v", kind, err)
	}
	e, err := k.Spawn(r.ctx, r.list, sector, args)
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

func TestMovePlane(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		speed    core.Fixed
		dest     int
		dir      int
		expected int
		result   moveResult
	}{
		{"down step", 10, core.FracUnit, 0, dirDown, 9, moveOK},
		{"down onto dest", 1, core.FracUnit, 0, dirDown, 0, moveOK},
		{"down past dest", 0, core.FracUnit, 0, dirDown, 0, movePastDest},
		{"up step", 0, 2 * core.FracUnit, 10, dirUp, 2, moveOK},
		{"up past dest", 9, 2 * core.FracUnit, 10, dirUp, 10, movePastDest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &level.Sector{Floor: core.FromInt(tc.start), Ceiling: core.FromInt(200)}
			res := movePlane(s, level.PlaneFloor, tc.speed, core.FromInt(tc.dest), tc.dir)
			if res != tc.result {
				t.Errorf("result = %d, expected %d", res, tc.result)
			}
			if s.Floor != core.FromInt(tc.expected) {
				t.Errorf("floor = %v, expected %d", s.Floor, tc.expected)
			}
			if s.Ceiling != core.FromInt(200) {
				t.Error("floor move touched the ceiling")
			}
		})
	}
}

func TestDoorNormalCycle(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "door_normal", 1, nil)
	d := e.(*Door)
	s := r.lvl.Sector(1)

	r.run(59)
	if s.Ceiling != core.FromInt(116) || d.Direction() != dirWait {
		t.Fatalf("after opening: ceiling %v direction %d, expected 116 and waiting", s.Ceiling, d.Direction())
	}

	r.run(150)
	if d.Direction() != dirDown || s.Ceiling != core.FromInt(116) {
		t.Fatalf("after wait: ceiling %v direction %d, expected closing from 116", s.Ceiling, d.Direction())
	}

	r.run(58)
	if d.Terminated() || s.Ceiling != 0 {
		t.Fatalf("door should sit closed for one tick before finishing, ceiling %v", s.Ceiling)
	}
	r.run(1)
	if !d.Terminated() || r.list.Len() != 0 {
		t.Error("door should free itself once closed")
	}
	if r.list.Busy(1, level.PlaneCeiling) {
		t.Error("finished door still claims the ceiling")
	}
}

func TestDoorBlazeOpen(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "door_blaze_open", 1, nil)

	r.run(15)
	if r.lvl.Sector(1).Ceiling != core.FromInt(116) {
		t.Errorf("ceiling = %v, expected 116", r.lvl.Sector(1).Ceiling)
	}
	if !e.Terminated() {
		t.Error("blazing open door should finish at the top")
	}
}

func TestDoorCloseIn30FromMap(t *testing.T) {
	r := newRig(t)
	s := r.lvl.Sector(5)
	s.Special = closeIn30Special

	k, ok := registry.ForSectorSpecial(closeIn30Special)
	if !ok {
		t.Fatal("sector special 10 is not registered")
	}
	e, err := k.Spawn(r.ctx, r.list, 5, nil)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if s.Special != 0 {
		t.Error("map door should clear the sector special")
	}
	if e.Kind() != "door_close_in_30" {
		t.Errorf("Kind() = %q, expected door_close_in_30", e.Kind())
	}
	d := e.(*Door)
	if d.Direction() != dirWait || d.countdown != DoorClose30 {
		t.Errorf("direction %d countdown %d", d.Direction(), d.countdown)
	}

	restored, err := registry.Restore(r.lvl.Clone(), e.Save())
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if restored.Kind() != "door_close_in_30" {
		t.Errorf("restored Kind() = %q", restored.Kind())
	}
}

func TestDoorKeepsKindAfterProgramChange(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "door_raise_in_5mins", 1, nil)
	r.run(DoorRaiseIn5m + 1)

	d := e.(*Door)
	if d.Direction() != dirUp {
		t.Fatalf("direction %d, door should be opening", d.Direction())
	}
	if e.Kind() != "door_raise_in_5mins" {
		t.Errorf("Kind() = %q, expected door_raise_in_5mins", e.Kind())
	}
}

func TestFloorRaise(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "floor_raise", 2, nil)
	f := e.(*Floor)

	if f.Dest() != core.FromInt(128) {
		t.Fatalf("Dest() = %v, expected lowest neighbor ceiling 128", f.Dest())
	}
	r.run(64)
	if e.Terminated() || r.lvl.Sector(2).Floor != core.FromInt(128) {
		t.Fatalf("floor = %v after 64 ticks", r.lvl.Sector(2).Floor)
	}
	r.run(1)
	if !e.Terminated() {
		t.Error("floor should free itself at its destination")
	}
}

func TestFloorTurboLowerAtDest(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "floor_turbo_lower", 5, nil)

	if got := e.(*Floor).Dest(); got != core.FromInt(64) {
		t.Errorf("Dest() = %v, expected 64 without the +8 offset", got)
	}
	r.run(1)
	if !e.Terminated() || r.lvl.Sector(5).Floor != core.FromInt(64) {
		t.Error("turbo lower already at its destination should finish on the first tick")
	}
}

func TestFloorLowerChangeSettles(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "floor_lower_change", 0, nil)
	s := r.lvl.Sector(0)

	r.run(8)
	if s.Floor != core.FromInt(-8) || s.FloorPic != "FLOOR4_8" {
		t.Fatalf("floor %v pic %s before arrival", s.Floor, s.FloorPic)
	}
	r.run(1)
	if !e.Terminated() {
		t.Fatal("floor should have finished")
	}
	if s.FloorPic != "NUKAGE1" || s.Special != 17 {
		t.Errorf("texture change not applied: pic %s special %d", s.FloorPic, s.Special)
	}
}

func TestFloorDestroyDoesNotSettle(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "floor_lower_change", 0, nil)
	r.run(3)

	e.FinalizeDestroy()
	s := r.lvl.Sector(0)
	if s.FloorPic != "FLOOR4_8" || s.Floor != core.FromInt(-3) {
		t.Errorf("destroy changed the sector: pic %s floor %v", s.FloorPic, s.Floor)
	}
}

func TestCeilingCrusherReverses(t *testing.T) {
	tests := []struct {
		kind      string
		downTicks int
		upTicks   int
	}{
		{"ceiling_crush_raise", 121, 121},
		{"ceiling_fast_crush", 61, 61},
	}

	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			r := newRig(t)
			e := r.start(t, tc.kind, 12, nil)
			c := e.(*Ceiling)
			s := r.lvl.Sector(12)

			r.run(tc.downTicks)
			if s.Ceiling != core.FromInt(8) || c.Direction() != dirUp {
				t.Fatalf("bottom: ceiling %v direction %d", s.Ceiling, c.Direction())
			}
			r.run(tc.upTicks)
			if s.Ceiling != core.FromInt(128) || c.Direction() != dirDown {
				t.Fatalf("top: ceiling %v direction %d", s.Ceiling, c.Direction())
			}
			if e.Terminated() {
				t.Error("crusher should run until stopped")
			}
		})
	}
}

func TestPlatDownWaitUpStay(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "plat_down_wait_up_stay", 2, nil)
	p := e.(*Plat)
	s := r.lvl.Sector(2)

	r.run(17)
	if s.Floor != 0 || p.Status() != PlatWaiting {
		t.Fatalf("after lowering: floor %v status %s", s.Floor, p.Status())
	}
	r.run(105)
	if p.Status() != PlatUp {
		t.Fatalf("after wait: status %s, expected up", p.Status())
	}
	r.run(16)
	if e.Terminated() || s.Floor != core.FromInt(64) {
		t.Fatalf("floor %v after raising", s.Floor)
	}
	r.run(1)
	if !e.Terminated() {
		t.Error("lift should stay up and finish")
	}
}

func TestPlatPerpetualDrawsDirection(t *testing.T) {
	tests := []struct {
		index    uint32
		expected PlatStatus
	}{
		{1, PlatUp},            // first byte 0
		{0xFFFFFFFF, PlatDown}, // first byte 255
	}

	for _, tc := range tests {
		r := newRig(t)
		r.ctx.Random = rng.NewCompat(tc.index)
		e := r.start(t, "plat_perpetual", 2, nil)

		if got := e.(*Plat).Status(); got != tc.expected {
			t.Errorf("index %#x: status %s, expected %s", tc.index, got, tc.expected)
		}
		if r.ctx.Random.Index() == tc.index {
			t.Errorf("index %#x: perpetual platform did not consume the random source", tc.index)
		}
	}
}

func TestStairsBuild(t *testing.T) {
	r := newRig(t)
	e := r.start(t, "stairs_build8", 3, nil)
	st := e.(*Stairs)

	expected := []core.Fixed{core.FromInt(8), core.FromInt(16), core.FromInt(24), core.FromInt(32)}
	if !reflect.DeepEqual(st.Steps(), expected) {
		t.Fatalf("Steps() = %v, expected %v", st.Steps(), expected)
	}

	refs := e.GetSectors(nil)
	var ids []level.SectorID
	for _, ref := range refs {
		ids = append(ids, ref.Sector)
	}
	if !reflect.DeepEqual(ids, []level.SectorID{3, 6, 8, 9}) {
		t.Errorf("GetSectors() sectors = %v", ids)
	}
	if !e.MultiSector() {
		t.Error("stair chain should be multi-sector")
	}

	r.run(33)
	if r.lvl.Sector(3).Floor != core.FromInt(8) || r.lvl.Sector(9).Floor != core.FromInt(33)/4 {
		t.Fatalf("after 33 ticks: step 3 %v step 9 %v", r.lvl.Sector(3).Floor, r.lvl.Sector(9).Floor)
	}
	if !reflect.DeepEqual(e.GetSectors(nil), refs) {
		t.Error("GetSectors() changed while steps were still moving")
	}

	r.run(95)
	if e.Terminated() {
		t.Fatal("stairs finished before the top step arrived")
	}
	r.run(1)
	if !e.Terminated() || r.lvl.Sector(9).Floor != core.FromInt(32) {
		t.Error("stairs should finish once every step has arrived")
	}
}

func TestStairsSkipBusyStep(t *testing.T) {
	r := newRig(t)
	r.start(t, "floor_raise24", 6, nil)
	e := r.start(t, "stairs_build8", 3, nil)

	if got := e.(*Stairs).Steps(); !reflect.DeepEqual(got, []core.Fixed{core.FromInt(8)}) {
		t.Errorf("Steps() = %v, expected only the start step", got)
	}
	if e.MultiSector() {
		t.Error("a single step is not multi-sector")
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	kinds := []struct {
		kind   string
		sector level.SectorID
	}{
		{"door_normal", 1},
		{"plat_perpetual", 2},
		{"stairs_turbo16", 3},
		{"ceiling_crush_raise", 12},
	}

	for _, k := range kinds {
		t.Run(k.kind, func(t *testing.T) {
			a := newRig(t)
			b := newRig(t)
			ea := a.start(t, k.kind, k.sector, nil)
			b.start(t, k.kind, k.sector, nil)
			a.run(10)
			b.run(10)

			ea.Pause()
			a.run(20)
			ea.Resume()
			a.run(1)
			b.run(1)

			if !reflect.DeepEqual(a.lvl.Snapshot(), b.lvl.Snapshot()) {
				t.Error("pause/resume round trip changed the outcome")
			}
		})
	}
}

func TestSaveRestoreContinues(t *testing.T) {
	kinds := []struct {
		kind   string
		sector level.SectorID
		ticks  int
	}{
		{"door_normal", 1, 70},
		{"floor_lower_change", 0, 4},
		{"ceiling_fast_crush", 12, 90},
		{"plat_blaze", 2, 30},
		{"stairs_build8", 3, 50},
	}

	for _, k := range kinds {
		t.Run(k.kind, func(t *testing.T) {
			r := newRig(t)
			e := r.start(t, k.kind, k.sector, nil)
			r.run(k.ticks)
			e.Pause()
			rec := e.Save()

			clone := r.lvl.Clone()
			restored, err := registry.Restore(clone, rec)
			if err != nil {
				t.Fatalf("Restore() failed: %v", err)
			}
			if !restored.IsPaused() {
				t.Error("paused flag not restored")
			}
			if !reflect.DeepEqual(restored.Save(), rec) {
				t.Errorf("restored record differs:\n got %+v\nwant %+v", restored.Save(), rec)
			}

			e.Resume()
			restored.Resume()
			other := &rig{lvl: clone, list: special.NewList(), ctx: &special.Context{Level: clone, Random: rng.NewCompat(9)}}
			if err := other.list.Add(restored); err != nil {
				t.Fatal(err)
			}
			r.run(200)
			other.run(200)
			if !reflect.DeepEqual(r.lvl.Snapshot(), clone.Snapshot()) {
				t.Error("restored special diverged from the original")
			}
		})
	}
}

func TestRestoreRejectsBadRecords(t *testing.T) {
	lvl, _ := level.Builtin("hangar")
	tests := []special.Record{
		{Kind: "door_normal"},
		{Kind: "door_normal", Sectors: []special.SectorRef{{Sector: 99, Plane: level.PlaneCeiling}}},
		{Kind: "floor_raise", Sectors: []special.SectorRef{{Sector: 2}}, Fields: map[string]int64{"type": 3}},
		{Kind: "stairs_build8"},
	}
	for _, rec := range tests {
		if _, err := registry.Restore(lvl, rec); err == nil {
			t.Errorf("Restore(%+v) should fail", rec)
		}
	}
}
