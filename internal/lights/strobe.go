package lights

import (
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// damageStrobeSpecial is the map special for a fast strobe on a damaging
// floor. The sector keeps it after the strobe spawns.
const damageStrobeSpecial = 4

// Strobe alternates between bright for 5 ticks and dark for darkTime ticks.
type Strobe struct {
	light
	kind       string
	count      int
	darkTime   int
	brightTime int
}

// NewStrobe starts a strobe on sector. Unsynchronized strobes draw a
// random initial delay from ctx.Random so neighboring lights drift apart.
func NewStrobe(ctx *special.Context, sector level.SectorID, darkTime int, inSync bool) (*Strobe, error) {
	s, err := sectorOf(ctx.Level, sector, "strobe")
	if err != nil {
		return nil, err
	}
	st := &Strobe{kind: strobeKind(darkTime, inSync), darkTime: darkTime, brightTime: StrobeBright}
	st.maxLight = s.Light
	st.minLight = ctx.Level.MinNeighborLight(sector, s.Light)
	if st.minLight == st.maxLight {
		st.minLight = 0
	}
	if s.Special != damageStrobeSpecial {
		s.Special = 0
	}
	if inSync {
		st.count = 1
	} else {
		st.count = (ctx.Random.NextByte() & 7) + 1
	}
	st.init(st, ctx.Level, sector)
	return st, nil
}

func strobeKind(darkTime int, inSync bool) string {
	kind := "strobe_fast"
	if darkTime == SlowDark {
		kind = "strobe_slow"
	}
	if inSync {
		kind += "_sync"
	}
	return kind
}

// Kind returns the registered kind name the strobe was started as.
func (st *Strobe) Kind() string { return st.kind }

// Think toggles the light when the interval runs out.
func (st *Strobe) Think(*special.Context) {
	st.count--
	if st.count != 0 {
		return
	}

	s := st.sec()
	if s.Light == st.minLight {
		s.Light = st.maxLight
		st.count = st.brightTime
	} else {
		s.Light = st.minLight
		st.count = st.darkTime
	}
}

// Save captures the strobe's progress.
func (st *Strobe) Save() special.Record {
	rec := st.record(st.Kind())
	rec.Set("count", int64(st.count))
	rec.Set("dark_time", int64(st.darkTime))
	rec.Set("bright_time", int64(st.brightTime))
	return rec
}

func restoreStrobe(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	st := &Strobe{kind: rec.Kind}
	d := special.NewDecoder(rec)
	st.count = int(d.Int("count"))
	st.darkTime = int(d.Int("dark_time"))
	st.brightTime = int(d.Int("bright_time"))
	if err := st.restore(st, lvl, rec, d); err != nil {
		return nil, err
	}
	return st, nil
}

func strobeSpawner(darkTime int, inSync bool) registry.Spawner {
	return func(ctx *special.Context, _ *special.List, sector level.SectorID, _ registry.Args) (special.SectorEffect, error) {
		return effect[*Strobe](NewStrobe(ctx, sector, darkTime, inSync))
	}
}

func init() {
	register(
		kindSpec{
			name:     "strobe_fast",
			title:    "Fast strobe",
			specials: []int{2, damageStrobeSpecial},
			spawn:    strobeSpawner(FastDark, false),
			restore:  restoreStrobe,
		},
		kindSpec{
			name:     "strobe_slow",
			title:    "Slow strobe",
			specials: []int{3},
			spawn:    strobeSpawner(SlowDark, false),
			restore:  restoreStrobe,
		},
		kindSpec{
			name:     "strobe_slow_sync",
			title:    "Slow strobe, synchronized",
			specials: []int{12},
			spawn:    strobeSpawner(SlowDark, true),
			restore:  restoreStrobe,
		},
		kindSpec{
			name:     "strobe_fast_sync",
			title:    "Fast strobe, synchronized",
			specials: []int{13},
			spawn:    strobeSpawner(FastDark, true),
			restore:  restoreStrobe,
		},
	)
}
