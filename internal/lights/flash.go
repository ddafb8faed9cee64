package lights

import (
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// Flash switches between bright and dark at random intervals: up to 64
// ticks bright, up to 7 ticks dark.
type Flash struct {
	light
	count   int
	maxTime int
	minTime int
}

// NewFlash starts a random flash on sector and clears its sector special.
// The first interval is drawn from ctx.Random.
func NewFlash(ctx *special.Context, sector level.SectorID) (*Flash, error) {
	s, err := sectorOf(ctx.Level, sector, "flash")
	if err != nil {
		return nil, err
	}
	f := &Flash{maxTime: flashMaxTime, minTime: flashMinTime}
	f.maxLight = s.Light
	f.minLight = ctx.Level.MinNeighborLight(sector, s.Light)
	f.count = (ctx.Random.NextByte() & f.maxTime) + 1
	s.Special = 0
	f.init(f, ctx.Level, sector)
	return f, nil
}

// Kind returns the registered kind name.
func (f *Flash) Kind() string { return "flash" }

// Think toggles the light when the interval runs out.
func (f *Flash) Think(ctx *special.Context) {
	f.count--
	if f.count != 0 {
		return
	}

	s := f.sec()
	if s.Light == f.maxLight {
		s.Light = f.minLight
		f.count = (ctx.Random.NextByte() & f.minTime) + 1
	} else {
		s.Light = f.maxLight
		f.count = (ctx.Random.NextByte() & f.maxTime) + 1
	}
}

// Save captures the flash's progress.
func (f *Flash) Save() special.Record {
	rec := f.record(f.Kind())
	rec.Set("count", int64(f.count))
	rec.Set("max_time", int64(f.maxTime))
	rec.Set("min_time", int64(f.minTime))
	return rec
}

func restoreFlash(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	f := &Flash{}
	d := special.NewDecoder(rec)
	f.count = int(d.Int("count"))
	f.maxTime = int(d.Int("max_time"))
	f.minTime = int(d.Int("min_time"))
	if err := f.restore(f, lvl, rec, d); err != nil {
		return nil, err
	}
	return f, nil
}

func init() {
	register(kindSpec{
		name:     "flash",
		title:    "Random light flash",
		specials: []int{1},
		spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, _ registry.Args) (special.SectorEffect, error) {
			return effect[*Flash](NewFlash(ctx, sector))
		},
		restore: restoreFlash,
	})
}
