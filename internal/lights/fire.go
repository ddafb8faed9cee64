package lights

import (
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// FireFlicker drops the light by a random multiple of 16 every 4 ticks,
// never below 16 above the darkest neighbor.
type FireFlicker struct {
	light
	count int
}

// NewFireFlicker starts a flicker on sector and clears its sector special.
func NewFireFlicker(lvl *level.Level, sector level.SectorID) (*FireFlicker, error) {
	s, err := sectorOf(lvl, sector, "fireflicker")
	if err != nil {
		return nil, err
	}
	f := &FireFlicker{count: flickerTics}
	f.maxLight = s.Light
	f.minLight = lvl.MinNeighborLight(sector, s.Light) + 16
	s.Special = 0
	f.init(f, lvl, sector)
	return f, nil
}

// Kind returns the registered kind name.
func (f *FireFlicker) Kind() string { return "fireflicker" }

// Think flickers once every 4 ticks.
func (f *FireFlicker) Think(ctx *special.Context) {
	f.count--
	if f.count != 0 {
		return
	}

	amount := (ctx.Random.NextByte() & 3) * 16
	s := f.sec()
	if s.Light-amount < f.minLight {
		s.Light = f.minLight
	} else {
		s.Light = f.maxLight - amount
	}
	f.count = flickerTics
}

// Save captures the flicker's progress.
func (f *FireFlicker) Save() special.Record {
	rec := f.record(f.Kind())
	rec.Set("count", int64(f.count))
	return rec
}

func restoreFireFlicker(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	f := &FireFlicker{}
	d := special.NewDecoder(rec)
	f.count = int(d.Int("count"))
	if err := f.restore(f, lvl, rec, d); err != nil {
		return nil, err
	}
	return f, nil
}

func init() {
	register(kindSpec{
		name:     "fireflicker",
		title:    "Fire flicker",
		specials: []int{17},
		spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, _ registry.Args) (special.SectorEffect, error) {
			return effect[*FireFlicker](NewFireFlicker(ctx.Level, sector))
		},
		restore: restoreFireFlicker,
	})
}
