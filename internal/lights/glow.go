package lights

import (
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// Glow ramps the light 8 levels per tick between the darkest neighbor and
// the sector's own level. It uses no randomness.
type Glow struct {
	light
	direction int
}

// NewGlow starts a glow on sector and clears its sector special.
func NewGlow(lvl *level.Level, sector level.SectorID) (*Glow, error) {
	s, err := sectorOf(lvl, sector, "glow")
	if err != nil {
		return nil, err
	}
	g := &Glow{direction: -1}
	g.maxLight = s.Light
	g.minLight = lvl.MinNeighborLight(sector, s.Light)
	s.Special = 0
	g.init(g, lvl, sector)
	return g, nil
}

// Kind returns the registered kind name.
func (g *Glow) Kind() string { return "glow" }

// Think moves the light one step and bounces at either end.
func (g *Glow) Think(*special.Context) {
	s := g.sec()
	switch g.direction {
	case -1:
		s.Light -= GlowSpeed
		if s.Light <= g.minLight {
			s.Light += GlowSpeed
			g.direction = 1
		}
	case 1:
		s.Light += GlowSpeed
		if s.Light >= g.maxLight {
			s.Light -= GlowSpeed
			g.direction = -1
		}
	}
}

// Save captures the glow's progress.
func (g *Glow) Save() special.Record {
	rec := g.record(g.Kind())
	rec.Set("direction", int64(g.direction))
	return rec
}

func restoreGlow(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	g := &Glow{}
	d := special.NewDecoder(rec)
	g.direction = int(d.Int("direction"))
	if err := g.restore(g, lvl, rec, d); err != nil {
		return nil, err
	}
	return g, nil
}

func init() {
	register(kindSpec{
		name:     "glow",
		title:    "Glowing light",
		specials: []int{8},
		spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, _ registry.Args) (special.SectorEffect, error) {
			return effect[*Glow](NewGlow(ctx.Level, sector))
		},
		restore: restoreGlow,
	})
}
