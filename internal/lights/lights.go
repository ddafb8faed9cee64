// Package lights implements the sector lighting specials: fire flicker,
// random flash, strobes and glow. They claim a sector's light channel and,
// apart from glow, draw their timing from the session's random source.
package lights

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// Timing constants in ticks.
const (
	StrobeBright = 5
	FastDark     = 15
	SlowDark     = 35
	GlowSpeed    = 8
	flickerTics  = 4
	flashMaxTime = 64
	flashMinTime = 7
)

// light holds what every lighting special shares: the sector, its light
// range, and the level it mutates. Freeing a light restores maxLight.
type light struct {
	special.Base

	lvl      *level.Level
	sector   level.SectorID
	minLight int
	maxLight int
}

func (l *light) init(impl special.Thinker, lvl *level.Level, sector level.SectorID) {
	l.lvl = lvl
	l.sector = sector
	l.Init(impl, special.SectorRef{Sector: sector, Plane: level.PlaneLight})
}

func (l *light) sec() *level.Sector {
	return l.lvl.Sector(l.sector)
}

// Range returns the dark and bright light levels.
func (l *light) Range() (dark, bright int) {
	return l.minLight, l.maxLight
}

// Settle puts the sector back at its full light level.
func (l *light) Settle() {
	l.sec().Light = l.maxLight
}

func (l *light) record(kind string) special.Record {
	rec := l.NewRecord(kind)
	rec.Set("min_light", int64(l.minLight))
	rec.Set("max_light", int64(l.maxLight))
	return rec
}

func (l *light) restore(impl special.Thinker, lvl *level.Level, rec special.Record, d *special.Decoder) error {
	if len(rec.Sectors) != 1 {
		return fmt.Errorf("lights: %s record has %d sectors, expected 1", rec.Kind, len(rec.Sectors))
	}
	id := rec.Sectors[0].Sector
	if lvl.Sector(id) == nil {
		return fmt.Errorf("lights: %s record: sector %d: %w", rec.Kind, id, level.ErrUnknownSector)
	}
	l.minLight = int(d.Int("min_light"))
	l.maxLight = int(d.Int("max_light"))
	if err := d.Err(); err != nil {
		return err
	}
	l.init(impl, lvl, id)
	return nil
}

func sectorOf(lvl *level.Level, id level.SectorID, kind string) (*level.Sector, error) {
	s := lvl.Sector(id)
	if s == nil {
		return nil, fmt.Errorf("lights: %s: sector %d: %w", kind, id, level.ErrUnknownSector)
	}
	return s, nil
}

func effect[T special.SectorEffect](e T, err error) (special.SectorEffect, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

type kindSpec struct {
	name     string
	title    string
	specials []int
	spawn    registry.Spawner
	restore  registry.Restorer
}

func register(kinds ...kindSpec) {
	for _, k := range kinds {
		registry.Register(registry.Kind{
			Name:           k.name,
			Title:          k.title,
			Plane:          level.PlaneLight,
			SectorSpecials: k.specials,
			Spawn:          k.spawn,
			Restore:        k.restore,
		})
	}
}
