package movers

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// CeilingType selects a ceiling mover's travel.
type CeilingType int

const (
	CeilingLowerToFloor   CeilingType = iota // Down to the floor, then done
	CeilingRaiseHighest                      // Up to the highest neighboring ceiling
	CeilingCrushRaise                        // Perpetual crusher between floor+8 and the original ceiling
	CeilingFastCrushRaise                    // Same at double speed, no slowdown
	CeilingLowerCrush                        // Down to floor+8, then done
)

var ceilingKinds = []struct {
	typ   CeilingType
	name  string
	title string
}{
	{CeilingLowerToFloor, "ceiling_lower_floor", "Lower ceiling to floor"},
	{CeilingRaiseHighest, "ceiling_raise_highest", "Raise ceiling to highest neighbor"},
	{CeilingCrushRaise, "ceiling_crush_raise", "Perpetual crusher"},
	{CeilingFastCrushRaise, "ceiling_fast_crush", "Fast perpetual crusher"},
	{CeilingLowerCrush, "ceiling_lower_crush", "Lower ceiling to floor + 8"},
}

// Ceiling moves one sector ceiling. Crushers never finish on their own;
// they run until freed, destroyed or paused.
type Ceiling struct {
	special.Base

	lvl       *level.Level
	typ       CeilingType
	sector    level.SectorID
	direction int
	speed     core.Fixed
	bottom    core.Fixed
	top       core.Fixed
}

// NewCeiling creates a ceiling mover of the given type on sector.
func NewCeiling(lvl *level.Level, sector level.SectorID, typ CeilingType, args registry.Args) (*Ceiling, error) {
	s := lvl.Sector(sector)
	if s == nil {
		return nil, fmt.Errorf("movers: ceiling: sector %d: %w", sector, level.ErrUnknownSector)
	}

	c := &Ceiling{
		lvl:       lvl,
		typ:       typ,
		sector:    sector,
		direction: dirDown,
		speed:     scaledSpeed(CeilSpeed, args),
		top:       s.Ceiling,
		bottom:    s.Floor,
	}

	switch typ {
	case CeilingLowerToFloor:
	case CeilingLowerCrush, CeilingCrushRaise:
		c.bottom += core.FromInt(8)
	case CeilingFastCrushRaise:
		c.bottom += core.FromInt(8)
		c.speed = c.speed.Scale(2)
	case CeilingRaiseHighest:
		c.direction = dirUp
		c.top = lvl.HighestNeighborCeiling(sector)
	default:
		return nil, fmt.Errorf("movers: unknown ceiling type %d", typ)
	}

	c.Init(c, special.SectorRef{Sector: sector, Plane: level.PlaneCeiling})
	return c, nil
}

// Kind returns the registered kind name.
func (c *Ceiling) Kind() string {
	return ceilingKinds[c.typ].name
}

// Direction returns the current direction of travel.
func (c *Ceiling) Direction() int {
	return c.direction
}

// Think moves the ceiling one step and handles reversal at either end.
func (c *Ceiling) Think(*special.Context) {
	s := c.lvl.Sector(c.sector)

	switch c.direction {
	case dirUp:
		if movePlane(s, level.PlaneCeiling, c.speed, c.top, dirUp) != movePastDest {
			return
		}
		switch c.typ {
		case CeilingRaiseHighest:
			c.Free()
		case CeilingCrushRaise, CeilingFastCrushRaise:
			c.direction = dirDown
		}
	case dirDown:
		if movePlane(s, level.PlaneCeiling, c.speed, c.bottom, dirDown) != movePastDest {
			return
		}
		switch c.typ {
		case CeilingCrushRaise:
			c.speed = CeilSpeed
			c.direction = dirUp
		case CeilingFastCrushRaise:
			c.direction = dirUp
		case CeilingLowerCrush, CeilingLowerToFloor:
			c.Free()
		}
	}
}

// Save captures the mover's progress.
func (c *Ceiling) Save() special.Record {
	rec := c.NewRecord(c.Kind())
	rec.Set("type", int64(c.typ))
	rec.Set("direction", int64(c.direction))
	rec.Set("speed", int64(c.speed))
	rec.Set("bottom", int64(c.bottom))
	rec.Set("top", int64(c.top))
	return rec
}

func restoreCeiling(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	sector, err := singleSector(lvl, rec)
	if err != nil {
		return nil, err
	}
	d := special.NewDecoder(rec)
	c := &Ceiling{
		lvl:       lvl,
		typ:       CeilingType(d.Int("type")),
		sector:    sector,
		direction: int(d.Int("direction")),
		speed:     core.Fixed(d.Int("speed")),
		bottom:    core.Fixed(d.Int("bottom")),
		top:       core.Fixed(d.Int("top")),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	if c.typ < 0 || int(c.typ) >= len(ceilingKinds) {
		return nil, fmt.Errorf("movers: unknown ceiling type %d", c.typ)
	}
	c.Init(c, special.SectorRef{Sector: sector, Plane: level.PlaneCeiling})
	return c, nil
}

func init() {
	for _, ck := range ceilingKinds {
		typ := ck.typ
		registry.Register(registry.Kind{
			Name:  ck.name,
			Title: ck.title,
			Plane: level.PlaneCeiling,
			Spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, args registry.Args) (special.SectorEffect, error) {
				return effect[*Ceiling](NewCeiling(ctx.Level, sector, typ, args))
			},
			Restore: restoreCeiling,
		})
	}
}
