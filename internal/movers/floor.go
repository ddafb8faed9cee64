package movers

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// FloorType selects how a floor mover picks its destination.
type FloorType int

const (
	FloorLower        FloorType = iota // Down to the highest neighboring floor
	FloorLowerLowest                   // Down to the lowest floor around, own included
	FloorTurboLower                    // Fast lower, stops 8 above the highest neighbor
	FloorRaise                         // Up to the lowest neighboring ceiling
	FloorRaiseNearest                  // Up to the next higher neighboring floor
	FloorRaise24                       // Up by 24 units
	FloorLowerChange                   // Lower to lowest, then take that neighbor's texture
)

var floorKinds = []struct {
	typ   FloorType
	name  string
	title string
}{
	{FloorLower, "floor_lower", "Lower floor to highest neighbor"},
	{FloorLowerLowest, "floor_lower_lowest", "Lower floor to lowest neighbor"},
	{FloorTurboLower, "floor_turbo_lower", "Fast lower floor to highest neighbor + 8"},
	{FloorRaise, "floor_raise", "Raise floor to lowest neighbor ceiling"},
	{FloorRaiseNearest, "floor_raise_nearest", "Raise floor to next higher neighbor floor"},
	{FloorRaise24, "floor_raise24", "Raise floor by 24"},
	{FloorLowerChange, "floor_lower_change", "Lower floor to lowest and change texture"},
}

// Floor moves one sector floor to a fixed destination and then frees itself.
type Floor struct {
	special.Base

	lvl        *level.Level
	typ        FloorType
	sector     level.SectorID
	direction  int
	speed      core.Fixed
	dest       core.Fixed
	change     bool
	texture    string
	newSpecial int
}

// NewFloor creates a floor mover of the given type on sector.
// The "speed" argument multiplies the base speed.
func NewFloor(lvl *level.Level, sector level.SectorID, typ FloorType, args registry.Args) (*Floor, error) {
	s := lvl.Sector(sector)
	if s == nil {
		return nil, fmt.Errorf("movers: floor: sector %d: %w", sector, level.ErrUnknownSector)
	}

	f := &Floor{
		lvl:       lvl,
		typ:       typ,
		sector:    sector,
		direction: dirDown,
		speed:     scaledSpeed(FloorSpeed, args),
	}

	switch typ {
	case FloorLower:
		f.dest = lvl.HighestNeighborFloor(sector)
	case FloorLowerLowest:
		f.dest = lvl.LowestNeighborFloor(sector)
	case FloorTurboLower:
		f.speed = f.speed.Scale(4)
		f.dest = lvl.HighestNeighborFloor(sector)
		if f.dest != s.Floor {
			f.dest += core.FromInt(8)
		}
	case FloorRaise:
		f.direction = dirUp
		f.dest = lvl.LowestNeighborCeiling(sector)
		if f.dest > s.Ceiling {
			f.dest = s.Ceiling
		}
	case FloorRaiseNearest:
		f.direction = dirUp
		f.dest = lvl.NextHighestNeighborFloor(sector, s.Floor)
	case FloorRaise24:
		f.direction = dirUp
		f.dest = s.Floor + core.FromInt(24)
	case FloorLowerChange:
		f.dest = lvl.LowestNeighborFloor(sector)
		f.change = true
		f.texture = s.FloorPic
		f.newSpecial = s.Special
		for _, n := range s.Neighbors {
			ns := lvl.Sector(n)
			if ns.Floor == f.dest {
				f.texture = ns.FloorPic
				f.newSpecial = ns.Special
				break
			}
		}
	default:
		return nil, fmt.Errorf("movers: unknown floor type %d", typ)
	}

	f.Init(f, special.SectorRef{Sector: sector, Plane: level.PlaneFloor})
	return f, nil
}

// Kind returns the registered kind name.
func (f *Floor) Kind() string {
	return floorKinds[f.typ].name
}

// Dest returns the destination height.
func (f *Floor) Dest() core.Fixed {
	return f.dest
}

// Think moves the floor one step.
func (f *Floor) Think(*special.Context) {
	s := f.lvl.Sector(f.sector)
	if movePlane(s, level.PlaneFloor, f.speed, f.dest, f.direction) == movePastDest {
		f.Free()
	}
}

// Settle applies the pending texture change.
func (f *Floor) Settle() {
	if !f.change {
		return
	}
	s := f.lvl.Sector(f.sector)
	s.FloorPic = f.texture
	s.Special = f.newSpecial
}

// Save captures the mover's progress.
func (f *Floor) Save() special.Record {
	rec := f.NewRecord(f.Kind())
	rec.Set("type", int64(f.typ))
	rec.Set("direction", int64(f.direction))
	rec.Set("speed", int64(f.speed))
	rec.Set("dest", int64(f.dest))
	if f.change {
		rec.Set("new_special", int64(f.newSpecial))
		rec.SetText("texture", f.texture)
	}
	return rec
}

func restoreFloor(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	sector, err := singleSector(lvl, rec)
	if err != nil {
		return nil, err
	}
	d := special.NewDecoder(rec)
	f := &Floor{
		lvl:       lvl,
		typ:       FloorType(d.Int("type")),
		sector:    sector,
		direction: int(d.Int("direction")),
		speed:     core.Fixed(d.Int("speed")),
		dest:      core.Fixed(d.Int("dest")),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	if f.typ < 0 || int(f.typ) >= len(floorKinds) {
		return nil, fmt.Errorf("movers: unknown floor type %d", f.typ)
	}
	if ns, ok := rec.Fields["new_special"]; ok {
		f.change = true
		f.newSpecial = int(ns)
		f.texture = rec.Text("texture")
	}
	f.Init(f, special.SectorRef{Sector: sector, Plane: level.PlaneFloor})
	return f, nil
}

func init() {
	for _, fk := range floorKinds {
		typ := fk.typ
		registry.Register(registry.Kind{
			Name:  fk.name,
			Title: fk.title,
			Plane: level.PlaneFloor,
			Spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, args registry.Args) (special.SectorEffect, error) {
				return effect[*Floor](NewFloor(ctx.Level, sector, typ, args))
			},
			Restore: restoreFloor,
		})
	}
}
