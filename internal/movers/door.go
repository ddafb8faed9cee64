package movers

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// DoorType selects a door's open/close program.
type DoorType int

const (
	DoorNormal         DoorType = iota // Open, wait, close
	DoorOpen                           // Open and stay open
	DoorClose                          // Close and stay closed
	DoorClose30Open                    // Close, wait 30 seconds, open
	DoorRaiseIn5Mins                   // Wait 5 minutes, then behave as normal
	DoorBlazeRaise                     // Fast normal
	DoorBlazeOpen                      // Fast open
	DoorBlazeClose                     // Fast close
)

var doorKinds = []struct {
	typ      DoorType
	name     string
	title    string
	specials []int
}{
	{DoorNormal, "door_normal", "Door: open, wait, close", nil},
	{DoorOpen, "door_open", "Door: open and stay", nil},
	{DoorClose, "door_close", "Door: close and stay", nil},
	{DoorClose30Open, "door_close30_open", "Door: close, open after 30s", nil},
	{DoorRaiseIn5Mins, "door_raise_in_5mins", "Door: open after 5 minutes", []int{14}},
	{DoorBlazeRaise, "door_blaze_raise", "Fast door: open, wait, close", nil},
	{DoorBlazeOpen, "door_blaze_open", "Fast door: open and stay", nil},
	{DoorBlazeClose, "door_blaze_close", "Fast door: close and stay", nil},
}

// closeIn30Special is the map sector special for a door that closes 30
// seconds after the level starts.
const closeIn30Special = 10

// Door drives a sector ceiling between its floor and a top height.
type Door struct {
	special.Base

	lvl       *level.Level
	kind      string
	typ       DoorType
	sector    level.SectorID
	top       core.Fixed
	speed     core.Fixed
	direction int
	topWait   int
	countdown int
}

// NewDoor creates a triggered door on sector.
// The "speed" argument multiplies the base speed and "wait" overrides the
// open wait in ticks.
func NewDoor(lvl *level.Level, sector level.SectorID, typ DoorType, args registry.Args) (*Door, error) {
	s := lvl.Sector(sector)
	if s == nil {
		return nil, fmt.Errorf("movers: door: sector %d: %w", sector, level.ErrUnknownSector)
	}

	d := &Door{
		lvl:     lvl,
		typ:     typ,
		sector:  sector,
		speed:   scaledSpeed(DoorSpeed, args),
		topWait: args.Int("wait", DoorWait),
		top:     lvl.LowestNeighborCeiling(sector) - core.FromInt(4),
	}
	if d.topWait <= 0 {
		d.topWait = DoorWait
	}

	switch typ {
	case DoorBlazeClose:
		d.direction = dirDown
		d.speed = d.speed.Scale(4)
	case DoorClose:
		d.direction = dirDown
	case DoorClose30Open:
		d.top = s.Ceiling
		d.direction = dirDown
	case DoorBlazeRaise, DoorBlazeOpen:
		d.direction = dirUp
		d.speed = d.speed.Scale(4)
	case DoorNormal, DoorOpen:
		d.direction = dirUp
	case DoorRaiseIn5Mins:
		d.direction = dirInitialWait
		d.countdown = DoorRaiseIn5m
	default:
		return nil, fmt.Errorf("movers: unknown door type %d", typ)
	}
	d.kind = doorKinds[typ].name

	d.Init(d, special.SectorRef{Sector: sector, Plane: level.PlaneCeiling})
	return d, nil
}

// NewDoorCloseIn30 creates the door placed by sector special 10: an open
// door that waits 30 seconds and then closes like a normal door.
func NewDoorCloseIn30(lvl *level.Level, sector level.SectorID) (*Door, error) {
	s := lvl.Sector(sector)
	if s == nil {
		return nil, fmt.Errorf("movers: door: sector %d: %w", sector, level.ErrUnknownSector)
	}
	d := &Door{
		lvl:       lvl,
		kind:      "door_close_in_30",
		typ:       DoorNormal,
		sector:    sector,
		speed:     DoorSpeed,
		topWait:   DoorWait,
		top:       s.Ceiling,
		direction: dirWait,
		countdown: DoorClose30,
	}
	s.Special = 0
	d.Init(d, special.SectorRef{Sector: sector, Plane: level.PlaneCeiling})
	return d, nil
}

// Kind returns the registered kind name the door was started as. A door
// that changes program mid-life keeps it.
func (d *Door) Kind() string {
	return d.kind
}

// Direction returns -1 closing, 0 waiting open, 1 opening, 2 initial wait.
func (d *Door) Direction() int {
	return d.direction
}

// Think advances the door by one tick.
func (d *Door) Think(*special.Context) {
	s := d.lvl.Sector(d.sector)

	switch d.direction {
	case dirWait:
		d.countdown--
		if d.countdown != 0 {
			return
		}
		switch d.typ {
		case DoorBlazeRaise, DoorNormal:
			d.direction = dirDown
		case DoorClose30Open:
			d.direction = dirUp
		}

	case dirInitialWait:
		d.countdown--
		if d.countdown != 0 {
			return
		}
		if d.typ == DoorRaiseIn5Mins {
			d.direction = dirUp
			d.typ = DoorNormal
		}

	case dirDown:
		if movePlane(s, level.PlaneCeiling, d.speed, s.Floor, dirDown) != movePastDest {
			return
		}
		switch d.typ {
		case DoorBlazeRaise, DoorBlazeClose, DoorNormal, DoorClose:
			d.Free()
		case DoorClose30Open:
			d.direction = dirWait
			d.countdown = DoorClose30
		}

	case dirUp:
		if movePlane(s, level.PlaneCeiling, d.speed, d.top, dirUp) != movePastDest {
			return
		}
		switch d.typ {
		case DoorBlazeRaise, DoorNormal:
			d.direction = dirWait
			d.countdown = d.topWait
		case DoorClose30Open, DoorBlazeOpen, DoorOpen:
			d.Free()
		}
	}
}

// Save captures the door's progress.
func (d *Door) Save() special.Record {
	rec := d.NewRecord(d.Kind())
	rec.Set("type", int64(d.typ))
	rec.Set("top", int64(d.top))
	rec.Set("speed", int64(d.speed))
	rec.Set("direction", int64(d.direction))
	rec.Set("top_wait", int64(d.topWait))
	rec.Set("countdown", int64(d.countdown))
	return rec
}

func restoreDoor(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	sector, err := singleSector(lvl, rec)
	if err != nil {
		return nil, err
	}
	dec := special.NewDecoder(rec)
	d := &Door{
		lvl:       lvl,
		kind:      rec.Kind,
		typ:       DoorType(dec.Int("type")),
		sector:    sector,
		top:       core.Fixed(dec.Int("top")),
		speed:     core.Fixed(dec.Int("speed")),
		direction: int(dec.Int("direction")),
		topWait:   int(dec.Int("top_wait")),
		countdown: int(dec.Int("countdown")),
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if d.typ < 0 || int(d.typ) >= len(doorKinds) {
		return nil, fmt.Errorf("movers: unknown door type %d", d.typ)
	}
	d.Init(d, special.SectorRef{Sector: sector, Plane: level.PlaneCeiling})
	return d, nil
}

func init() {
	for _, dk := range doorKinds {
		typ := dk.typ
		registry.Register(registry.Kind{
			Name:           dk.name,
			Title:          dk.title,
			Plane:          level.PlaneCeiling,
			SectorSpecials: dk.specials,
			Spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, args registry.Args) (special.SectorEffect, error) {
				d, err := NewDoor(ctx.Level, sector, typ, args)
				if err != nil {
					return nil, err
				}
				if typ == DoorRaiseIn5Mins {
					ctx.Level.Sector(sector).Special = 0
				}
				return d, nil
			},
			Restore: restoreDoor,
		})
	}

	registry.Register(registry.Kind{
		Name:           "door_close_in_30",
		Title:          "Door: close 30s after level start",
		Plane:          level.PlaneCeiling,
		SectorSpecials: []int{closeIn30Special},
		Spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, _ registry.Args) (special.SectorEffect, error) {
			return effect[*Door](NewDoorCloseIn30(ctx.Level, sector))
		},
		Restore: restoreDoor,
	})
}
