package movers

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// StairType selects step size and speed.
type StairType int

const (
	StairsBuild8  StairType = iota // 8-unit steps at a quarter of floor speed
	StairsTurbo16                  // 16-unit steps at four times floor speed
)

var stairKinds = []struct {
	typ   StairType
	name  string
	title string
}{
	{StairsBuild8, "stairs_build8", "Build stairs, 8 units per step"},
	{StairsTurbo16, "stairs_turbo16", "Build fast stairs, 16 units per step"},
}

type step struct {
	sector  level.SectorID
	dest    core.Fixed
	arrived bool
}

// Stairs raises a chain of sectors as one unit. Starting from the tagged
// sector it walks neighbors sharing the same floor texture, giving each one
// a destination one step higher than the last.
type Stairs struct {
	special.Base

	lvl   *level.Level
	typ   StairType
	speed core.Fixed
	steps []step
}

// NewStairs builds the step chain from sector. Neighbors whose floor is
// already moving are skipped, but the height still advances past them.
func NewStairs(lvl *level.Level, list *special.List, sector level.SectorID, typ StairType, args registry.Args) (*Stairs, error) {
	s := lvl.Sector(sector)
	if s == nil {
		return nil, fmt.Errorf("movers: stairs: sector %d: %w", sector, level.ErrUnknownSector)
	}

	st := &Stairs{lvl: lvl, typ: typ}
	var size core.Fixed
	switch typ {
	case StairsBuild8:
		st.speed = FloorSpeed / 4
		size = core.FromInt(8)
	case StairsTurbo16:
		st.speed = FloorSpeed.Scale(4)
		size = core.FromInt(16)
	default:
		return nil, fmt.Errorf("movers: unknown stair type %d", typ)
	}
	st.speed = scaledSpeed(st.speed, args)

	texture := s.FloorPic
	height := s.Floor + size
	st.steps = append(st.steps, step{sector: sector, dest: height})

	visited := mapset.New[level.SectorID]()
	visited.Put(sector)
	cur := s
	for {
		var next *level.Sector
		for _, n := range cur.Neighbors {
			ns := lvl.Sector(n)
			if ns.FloorPic != texture || visited.Has(n) {
				continue
			}
			height += size
			if list != nil && list.Busy(n, level.PlaneFloor) {
				continue
			}
			next = ns
			break
		}
		if next == nil {
			break
		}
		visited.Put(next.ID)
		st.steps = append(st.steps, step{sector: next.ID, dest: height})
		cur = next
	}

	st.Init(st, st.refs()...)
	return st, nil
}

func (st *Stairs) refs() []special.SectorRef {
	refs := make([]special.SectorRef, len(st.steps))
	for i, sp := range st.steps {
		refs[i] = special.SectorRef{Sector: sp.sector, Plane: level.PlaneFloor}
	}
	return refs
}

// Kind returns the registered kind name.
func (st *Stairs) Kind() string {
	return stairKinds[st.typ].name
}

// Steps returns the destination height of every step in build order.
func (st *Stairs) Steps() []core.Fixed {
	out := make([]core.Fixed, len(st.steps))
	for i, sp := range st.steps {
		out[i] = sp.dest
	}
	return out
}

// Think raises every step that has not arrived. The special frees itself
// once all steps are in place.
func (st *Stairs) Think(*special.Context) {
	done := true
	for i := range st.steps {
		sp := &st.steps[i]
		if sp.arrived {
			continue
		}
		s := st.lvl.Sector(sp.sector)
		if movePlane(s, level.PlaneFloor, st.speed, sp.dest, dirUp) == movePastDest {
			sp.arrived = true
			continue
		}
		done = false
	}
	if done {
		st.Free()
	}
}

// Save captures every step's destination and arrival.
func (st *Stairs) Save() special.Record {
	rec := st.NewRecord(st.Kind())
	rec.Set("type", int64(st.typ))
	rec.Set("speed", int64(st.speed))
	for i, sp := range st.steps {
		rec.Set(fmt.Sprintf("dest.%d", i), int64(sp.dest))
		arrived := int64(0)
		if sp.arrived {
			arrived = 1
		}
		rec.Set(fmt.Sprintf("arrived.%d", i), arrived)
	}
	return rec
}

func restoreStairs(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	if len(rec.Sectors) == 0 {
		return nil, fmt.Errorf("movers: %s record has no sectors", rec.Kind)
	}
	d := special.NewDecoder(rec)
	st := &Stairs{
		lvl:   lvl,
		typ:   StairType(d.Int("type")),
		speed: core.Fixed(d.Int("speed")),
	}
	for i, ref := range rec.Sectors {
		if lvl.Sector(ref.Sector) == nil {
			return nil, fmt.Errorf("movers: %s record: sector %d: %w", rec.Kind, ref.Sector, level.ErrUnknownSector)
		}
		st.steps = append(st.steps, step{
			sector:  ref.Sector,
			dest:    core.Fixed(d.Int(fmt.Sprintf("dest.%d", i))),
			arrived: d.Int(fmt.Sprintf("arrived.%d", i)) != 0,
		})
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	if st.typ < 0 || int(st.typ) >= len(stairKinds) {
		return nil, fmt.Errorf("movers: unknown stair type %d", st.typ)
	}
	st.Init(st, st.refs()...)
	return st, nil
}

func init() {
	for _, sk := range stairKinds {
		typ := sk.typ
		registry.Register(registry.Kind{
			Name:  sk.name,
			Title: sk.title,
			Plane: level.PlaneFloor,
			Spawn: func(ctx *special.Context, list *special.List, sector level.SectorID, args registry.Args) (special.SectorEffect, error) {
				return effect[*Stairs](NewStairs(ctx.Level, list, sector, typ, args))
			},
			Restore: restoreStairs,
		})
	}
}
