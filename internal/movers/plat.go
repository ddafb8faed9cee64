package movers

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// PlatType selects a platform's program.
type PlatType int

const (
	PlatDownWaitUpStay PlatType = iota // Lower, wait, return and stop
	PlatBlazeDWUS                      // Same at double the speed
	PlatPerpetual                      // Bounce between low and high until stopped
)

// PlatStatus is the phase of a platform.
type PlatStatus int

const (
	PlatUp PlatStatus = iota
	PlatDown
	PlatWaiting
)

// String returns a human-readable name for the status.
func (s PlatStatus) String() string {
	switch s {
	case PlatUp:
		return "up"
	case PlatDown:
		return "down"
	case PlatWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

var platKinds = []struct {
	typ   PlatType
	name  string
	title string
}{
	{PlatDownWaitUpStay, "plat_down_wait_up_stay", "Lift: lower, wait, raise"},
	{PlatBlazeDWUS, "plat_blaze", "Fast lift: lower, wait, raise"},
	{PlatPerpetual, "plat_perpetual", "Perpetual platform"},
}

// Plat moves a sector floor between a low and a high height.
type Plat struct {
	special.Base

	lvl    *level.Level
	typ    PlatType
	sector level.SectorID
	speed  core.Fixed
	low    core.Fixed
	high   core.Fixed
	wait   int
	count  int
	status PlatStatus
}

// NewPlat creates a platform on sector. A perpetual platform draws its
// starting direction from ctx.Random.
func NewPlat(ctx *special.Context, sector level.SectorID, typ PlatType, args registry.Args) (*Plat, error) {
	lvl := ctx.Level
	s := lvl.Sector(sector)
	if s == nil {
		return nil, fmt.Errorf("movers: plat: sector %d: %w", sector, level.ErrUnknownSector)
	}

	p := &Plat{
		lvl:    lvl,
		typ:    typ,
		sector: sector,
		speed:  scaledSpeed(PlatSpeed, args),
		wait:   args.Int("wait", PlatWait),
		low:    lvl.LowestNeighborFloor(sector),
	}
	if p.wait <= 0 {
		p.wait = PlatWait
	}
	if p.low > s.Floor {
		p.low = s.Floor
	}

	switch typ {
	case PlatPerpetual:
		p.high = lvl.HighestNeighborFloor(sector)
		if p.high < s.Floor {
			p.high = s.Floor
		}
		if ctx.Random == nil {
			return nil, fmt.Errorf("movers: plat: perpetual platform needs a random source")
		}
		p.status = PlatStatus(ctx.Random.NextByte() & 1)
	case PlatDownWaitUpStay:
		p.speed = p.speed.Scale(4)
		p.high = s.Floor
		p.status = PlatDown
	case PlatBlazeDWUS:
		p.speed = p.speed.Scale(8)
		p.high = s.Floor
		p.status = PlatDown
	default:
		return nil, fmt.Errorf("movers: unknown plat type %d", typ)
	}

	p.Init(p, special.SectorRef{Sector: sector, Plane: level.PlaneFloor})
	return p, nil
}

// Kind returns the registered kind name.
func (p *Plat) Kind() string {
	return platKinds[p.typ].name
}

// Status returns the current phase.
func (p *Plat) Status() PlatStatus {
	return p.status
}

// Think advances the platform by one tick.
func (p *Plat) Think(*special.Context) {
	s := p.lvl.Sector(p.sector)

	switch p.status {
	case PlatUp:
		if movePlane(s, level.PlaneFloor, p.speed, p.high, dirUp) != movePastDest {
			return
		}
		p.count = p.wait
		p.status = PlatWaiting
		if p.typ != PlatPerpetual {
			p.Free()
		}

	case PlatDown:
		if movePlane(s, level.PlaneFloor, p.speed, p.low, dirDown) == movePastDest {
			p.count = p.wait
			p.status = PlatWaiting
		}

	case PlatWaiting:
		p.count--
		if p.count != 0 {
			return
		}
		if s.Floor == p.low {
			p.status = PlatUp
		} else {
			p.status = PlatDown
		}
	}
}

// Save captures the platform's progress.
func (p *Plat) Save() special.Record {
	rec := p.NewRecord(p.Kind())
	rec.Set("type", int64(p.typ))
	rec.Set("speed", int64(p.speed))
	rec.Set("low", int64(p.low))
	rec.Set("high", int64(p.high))
	rec.Set("wait", int64(p.wait))
	rec.Set("count", int64(p.count))
	rec.Set("status", int64(p.status))
	return rec
}

func restorePlat(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	sector, err := singleSector(lvl, rec)
	if err != nil {
		return nil, err
	}
	d := special.NewDecoder(rec)
	p := &Plat{
		lvl:    lvl,
		typ:    PlatType(d.Int("type")),
		sector: sector,
		speed:  core.Fixed(d.Int("speed")),
		low:    core.Fixed(d.Int("low")),
		high:   core.Fixed(d.Int("high")),
		wait:   int(d.Int("wait")),
		count:  int(d.Int("count")),
		status: PlatStatus(d.Int("status")),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	if p.typ < 0 || int(p.typ) >= len(platKinds) {
		return nil, fmt.Errorf("movers: unknown plat type %d", p.typ)
	}
	p.Init(p, special.SectorRef{Sector: sector, Plane: level.PlaneFloor})
	return p, nil
}

func init() {
	for _, pk := range platKinds {
		typ := pk.typ
		registry.Register(registry.Kind{
			Name:  pk.name,
			Title: pk.title,
			Plane: level.PlaneFloor,
			Spawn: func(ctx *special.Context, _ *special.List, sector level.SectorID, args registry.Args) (special.SectorEffect, error) {
				return effect[*Plat](NewPlat(ctx, sector, typ, args))
			},
			Restore: restorePlat,
		})
	}
}
