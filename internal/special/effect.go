// Package special defines the contract every animated sector behavior
// honors: lifecycle, pausing, sector enumeration and teardown.
//
// Concrete specials embed Base, which owns the state machine, and supply a
// Think method with one tick of progress. The simulation loop only ever sees
// the SectorEffect interface, so movers, lights and compound specials share
// one registry, one tick path and one save path.
package special

import (
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/rng"
)

// State is the lifecycle state of a special.
type State int

const (
	StateActive State = iota
	StatePaused
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// SectorRef names one plane of one sector. It is a non-owning reference
// into the level's sector table.
type SectorRef struct {
	Sector level.SectorID `yaml:"sector"`
	Plane  level.Plane    `yaml:"plane"`
}

// Context is what a special sees during a tick.
type Context struct {
	Level  *level.Level
	Random rng.Source
	Tick   uint64
	Strict bool // Ticking a terminated special panics instead of being ignored
}

// Effect is a stateful, tick-driven modification of the world.
type Effect interface {
	// Tick advances the special by one tick. Paused and terminated specials
	// do nothing.
	Tick(ctx *Context)

	// Pause stops tick processing and keeps all progress. Idempotent.
	Pause()

	// Resume continues from exactly the retained progress. Idempotent.
	Resume()

	IsPaused() bool
	Terminated() bool
}

// SectorEffect is an Effect bound to one or more sector planes.
type SectorEffect interface {
	Effect

	// Free ends the special at its natural end state and leaves its sectors
	// static. Safe to call more than once.
	Free()

	// FinalizeDestroy ends the special without touching sector geometry,
	// releasing only its own registrations. Safe to call more than once.
	FinalizeDestroy()

	// MultiSector reports whether the special drives several sectors as one unit.
	MultiSector() bool

	// GetSectors appends every controlled (sector, plane) pair to dst in a
	// stable order and returns the extended slice.
	GetSectors(dst []SectorRef) []SectorRef

	// Kind names the registered kind that can rebuild this special from Save.
	Kind() string

	// Save captures everything needed to rebuild the special's exact progress.
	Save() Record

	// State reports the lifecycle state.
	State() State

	base() *Base
}

// Thinker is the per-tick body a concrete special supplies.
type Thinker interface {
	SectorEffect
	Think(ctx *Context)
}

// Settler is implemented by specials that put their sectors into a final
// static configuration when freed, such as a texture change on arrival.
type Settler interface {
	Settle()
}
