// Package movers implements the specials that move sector floors and
// ceilings: floors, ceilings and crushers, doors, platforms and stairs.
// Every kind registers itself with the kind registry in init().
package movers

import (
	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
)

// Base speeds in map units per tick.
const (
	FloorSpeed = core.FracUnit
	CeilSpeed  = core.FracUnit
	DoorSpeed  = 2 * core.FracUnit
	PlatSpeed  = core.FracUnit
)

// Tick counts at 35 Hz.
const (
	DoorWait      = 150
	PlatWait      = 3 * core.TicRate
	DoorClose30   = 30 * core.TicRate
	DoorRaiseIn5m = 5 * 60 * core.TicRate
)

// Direction of travel. Doors also use dirWait and dirInitialWait.
const (
	dirDown        = -1
	dirWait        = 0
	dirUp          = 1
	dirInitialWait = 2
)

type moveResult int

const (
	moveOK moveResult = iota
	movePastDest
)

// movePlane moves one plane of s by speed toward dest in dir.
// The plane stops exactly on dest, and movePastDest is reported on the tick
// the step would have carried it past.
func movePlane(s *level.Sector, plane level.Plane, speed, dest core.Fixed, dir int) moveResult {
	h := s.Height(plane)
	switch dir {
	case dirDown:
		if h-speed < dest {
			s.SetHeight(plane, dest)
			return movePastDest
		}
		s.SetHeight(plane, h-speed)
	case dirUp:
		if h+speed > dest {
			s.SetHeight(plane, dest)
			return movePastDest
		}
		s.SetHeight(plane, h+speed)
	}
	return moveOK
}
