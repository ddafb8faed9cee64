// Package level holds the sector table specials animate.
// The level owns every Sector; specials refer to sectors by SectorID only and
// never outlive the table they point into.
package level

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/sectorsim/internal/core"
)

// SectorID indexes a sector in its level's table.
type SectorID int

// Plane selects which field of a sector a special controls.
type Plane int

const (
	PlaneFloor   Plane = iota // Floor height
	PlaneCeiling              // Ceiling height
	PlaneLight                // Light level, treated as a controllable channel
)

// String returns a human-readable name for the plane.
func (p Plane) String() string {
	switch p {
	case PlaneFloor:
		return "floor"
	case PlaneCeiling:
		return "ceiling"
	case PlaneLight:
		return "light"
	default:
		return "unknown"
	}
}

// ParsePlane converts a name produced by String back to a Plane.
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "floor":
		return PlaneFloor, nil
	case "ceiling":
		return PlaneCeiling, nil
	case "light":
		return PlaneLight, nil
	default:
		return 0, fmt.Errorf("level: unknown plane %q", s)
	}
}

// Sector is a vertically bounded region with mutable plane and light fields.
type Sector struct {
	ID         SectorID
	Tag        int
	Floor      core.Fixed
	Ceiling    core.Fixed
	Light      int
	FloorPic   string
	CeilingPic string
	Special    int
	Neighbors  []SectorID // Sectors sharing a two-sided line, in line order
}

// Height returns the floor or ceiling height. The light channel has no height.
func (s *Sector) Height(p Plane) core.Fixed {
	if p == PlaneCeiling {
		return s.Ceiling
	}
	return s.Floor
}

// SetHeight sets the floor or ceiling height.
func (s *Sector) SetHeight(p Plane, h core.Fixed) {
	if p == PlaneCeiling {
		s.Ceiling = h
		return
	}
	s.Floor = h
}

// clone returns a copy that shares no slices with s.
func (s Sector) clone() Sector {
	c := s
	c.Neighbors = append([]SectorID(nil), s.Neighbors...)
	return c
}
