package level

import (
	"math"

	"github.com/vovakirdan/sectorsim/internal/core"
)

// Starting values of the classic neighbor searches. A search with no
// qualifying neighbor returns its seed.
const (
	maxHeight       = core.Fixed(math.MaxInt32)
	lowestFloorSeed = core.Fixed(-500 << core.FracBits)
)

func (l *Level) neighbors(id SectorID) []*Sector {
	s := l.Sector(id)
	if s == nil {
		return nil
	}
	out := make([]*Sector, 0, len(s.Neighbors))
	for _, n := range s.Neighbors {
		if ns := l.Sector(n); ns != nil {
			out = append(out, ns)
		}
	}
	return out
}

// LowestNeighborFloor returns the lowest floor among the sector and its neighbors.
func (l *Level) LowestNeighborFloor(id SectorID) core.Fixed {
	s := l.Sector(id)
	if s == nil {
		return 0
	}
	floor := s.Floor
	for _, n := range l.neighbors(id) {
		if n.Floor < floor {
			floor = n.Floor
		}
	}
	return floor
}

// HighestNeighborFloor returns the highest neighboring floor, or -500 units
// when there are no neighbors.
func (l *Level) HighestNeighborFloor(id SectorID) core.Fixed {
	floor := lowestFloorSeed
	for _, n := range l.neighbors(id) {
		if n.Floor > floor {
			floor = n.Floor
		}
	}
	return floor
}

// NextHighestNeighborFloor returns the lowest neighboring floor strictly above
// current, or current when no neighbor is higher.
func (l *Level) NextHighestNeighborFloor(id SectorID, current core.Fixed) core.Fixed {
	found := false
	best := current
	for _, n := range l.neighbors(id) {
		if n.Floor > current && (!found || n.Floor < best) {
			best = n.Floor
			found = true
		}
	}
	return best
}

// LowestNeighborCeiling returns the lowest neighboring ceiling, or the
// maximum height when there are no neighbors.
func (l *Level) LowestNeighborCeiling(id SectorID) core.Fixed {
	height := maxHeight
	for _, n := range l.neighbors(id) {
		if n.Ceiling < height {
			height = n.Ceiling
		}
	}
	return height
}

// HighestNeighborCeiling returns the highest neighboring ceiling, or zero
// when there are no neighbors.
func (l *Level) HighestNeighborCeiling(id SectorID) core.Fixed {
	var height core.Fixed
	for _, n := range l.neighbors(id) {
		if n.Ceiling > height {
			height = n.Ceiling
		}
	}
	return height
}

// MinNeighborLight returns the darkest neighboring light level not above max.
func (l *Level) MinNeighborLight(id SectorID, max int) int {
	light := max
	for _, n := range l.neighbors(id) {
		if n.Light < light {
			light = n.Light
		}
	}
	return light
}
