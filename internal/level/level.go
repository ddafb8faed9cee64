package level

import (
	"errors"
	"fmt"
)

// ErrUnknownSector is returned when a sector id is not in the table.
var ErrUnknownSector = errors.New("level: unknown sector")

// Level is the sector table of one loaded map.
type Level struct {
	Name    string
	sectors []Sector
	index   map[SectorID]int
}

// New validates the sectors and builds a level.
// Neighbor links are made symmetric: a link declared on one side only is
// appended to the other side after its declared links, in table order.
func New(name string, sectors []Sector) (*Level, error) {
	l := &Level{
		Name:    name,
		sectors: make([]Sector, len(sectors)),
		index:   make(map[SectorID]int, len(sectors)),
	}

	for i, s := range sectors {
		if _, dup := l.index[s.ID]; dup {
			return nil, fmt.Errorf("level %s: duplicate sector id %d", name, s.ID)
		}
		if s.Floor > s.Ceiling {
			return nil, fmt.Errorf("level %s: sector %d floor %v above ceiling %v", name, s.ID, s.Floor, s.Ceiling)
		}
		l.sectors[i] = s.clone()
		l.index[s.ID] = i
	}

	for i := range l.sectors {
		s := &l.sectors[i]
		for _, n := range s.Neighbors {
			if n == s.ID {
				return nil, fmt.Errorf("level %s: sector %d lists itself as a neighbor", name, s.ID)
			}
			if _, ok := l.index[n]; !ok {
				return nil, fmt.Errorf("level %s: sector %d: neighbor %d: %w", name, s.ID, n, ErrUnknownSector)
			}
		}
	}

	for i := range l.sectors {
		s := &l.sectors[i]
		for _, n := range s.Neighbors {
			other := &l.sectors[l.index[n]]
			if !containsID(other.Neighbors, s.ID) {
				other.Neighbors = append(other.Neighbors, s.ID)
			}
		}
	}

	return l, nil
}

// Sector returns the sector with the given id, or nil if there is none.
func (l *Level) Sector(id SectorID) *Sector {
	i, ok := l.index[id]
	if !ok {
		return nil
	}
	return &l.sectors[i]
}

// Len returns the number of sectors.
func (l *Level) Len() int {
	return len(l.sectors)
}

// Each calls fn for every sector in table order.
func (l *Level) Each(fn func(s *Sector)) {
	for i := range l.sectors {
		fn(&l.sectors[i])
	}
}

// SectorsByTag returns the ids of sectors carrying tag, in table order.
func (l *Level) SectorsByTag(tag int) []SectorID {
	var ids []SectorID
	for i := range l.sectors {
		if l.sectors[i].Tag == tag {
			ids = append(ids, l.sectors[i].ID)
		}
	}
	return ids
}

// Snapshot returns a deep copy of the sector table in table order.
func (l *Level) Snapshot() []Sector {
	out := make([]Sector, len(l.sectors))
	for i, s := range l.sectors {
		out[i] = s.clone()
	}
	return out
}

// Restore overwrites the mutable fields of every sector from a snapshot.
// The snapshot must describe the same table (same ids, same order).
func (l *Level) Restore(snap []Sector) error {
	if len(snap) != len(l.sectors) {
		return fmt.Errorf("level %s: snapshot has %d sectors, level has %d", l.Name, len(snap), len(l.sectors))
	}
	for i := range snap {
		if snap[i].ID != l.sectors[i].ID {
			return fmt.Errorf("level %s: snapshot sector %d at slot %d, expected %d", l.Name, snap[i].ID, i, l.sectors[i].ID)
		}
	}
	for i := range snap {
		l.sectors[i] = snap[i].clone()
	}
	return nil
}

// Clone returns an independent copy of the level.
func (l *Level) Clone() *Level {
	c := &Level{
		Name:    l.Name,
		sectors: l.Snapshot(),
		index:   make(map[SectorID]int, len(l.index)),
	}
	for id, i := range l.index {
		c.index[id] = i
	}
	return c
}

func containsID(ids []SectorID, id SectorID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
