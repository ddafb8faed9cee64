// Package registry provides a global registry of special kinds.
// Kinds register themselves in init() functions, allowing the simulation
// and the CLI to start and restore specials by name without hardcoded
// dependencies on the packages that implement them.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// Args are the optional integer parameters of a trigger, such as a speed
// override. Kinds read what they understand and ignore the rest.
type Args map[string]int

// Int returns the named argument or def when absent.
func (a Args) Int(key string, def int) int {
	if v, ok := a[key]; ok {
		return v
	}
	return def
}

// Spawner builds a special of one kind on a sector.
// It is only called after the kind's primary plane was found free, and may
// draw from ctx.Random. A nil special with a nil error means the kind
// declined to start on this sector (for example, a stair with no steps).
type Spawner func(ctx *special.Context, list *special.List, sector level.SectorID, args Args) (special.SectorEffect, error)

// Restorer rebuilds a special of one kind from its saved record.
type Restorer func(lvl *level.Level, rec special.Record) (special.SectorEffect, error)

// Kind describes one registered special kind.
type Kind struct {
	// Name is the unique identifier used by triggers and saves (e.g. "door_normal").
	Name string

	// Title is a human-readable description for listings.
	Title string

	// Plane is the plane the kind claims on the sector it is started on.
	Plane level.Plane

	// SectorSpecials are the map sector special numbers that spawn this kind
	// at level start.
	SectorSpecials []int

	Spawn   Spawner
	Restore Restorer
}

// KindInfo contains metadata about a registered kind.
type KindInfo struct {
	Name           string
	Title          string
	Plane          level.Plane
	SectorSpecials []int
}

var (
	kinds    = make(map[string]Kind)
	bySector = make(map[int]string)
	mu       sync.RWMutex
)

// Register adds a kind to the registry.
// Typically called from an init() function.
// Panics if the name or one of its sector specials is already registered.
func Register(k Kind) {
	mu.Lock()
	defer mu.Unlock()

	if k.Name == "" || k.Spawn == nil || k.Restore == nil {
		panic(fmt.Sprintf("registry: kind %q is incomplete", k.Name))
	}
	if _, exists := kinds[k.Name]; exists {
		panic(fmt.Sprintf("registry: kind %q already registered", k.Name))
	}
	for _, n := range k.SectorSpecials {
		if other, exists := bySector[n]; exists {
			panic(fmt.Sprintf("registry: sector special %d already bound to %q", n, other))
		}
	}

	kinds[k.Name] = k
	for _, n := range k.SectorSpecials {
		bySector[n] = k.Name
	}
}

// List returns information about all registered kinds, sorted by name.
func List() []KindInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]KindInfo, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, KindInfo{
			Name:           k.Name,
			Title:          k.Title,
			Plane:          k.Plane,
			SectorSpecials: append([]int(nil), k.SectorSpecials...),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Lookup returns the kind registered under name.
// Returns an error if the name is not registered.
func Lookup(name string) (Kind, error) {
	mu.RLock()
	defer mu.RUnlock()

	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("registry: unknown kind %q", name)
	}

	return k, nil
}

// Exists checks if a kind with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := kinds[name]
	return ok
}

// ForSectorSpecial returns the kind spawned by a map sector special number.
func ForSectorSpecial(n int) (Kind, bool) {
	mu.RLock()
	defer mu.RUnlock()

	name, ok := bySector[n]
	if !ok {
		return Kind{}, false
	}
	return kinds[name], true
}

// Restore rebuilds a special from its record using the record's kind.
// The paused flag is applied after the kind rebuilds its progress.
func Restore(lvl *level.Level, rec special.Record) (special.SectorEffect, error) {
	k, err := Lookup(rec.Kind)
	if err != nil {
		return nil, err
	}
	e, err := k.Restore(lvl, rec)
	if err != nil {
		return nil, fmt.Errorf("registry: restore %s: %w", rec.Kind, err)
	}
	if rec.Paused {
		e.Pause()
	}
	return e, nil
}

// FormatSectorSpecials renders sector special numbers for listings.
func FormatSectorSpecials(ns []int) string {
	if len(ns) == 0 {
		return "-"
	}
	s := ""
	for i, n := range ns {
		if i > 0 {
			s += ","
		}
		s += strconv.Itoa(n)
	}
	return s
}
