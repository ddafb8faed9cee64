package special

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/sectorsim/internal/level"
)

var (
	// ErrPlaneBusy is returned when a plane is already controlled by a live special.
	ErrPlaneBusy = errors.New("special: plane already controlled")

	// ErrNotLive is returned when adding a special that is terminated or
	// already registered.
	ErrNotLive = errors.New("special: special is terminated or already registered")
)

// List is the live registry of specials for one session.
// Specials tick in registration order. Each plane is claimed by at most one
// special, which answers "what controls sector S's ceiling".
type List struct {
	items     []SectorEffect
	claims    map[SectorRef]SectorEffect
	iterating int
	onRemove  func(e SectorEffect)
}

// NewList creates an empty registry.
func NewList() *List {
	return &List{
		claims: make(map[SectorRef]SectorEffect),
	}
}

// OnRemove sets a hook called once for every special swept out of the list.
func (l *List) OnRemove(fn func(e SectorEffect)) {
	l.onRemove = fn
}

// Add registers a special at the end of the tick order and claims its planes.
// Nothing changes if any plane is already claimed.
func (l *List) Add(e SectorEffect) error {
	b := e.base()
	if e.Terminated() || b.owner != nil {
		return ErrNotLive
	}

	refs := e.GetSectors(nil)
	for _, ref := range refs {
		if _, busy := l.claims[ref]; busy {
			return fmt.Errorf("special: sector %d %s: %w", ref.Sector, ref.Plane, ErrPlaneBusy)
		}
	}
	for _, ref := range refs {
		l.claims[ref] = e
	}

	b.owner = l
	l.items = append(l.items, e)
	return nil
}

// Busy reports whether a live special controls the plane.
func (l *List) Busy(sector level.SectorID, plane level.Plane) bool {
	_, ok := l.claims[SectorRef{Sector: sector, Plane: plane}]
	return ok
}

// Controller returns the special controlling the plane, if any.
func (l *List) Controller(sector level.SectorID, plane level.Plane) (SectorEffect, bool) {
	e, ok := l.claims[SectorRef{Sector: sector, Plane: plane}]
	return e, ok
}

// Tick ticks every live special in registration order, then sweeps out the
// ones that terminated. Specials added during the pass are ticked in the
// same pass.
func (l *List) Tick(ctx *Context) {
	l.iterating++
	for i := 0; i < len(l.items); i++ {
		e := l.items[i]
		if e.Terminated() {
			continue
		}
		e.Tick(ctx)
	}
	l.iterating--
	l.sweep()
}

// Len returns the number of live specials.
func (l *List) Len() int {
	n := 0
	for _, e := range l.items {
		if !e.Terminated() {
			n++
		}
	}
	return n
}

// Each calls fn for every live special in tick order.
func (l *List) Each(fn func(e SectorEffect)) {
	l.iterating++
	defer func() {
		l.iterating--
		l.sweep()
	}()
	for i := 0; i < len(l.items); i++ {
		if !l.items[i].Terminated() {
			fn(l.items[i])
		}
	}
}

// Specials returns the live specials in tick order.
func (l *List) Specials() []SectorEffect {
	out := make([]SectorEffect, 0, len(l.items))
	for _, e := range l.items {
		if !e.Terminated() {
			out = append(out, e)
		}
	}
	return out
}

// Matching returns the live specials that control any plane of a sector in
// sectors, in tick order.
func (l *List) Matching(sectors mapset.Set[level.SectorID]) []SectorEffect {
	var out []SectorEffect
	var refs []SectorRef
	for _, e := range l.items {
		if e.Terminated() {
			continue
		}
		refs = e.GetSectors(refs[:0])
		for _, r := range refs {
			if sectors.Has(r.Sector) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// PauseAll pauses every active special and returns the ones it paused.
// Resuming only those leaves individually paused specials alone.
func (l *List) PauseAll() []SectorEffect {
	var paused []SectorEffect
	for _, e := range l.items {
		if !e.Terminated() && !e.IsPaused() {
			e.Pause()
			paused = append(paused, e)
		}
	}
	return paused
}

// ResumeAll resumes every paused special.
func (l *List) ResumeAll() {
	for _, e := range l.items {
		e.Resume()
	}
}

// DestroyAll force-terminates every special and empties the list.
// Used on level unload; sector geometry is left as it is.
func (l *List) DestroyAll() {
	l.iterating++
	for _, e := range l.items {
		e.FinalizeDestroy()
	}
	l.iterating--
	l.sweep()
}

// release drops the claims held by e. Removal from the tick order happens
// in sweep, after the current pass.
func (l *List) release(e SectorEffect) {
	for _, ref := range e.GetSectors(nil) {
		if l.claims[ref] == e {
			delete(l.claims, ref)
		}
	}
	l.sweep()
}

func (l *List) sweep() {
	if l.iterating > 0 {
		return
	}
	kept := l.items[:0]
	for _, e := range l.items {
		if e.Terminated() {
			if l.onRemove != nil {
				l.onRemove(e)
			}
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = nil
	}
	l.items = kept
}
