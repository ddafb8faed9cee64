package special

import "fmt"

// Base implements the lifecycle shared by every sector special.
// Embed it and call Init from the constructor:
//
//	d := &Door{...}
//	d.Init(d, special.SectorRef{Sector: id, Plane: level.PlaneCeiling})
type Base struct {
	impl  Thinker
	refs  []SectorRef
	state State
	owner *List
}

// Init binds the embedding special and the planes it controls.
// The refs are fixed for the special's lifetime.
func (b *Base) Init(impl Thinker, refs ...SectorRef) {
	b.impl = impl
	b.refs = append([]SectorRef(nil), refs...)
	b.state = StateActive
}

func (b *Base) base() *Base {
	return b
}

// Tick runs one tick of the embedding special's Think when active.
func (b *Base) Tick(ctx *Context) {
	switch b.state {
	case StateTerminated:
		if ctx != nil && ctx.Strict {
			panic(fmt.Sprintf("special: %s ticked after termination", b.kind()))
		}
		return
	case StatePaused:
		return
	}
	if b.impl == nil {
		return
	}
	b.impl.Think(ctx)
}

// Pause moves an active special to paused.
func (b *Base) Pause() {
	if b.state == StateActive {
		b.state = StatePaused
	}
}

// Resume moves a paused special back to active.
func (b *Base) Resume() {
	if b.state == StatePaused {
		b.state = StateActive
	}
}

// IsPaused reports whether the special is paused.
func (b *Base) IsPaused() bool {
	return b.state == StatePaused
}

// Terminated reports whether the special has been freed or destroyed.
func (b *Base) Terminated() bool {
	return b.state == StateTerminated
}

// State returns the lifecycle state.
func (b *Base) State() State {
	return b.state
}

// Free terminates the special, lets it settle its sectors, and releases its
// plane claims.
func (b *Base) Free() {
	if b.state == StateTerminated {
		return
	}
	b.state = StateTerminated
	if s, ok := b.impl.(Settler); ok {
		s.Settle()
	}
	b.detach()
}

// FinalizeDestroy terminates the special and releases its plane claims
// without touching any sector.
func (b *Base) FinalizeDestroy() {
	if b.state == StateTerminated {
		return
	}
	b.state = StateTerminated
	b.detach()
}

// MultiSector reports whether more than one distinct sector is controlled.
func (b *Base) MultiSector() bool {
	if len(b.refs) < 2 {
		return false
	}
	first := b.refs[0].Sector
	for _, r := range b.refs[1:] {
		if r.Sector != first {
			return true
		}
	}
	return false
}

// GetSectors appends the controlled planes to dst.
func (b *Base) GetSectors(dst []SectorRef) []SectorRef {
	return append(dst, b.refs...)
}

// NewRecord starts a save record carrying the shared lifecycle fields.
func (b *Base) NewRecord(kind string) Record {
	return Record{
		Kind:    kind,
		Paused:  b.state == StatePaused,
		Sectors: b.GetSectors(nil),
		Fields:  make(map[string]int64),
	}
}

func (b *Base) detach() {
	if b.owner == nil {
		return
	}
	owner := b.owner
	b.owner = nil
	owner.release(b.impl)
}

func (b *Base) kind() string {
	if b.impl == nil {
		return "special"
	}
	return b.impl.Kind()
}
