package rng

import "time"

// Linear-congruential constants of the legacy generator.
// The increment is spelled as two terms exactly as the legacy engine does.
const (
	compatMultiplier uint32 = 1664525
	compatIncrement  uint32 = 221297
	compatBias       uint32 = 49 * 2
)

// Compat reproduces the legacy generator bit for bit.
// Its entire state is a single uint32, which doubles as its index.
type Compat struct {
	state uint32
}

// NewCompat creates a generator positioned at index.
// This is the only constructor that may be used for recording or playback.
func NewCompat(index uint32) *Compat {
	return &Compat{state: index}
}

// NewTimeSeeded creates a generator seeded from the wall clock.
// The result is not reproducible; use it for live unscripted sessions only.
func NewTimeSeeded() *Compat {
	seed := uint32(time.Now().UnixNano())
	return &Compat{state: seed*2 + 1}
}

// NextByte returns bits 20..27 of the current state, then advances it.
func (c *Compat) NextByte() int {
	out := int((c.state >> 20) & 0xFF)
	c.state = c.state*compatMultiplier + compatIncrement + compatBias
	return out
}

// NextSignedSpread returns the difference of two consecutive bytes.
func (c *Compat) NextSignedSpread() int {
	return Spread(c)
}

// Index returns the raw state.
func (c *Compat) Index() uint32 {
	return c.state
}

// Clone copies the state into a new generator.
func (c *Compat) Clone() Source {
	return &Compat{state: c.state}
}

// CloneAt returns a new generator at the given state.
func (c *Compat) CloneAt(index uint32) Source {
	return NewCompat(index)
}

var _ Source = (*Compat)(nil)
