package rng

// Counting wraps a Source and counts how many steps have been consumed.
// Sessions reset it every tick so a desync can be pinned to the tick where
// the consumption pattern first differs.
type Counting struct {
	inner Source
	calls uint64
}

// NewCounting wraps src.
func NewCounting(src Source) *Counting {
	return &Counting{inner: src}
}

// NextByte advances the wrapped source and counts the step.
func (c *Counting) NextByte() int {
	c.calls++
	return c.inner.NextByte()
}

// NextSignedSpread counts as two steps.
func (c *Counting) NextSignedSpread() int {
	return Spread(c)
}

// Index reports the wrapped source's index.
func (c *Counting) Index() uint32 {
	return c.inner.Index()
}

// Clone returns a counting wrapper with a zeroed counter around a clone.
func (c *Counting) Clone() Source {
	return NewCounting(c.inner.Clone())
}

// CloneAt returns a counting wrapper around inner.CloneAt(index).
func (c *Counting) CloneAt(index uint32) Source {
	return NewCounting(c.inner.CloneAt(index))
}

// Calls returns the number of steps consumed since the last Reset.
func (c *Counting) Calls() uint64 {
	return c.calls
}

// Reset zeroes the counter.
func (c *Counting) Reset() {
	c.calls = 0
}

// Unwrap returns the wrapped source.
func (c *Counting) Unwrap() Source {
	return c.inner
}

var _ Source = (*Counting)(nil)
