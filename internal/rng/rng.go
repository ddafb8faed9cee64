// Package rng provides the random stream that every gameplay decision must
// draw from. Sessions own exactly one Source and pass it to consumers; there
// is no package-level generator.
package rng

// Source is a stateful generator of gameplay random bytes.
//
// Two sources cloned from the same index produce identical output forever,
// on any platform. That property is what keeps demos and save-games in sync.
type Source interface {
	// NextByte advances the state by exactly one step and returns a byte in [0,255].
	NextByte() int

	// NextSignedSpread returns NextByte() - NextByte(), evaluated left to right.
	// It consumes two steps; the first byte is the positive term.
	NextSignedSpread() int

	// Index reports the current state as a serializable cursor.
	Index() uint32

	// Clone returns an independent source continuing the identical stream.
	Clone() Source

	// CloneAt returns a fresh source whose state is exactly index.
	// No seeding transform is applied.
	CloneAt(index uint32) Source
}

// Spread is the shared implementation of NextSignedSpread.
// The first advance is the positive term; swapping them desyncs every demo.
func Spread(s Source) int {
	a := s.NextByte()
	b := s.NextByte()
	return a - b
}
