// Package core provides the fundamental numeric and configuration types shared
// by the simulation packages. It has no external dependencies so everything
// built on it stays pure and testable.
package core

import "fmt"

// FracBits is the number of fractional bits in a Fixed value.
const FracBits = 16

// FracUnit is the Fixed representation of 1.0.
const FracUnit Fixed = 1 << FracBits

// Fixed is a signed 16.16 fixed-point number.
// All sector heights and mover speeds use it so arithmetic is identical on
// every platform. Overflow wraps like the 32-bit integers it is built on.
type Fixed int32

// FromInt converts a whole map unit to fixed-point.
func FromInt(n int) Fixed {
	return Fixed(int32(n) << FracBits)
}

// Scale multiplies by a plain integer.
func (f Fixed) Scale(n int) Fixed {
	return Fixed(int32(f) * int32(n))
}

// String formats the value in map units with four decimals.
func (f Fixed) String() string {
	return fmt.Sprintf("%.4f", float64(f)/float64(FracUnit))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
