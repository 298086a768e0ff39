package buffer

import (
	"errors"
	"fmt"
)

// BoundKind represents how a Bound treats its value.
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

func (k BoundKind) String() string {
	switch k {
	case Included:
		return "Included"
	case Excluded:
		return "Excluded"
	default:
		return "Unbounded"
	}
}

// Bound is one endpoint of a range.
type Bound[T any] struct {
	Kind  BoundKind
	Value T
}

// Incl returns a bound that includes v.
func Incl[T any](v T) Bound[T] {
	return Bound[T]{Kind: Included, Value: v}
}

// Excl returns a bound that excludes v.
func Excl[T any](v T) Bound[T] {
	return Bound[T]{Kind: Excluded, Value: v}
}

// Open returns an unbounded endpoint.
func Open[T any]() Bound[T] {
	return Bound[T]{}
}

func (b Bound[T]) String() string {
	if b.Kind == Unbounded {
		return "Unbounded"
	}
	return fmt.Sprintf("%s(%v)", b.Kind, b.Value)
}

// Range is a pair of bounds. It is used for logical buffer ranges as well as DOM ranges.
type Range[T any] struct {
	Start Bound[T]
	End   Bound[T]
}

func (r Range[T]) String() string {
	return fmt.Sprintf("(%s, %s)", r.Start, r.End)
}

// BufferRange is a range over logical buffer positions.
// Positions are the gaps between UTF-16 code units, 0 through Len().
type BufferRange = Range[int]

// Closed returns the range including both lo and hi.
func Closed(lo, hi int) BufferRange {
	return BufferRange{Start: Incl(lo), End: Incl(hi)}
}

var (
	ErrInvalidRange = errors.New("range start is after range end")
	ErrOutOfBounds  = errors.New("range bound outside of buffer")
)

// Positions returns the lowest and highest position of r within a buffer of length n.
// ok is false when r includes no position.
func Positions(r BufferRange, n int) (lo, hi int, ok bool) {
	switch r.Start.Kind {
	case Included:
		lo = r.Start.Value
	case Excluded:
		lo = r.Start.Value + 1
	default:
		lo = 0
	}

	switch r.End.Kind {
	case Included:
		hi = r.End.Value
	case Excluded:
		hi = r.End.Value - 1
	default:
		hi = n
	}

	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}

	return lo, hi, lo <= hi
}

// Validate checks that the concrete bounds of r lie within [0, n] and that start <= end.
func Validate(r BufferRange, n int) error {
	for _, b := range []Bound[int]{r.Start, r.End} {
		if b.Kind != Unbounded && (b.Value < 0 || b.Value > n) {
			return fmt.Errorf("%w: %s not in [0, %d]", ErrOutOfBounds, b, n)
		}
	}

	if r.Start.Kind != Unbounded && r.End.Kind != Unbounded && r.Start.Value > r.End.Value {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}

	return nil
}

// Contains reports whether position p is included in r.
func Contains(r BufferRange, n, p int) bool {
	lo, hi, ok := Positions(r, n)
	return ok && lo <= p && p <= hi
}
