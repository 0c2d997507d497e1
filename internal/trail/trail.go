// Package trail keeps a bounded, newest-first history of body positions.
//
// A [Buffer] is a ring over a slice allocated once at construction. Recording
// a position when the buffer is full overwrites the oldest entry, so the
// buffer never grows past its capacity.
//
// Index 0 is always the most recent position. Frontends turn an index into a
// render progress with [Buffer.Progress]:
//
//	for i, p := range tr.All() {
//	    progress := tr.Progress(i) // 0 = newest
//	    draw(p, 1-progress)
//	}
package trail

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultLength is the trail capacity used when none is configured.
const DefaultLength = 50

type Buffer struct {
	points []r2.Vec
	head   int // slot holding the newest point
	size   int
}

// New returns an empty buffer holding at most capacity points.
func New(capacity int) *Buffer {
	if capacity < 1 {
		panic(fmt.Sprintf("trail: capacity must be positive, got %d", capacity))
	}
	return &Buffer{
		points: make([]r2.Vec, capacity),
		head:   capacity - 1,
	}
}

// Record inserts p at the front, evicting the oldest point once full.
func (b *Buffer) Record(p r2.Vec) {
	b.head = (b.head + 1) % len(b.points)
	b.points[b.head] = p
	if b.size < len(b.points) {
		b.size++
	}
}

func (b *Buffer) Len() int { return b.size }
func (b *Buffer) Cap() int { return len(b.points) }

// At returns the i-th newest point.
func (b *Buffer) At(i int) r2.Vec {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("trail: index %d out of range [0,%d)", i, b.size))
	}
	n := len(b.points)
	return b.points[(b.head-i+n)%n]
}

// Front returns the most recently recorded point.
func (b *Buffer) Front() (r2.Vec, bool) {
	if b.size == 0 {
		return r2.Vec{}, false
	}
	return b.points[b.head], true
}

// All yields (index, point) pairs from newest to oldest. Ranging over it does
// not consume the buffer; every call starts again at the newest point.
func (b *Buffer) All() iter.Seq2[int, r2.Vec] {
	return func(yield func(int, r2.Vec) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(i, b.At(i)) {
				return
			}
		}
	}
}

// Progress maps index i to i/capacity.
func (b *Buffer) Progress(i int) float64 {
	return float64(i) / float64(len(b.points))
}

func (b *Buffer) Snapshot() []r2.Vec {
	out := make([]r2.Vec, b.size)
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

func (b *Buffer) Reset() {
	b.head = len(b.points) - 1
	b.size = 0
}
