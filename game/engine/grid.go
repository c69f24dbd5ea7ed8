package engine

import (
	"fmt"
	"iter"
	"math"
)

// Handle is an index into the object arena. Within a cell it also serves
// as the link to the next object in that cell.
type Handle uint16

// NoObject terminates a cell list and marks an empty cell.
const NoObject Handle = math.MaxUint16

// MaxHandles is the largest object arena a Grid can index.
const MaxHandles = int(NoObject)

// Grid maps every board cell to the objects occupying it. Each cell holds a
// singly linked list threaded through the next array; the most recently
// inserted object is visited first.
type Grid struct {
	desc    *Descriptor
	objects []Object
	heads   []Handle
	next    []Handle
}

// BuildGrid indexes objects by cell in a single pass. Objects outside the
// board, or more objects than the descriptor's capacity, violate the
// caller's contract and panic.
func BuildGrid(desc *Descriptor, objects []Object) *Grid {
	if len(objects) > desc.MaxObjects {
		panic(fmt.Sprintf("engine: %d objects exceed capacity %d", len(objects), desc.MaxObjects))
	}

	g := &Grid{
		desc:    desc,
		objects: objects,
		heads:   make([]Handle, desc.Size),
		next:    make([]Handle, desc.MaxObjects),
	}
	for i := range g.heads {
		g.heads[i] = NoObject
	}
	for i := range g.next {
		g.next[i] = NoObject
	}

	for i, obj := range objects {
		if obj.IsNone() {
			continue
		}
		if !desc.InBounds(obj.Row, obj.Col) {
			panic(fmt.Sprintf("engine: object %d at (%d,%d) is off the %dx%d board",
				i, obj.Row, obj.Col, desc.Rows, desc.Cols))
		}

		offset := g.offset(obj.Row, obj.Col)
		g.next[i] = g.heads[offset]
		g.heads[offset] = Handle(i)
	}

	return g
}

// Descriptor returns the level metadata the grid was built from.
func (g *Grid) Descriptor() *Descriptor {
	return g.desc
}

// Object returns the object behind a handle.
func (g *Grid) Object(h Handle) Object {
	return g.objects[h]
}

// Objects yields every non-empty object in ascending handle order.
func (g *Grid) Objects() iter.Seq2[Handle, Object] {
	return func(yield func(Handle, Object) bool) {
		for i, obj := range g.objects {
			if obj.IsNone() {
				continue
			}
			if !yield(Handle(i), obj) {
				return
			}
		}
	}
}

// At yields the objects in cell (row, col), most recently inserted first.
// The cell must be on the board.
func (g *Grid) At(row, col int) iter.Seq2[Handle, Object] {
	return func(yield func(Handle, Object) bool) {
		for h := g.heads[g.offset(row, col)]; h != NoObject; h = g.next[h] {
			obj := g.objects[h]
			if obj.Row != row || obj.Col != col {
				panic(fmt.Sprintf("engine: object %d indexed at (%d,%d) but stored at (%d,%d)",
					h, row, col, obj.Row, obj.Col))
			}
			if !yield(h, obj) {
				return
			}
		}
	}
}

// Top returns the first object listed in a cell.
func (g *Grid) Top(row, col int) (Object, bool) {
	h := g.heads[g.offset(row, col)]
	if h == NoObject {
		return Object{}, false
	}
	return g.objects[h], true
}

func (g *Grid) offset(row, col int) int {
	if !g.desc.InBounds(row, col) {
		panic(fmt.Sprintf("engine: cell (%d,%d) is off the %dx%d board", row, col, g.desc.Rows, g.desc.Cols))
	}
	return row*g.desc.Cols + col
}
