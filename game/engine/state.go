package engine

import (
	"cmp"
	"slices"
)

// State is a board together with everything derived from it. It is built
// in one pass and never updated in place.
type State struct {
	Desc    *Descriptor
	Objects []Object
	Grid    *Grid
	Rules   *RuleTable
}

// NewState indexes the objects and derives their rule table.
func NewState(desc *Descriptor, objects []Object) *State {
	grid := BuildGrid(desc, objects)
	return &State{
		Desc:    desc,
		Objects: objects,
		Grid:    grid,
		Rules:   Extract(grid),
	}
}

// SortObjects orders objects row-major, keeping the relative order of
// objects that share a cell.
func SortObjects(objects []Object) {
	slices.SortStableFunc(objects, func(a, b Object) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})
}
