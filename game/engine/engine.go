package engine

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrCellOutOfRange is returned when an edit addresses a cell off the board.
	ErrCellOutOfRange = errors.New("cell out of range")
	// ErrInvalidGlyph is returned when an edit uses a glyph the level does not define.
	ErrInvalidGlyph = errors.New("invalid glyph")
)

// Engine provides the rule workbench operations on one level
type Engine interface {
	// State and views
	State() *State
	Snapshot() Snapshot
	RuleLines() []string
	Cell(row, col int) (CellView, error)

	// Editing
	SetCell(row, col int, glyph rune) error
	ClearCell(row, col int) error
	Reset() *State
	Restore(objects []Object) error

	// Level
	LevelName() string
	Descriptor() *Descriptor
}

var _ Engine = (*GameEngine)(nil)

// GameEngine implements the Engine interface. Every edit re-derives the
// rule table from scratch.
type GameEngine struct {
	levelName string
	desc      *Descriptor
	initial   []Object
	state     *State
}

// NewEngine creates a workbench for a parsed level. The object arena is
// widened to the board size so every cell can be filled by edits.
func NewEngine(levelName string, desc *Descriptor, objects []Object) (*GameEngine, error) {
	if desc == nil {
		return nil, fmt.Errorf("descriptor cannot be nil")
	}

	capacity := max(desc.MaxObjects, min(desc.Size, MaxHandles))
	if capacity != desc.MaxObjects {
		widened, err := desc.WithCapacity(capacity)
		if err != nil {
			return nil, err
		}
		desc = widened
	}
	if len(objects) > desc.MaxObjects {
		return nil, fmt.Errorf("%d objects exceed capacity %d", len(objects), desc.MaxObjects)
	}
	for i, obj := range objects {
		if !obj.IsNone() && !desc.InBounds(obj.Row, obj.Col) {
			return nil, fmt.Errorf("object %d at (%d,%d): %w", i, obj.Row, obj.Col, ErrCellOutOfRange)
		}
	}

	e := &GameEngine{
		levelName: levelName,
		desc:      desc,
		initial:   slices.Clone(objects),
	}
	e.state = NewState(desc, slices.Clone(objects))
	return e, nil
}

// State returns the current derived state
func (e *GameEngine) State() *State {
	return e.state
}

// Snapshot returns the display view of the current state
func (e *GameEngine) Snapshot() Snapshot {
	return e.state.Snapshot(e.levelName)
}

// RuleLines returns the rendered rules of the current board
func (e *GameEngine) RuleLines() []string {
	return e.state.Rules.Lines()
}

// Cell describes the contents of one cell
func (e *GameEngine) Cell(row, col int) (CellView, error) {
	if !e.desc.InBounds(row, col) {
		return CellView{}, e.outOfRange(row, col)
	}
	return e.state.Cell(row, col), nil
}

// SetCell replaces the contents of a cell with the object a glyph decodes
// to. A space empties the cell.
func (e *GameEngine) SetCell(row, col int, glyph rune) error {
	if !e.desc.InBounds(row, col) {
		return e.outOfRange(row, col)
	}

	v, ok := e.desc.Decode(DefaultSymbols(), glyph)
	if !ok {
		return fmt.Errorf("glyph %q: %w", glyph, ErrInvalidGlyph)
	}

	objects := make([]Object, 0, len(e.state.Objects)+1)
	for _, obj := range e.state.Objects {
		if obj.IsNone() || (obj.Row == row && obj.Col == col) {
			continue
		}
		objects = append(objects, obj)
	}
	if v != nil {
		objects = append(objects, Object{Variant: v, Row: row, Col: col})
	}
	SortObjects(objects)

	e.state = NewState(e.desc, objects)
	return nil
}

// ClearCell removes every object from a cell
func (e *GameEngine) ClearCell(row, col int) error {
	return e.SetCell(row, col, ' ')
}

// Reset restores the board as it was loaded
func (e *GameEngine) Reset() *State {
	e.state = NewState(e.desc, slices.Clone(e.initial))
	return e.state
}

// Restore replaces the current board, used when loading a saved session.
// Reset still returns to the level as loaded.
func (e *GameEngine) Restore(objects []Object) error {
	if len(objects) > e.desc.MaxObjects {
		return fmt.Errorf("%d objects exceed capacity %d", len(objects), e.desc.MaxObjects)
	}

	restored := make([]Object, 0, len(objects))
	for _, obj := range objects {
		if obj.IsNone() {
			continue
		}
		if !e.desc.InBounds(obj.Row, obj.Col) {
			return e.outOfRange(obj.Row, obj.Col)
		}
		restored = append(restored, obj)
	}
	SortObjects(restored)

	e.state = NewState(e.desc, restored)
	return nil
}

// LevelName returns the name of the level being edited
func (e *GameEngine) LevelName() string {
	return e.levelName
}

// Descriptor returns the level metadata, with the widened capacity
func (e *GameEngine) Descriptor() *Descriptor {
	return e.desc
}

func (e *GameEngine) outOfRange(row, col int) error {
	return fmt.Errorf("cell (%d,%d) on a %dx%d board: %w", row, col, e.desc.Rows, e.desc.Cols, ErrCellOutOfRange)
}
