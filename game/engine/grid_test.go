package engine

import "testing"

func TestBuildGrid_IndexesEveryObject(t *testing.T) {
	desc, objects := buildBoard(t, babaFlag, "B=@", " f ", "F =")
	grid := BuildGrid(desc, objects)

	count := 0
	for h, obj := range grid.Objects() {
		if grid.Object(h) != obj {
			t.Errorf("Object(%d) disagrees with iteration", h)
		}
		found := false
		for ch := range grid.At(obj.Row, obj.Col) {
			if ch == h {
				found = true
			}
		}
		if !found {
			t.Errorf("Object %d not listed in its cell (%d,%d)", h, obj.Row, obj.Col)
		}
		count++
	}
	if count != len(objects) {
		t.Errorf("Expected %d objects, got %d", len(objects), count)
	}

	if _, ok := grid.Top(1, 0); ok {
		t.Error("Expected cell (1,0) to be empty")
	}
	top, ok := grid.Top(1, 1)
	if !ok || top.Variant != (Item{Type: 1}) {
		t.Errorf("Expected flag piece at (1,1), got %+v", top)
	}
}

func TestBuildGrid_StackedCellListsLatestFirst(t *testing.T) {
	desc, err := NewDescriptor(1, 2, 4, babaFlag)
	if err != nil {
		t.Fatalf("Failed to create descriptor: %v", err)
	}
	objects := []Object{
		{Variant: Item{Type: 0}, Row: 0, Col: 1},
		{Variant: nil},
		{Variant: ItemWord{Type: 1}, Row: 0, Col: 1},
	}

	grid := BuildGrid(desc, objects)

	var handles []Handle
	for h := range grid.At(0, 1) {
		handles = append(handles, h)
	}
	if len(handles) != 2 || handles[0] != 2 || handles[1] != 0 {
		t.Errorf("Expected handles [2 0], got %v", handles)
	}

	for h := range grid.Objects() {
		if h == 1 {
			t.Error("Expected empty placeholder to be skipped")
		}
	}
}

func TestBuildGrid_StackedWordStillForms(t *testing.T) {
	desc, err := NewDescriptor(1, 3, 4, babaOnly)
	if err != nil {
		t.Fatalf("Failed to create descriptor: %v", err)
	}
	objects := []Object{
		{Variant: ItemWord{Type: 0}, Row: 0, Col: 0},
		{Variant: Item{Type: 0}, Row: 0, Col: 0},
		{Variant: Keyword{Kind: KeywordIs}, Row: 0, Col: 1},
		{Variant: Attribute{Kind: AttrWin}, Row: 0, Col: 2},
	}

	table := Extract(BuildGrid(desc, objects))
	if !table.HasAttr(0, AttrWin) {
		t.Error("Expected a word sharing its cell with a piece to still form BABA IS WIN")
	}
}

func TestBuildGrid_ContractViolationsPanic(t *testing.T) {
	desc, err := NewDescriptor(2, 2, 1, babaOnly)
	if err != nil {
		t.Fatalf("Failed to create descriptor: %v", err)
	}

	expectPanic(t, "capacity overflow", func() {
		BuildGrid(desc, make([]Object, 2))
	})
	expectPanic(t, "object off board", func() {
		BuildGrid(desc, []Object{{Variant: Item{}, Row: 2, Col: 0}})
	})
	expectPanic(t, "negative position", func() {
		BuildGrid(desc, []Object{{Variant: Item{}, Row: 0, Col: -1}})
	})

	grid := BuildGrid(desc, nil)
	expectPanic(t, "lookup off board", func() {
		for range grid.At(5, 5) {
		}
	})
}

func TestGrid_AtDetectsMisplacedObject(t *testing.T) {
	desc, err := NewDescriptor(2, 2, 1, babaOnly)
	if err != nil {
		t.Fatalf("Failed to create descriptor: %v", err)
	}
	objects := []Object{{Variant: Item{}, Row: 0, Col: 0}}
	grid := BuildGrid(desc, objects)

	objects[0].Row = 1
	expectPanic(t, "stale index", func() {
		for range grid.At(0, 0) {
		}
	})
}
