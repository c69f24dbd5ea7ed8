package engine

import "testing"

var (
	babaOnly = []ItemInfo{{Name: "BABA", Glyph: 'b'}}
	babaFlag = []ItemInfo{{Name: "BABA", Glyph: 'b'}, {Name: "FLAG", Glyph: 'f'}}
	threeOf  = []ItemInfo{{Name: "BABA", Glyph: 'b'}, {Name: "FLAG", Glyph: 'f'}, {Name: "KEKE", Glyph: 'k'}}
)

// buildBoard decodes an unbordered board. The descriptor's capacity equals
// the number of objects, as a parsed level's would.
func buildBoard(t *testing.T, items []ItemInfo, rows ...string) (*Descriptor, []Object) {
	t.Helper()

	cols := 0
	for _, row := range rows {
		cols = max(cols, len([]rune(row)))
	}

	desc, err := NewDescriptor(len(rows), cols, len(rows)*cols, items)
	if err != nil {
		t.Fatalf("Failed to create descriptor: %v", err)
	}

	var objects []Object
	for r, row := range rows {
		for c, glyph := range []rune(row) {
			v, ok := desc.Decode(DefaultSymbols(), glyph)
			if !ok {
				t.Fatalf("Unknown glyph %q at (%d,%d)", glyph, r, c)
			}
			if v == nil {
				continue
			}
			objects = append(objects, Object{Variant: v, Row: r, Col: c})
		}
	}

	desc, err = desc.WithCapacity(len(objects))
	if err != nil {
		t.Fatalf("Failed to resize descriptor: %v", err)
	}
	return desc, objects
}

func extractBoard(t *testing.T, items []ItemInfo, rows ...string) *RuleTable {
	t.Helper()
	desc, objects := buildBoard(t, items, rows...)
	return Extract(BuildGrid(desc, objects))
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("Expected %s to panic", name)
		}
	}()
	fn()
}
