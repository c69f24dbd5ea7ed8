package engine

// Census counts the objects of a board by kind.
type Census struct {
	Items      int `json:"items"`
	Words      int `json:"words"`
	Attributes int `json:"attributes"`
	Keywords   int `json:"keywords"`
	Statements int `json:"statements"`
}

// TakeCensus counts the objects on the board and the statements derived from them
func TakeCensus(s *State) Census {
	var c Census
	for _, obj := range s.Grid.Objects() {
		switch obj.Variant.(type) {
		case Item:
			c.Items++
		case ItemWord:
			c.Words++
		case Attribute:
			c.Attributes++
		case Keyword:
			c.Keywords++
		}
	}
	c.Statements = len(s.Rules.statements)
	return c
}

// SubjectsWith returns the names of the subjects granted an attribute,
// TEXT last when it applies.
func SubjectsWith(t *RuleTable, a AttrKind) []string {
	var names []string
	for s := 0; s <= t.desc.NumItemTypes(); s++ {
		if t.HasAttr(ItemType(s), a) {
			names = append(names, t.desc.ItemName(ItemType(s)))
		}
	}
	return names
}

// CountPieces counts the physical pieces of an item type on the board
func CountPieces(s *State, it ItemType) int {
	count := 0
	for _, obj := range s.Grid.Objects() {
		if item, ok := obj.Variant.(Item); ok && item.Type == it {
			count++
		}
	}
	return count
}
