package engine

// Phrase is what a scan collected: the nouns as item-type bits (including
// the TEXT pseudo type) and, for predicates, the attribute bits.
type Phrase struct {
	Items BitSet
	Attrs BitSet
}

// Empty reports whether the phrase matched nothing.
func (p Phrase) Empty() bool {
	return p.Items.Empty() && p.Attrs.Empty()
}

// ScanPhrase walks away from the anchor cell one step at a time along
// (dRow, dCol), reading a chain of nouns joined by AND. Attributes count as
// nouns only when collectAttrs is set. The walk stops at the first cell
// that does not continue the chain or at the board edge.
func (g *Grid) ScanPhrase(row, col, dRow, dCol int, collectAttrs bool) Phrase {
	if dRow == 0 && dCol == 0 {
		panic("engine: scan direction must be non-zero")
	}

	d := g.desc
	textBit := int(d.TextType())
	p := Phrase{
		Items: NewBitSet(d.NumItemTypes() + 1),
		Attrs: NewBitSet(NumAttrKinds),
	}

	wantNoun := true
	for {
		row += dRow
		col += dCol

		if row < 0 || row >= d.Rows || col < 0 || col >= d.Cols {
			break
		}

		hit := false
		for _, obj := range g.At(row, col) {
			if !wantNoun {
				if obj.IsKeyword(KeywordAnd) {
					hit = true
				}
				continue
			}

			switch v := obj.Variant.(type) {
			case ItemWord:
				p.Items.Add(int(v.Type))
				hit = true
			case Keyword:
				if v.Kind == KeywordText {
					p.Items.Add(textBit)
					hit = true
				}
			case Attribute:
				if collectAttrs {
					p.Attrs.Add(int(v.Kind))
					hit = true
				}
			}
		}

		if !hit {
			break
		}
		wantNoun = !wantNoun
	}

	return p
}
