package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// Descriptor limits
const (
	MaxItemTypes = 26 // one per lowercase letter
	MaxItemName  = 30
)

// ItemInfo declares one item type.
type ItemInfo struct {
	Name  string
	Glyph rune
}

// Descriptor is the immutable metadata of a parsed level. Rows and Cols
// describe the playable interior of the board.
type Descriptor struct {
	Rows       int
	Cols       int
	Size       int
	MaxObjects int
	Items      []ItemInfo

	itemByGlyph map[rune]ItemType
}

// NewDescriptor validates the board dimensions and item declarations.
func NewDescriptor(rows, cols, maxObjects int, items []ItemInfo) (*Descriptor, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("descriptor: board must be at least 1x1, got %dx%d", rows, cols)
	}
	if maxObjects < 0 || maxObjects > MaxHandles {
		return nil, fmt.Errorf("descriptor: object capacity must be between 0 and %d, got %d", MaxHandles, maxObjects)
	}
	if len(items) > MaxItemTypes {
		return nil, fmt.Errorf("descriptor: at most %d item types, got %d", MaxItemTypes, len(items))
	}

	d := &Descriptor{
		Rows:        rows,
		Cols:        cols,
		Size:        rows * cols,
		MaxObjects:  maxObjects,
		Items:       append([]ItemInfo(nil), items...),
		itemByGlyph: make(map[rune]ItemType, len(items)),
	}

	for i, info := range items {
		if info.Glyph < 'a' || info.Glyph > 'z' {
			return nil, fmt.Errorf("descriptor: item %d glyph %q is not a lowercase letter", i, info.Glyph)
		}
		if _, dup := d.itemByGlyph[info.Glyph]; dup {
			return nil, fmt.Errorf("descriptor: glyph %q declared twice", info.Glyph)
		}
		if info.Name == "" || len(info.Name) > MaxItemName {
			return nil, fmt.Errorf("descriptor: item %q name must be 1 to %d characters", info.Glyph, MaxItemName)
		}
		d.itemByGlyph[info.Glyph] = ItemType(i)
	}

	return d, nil
}

// WithCapacity returns a copy of d with a different object capacity.
func (d *Descriptor) WithCapacity(maxObjects int) (*Descriptor, error) {
	return NewDescriptor(d.Rows, d.Cols, maxObjects, d.Items)
}

// NumItemTypes returns the number of declared item types.
func (d *Descriptor) NumItemTypes() int {
	return len(d.Items)
}

// TextType returns the pseudo item type matched by the TEXT keyword.
func (d *Descriptor) TextType() ItemType {
	return ItemType(len(d.Items))
}

// ItemName returns the display name of an item type, or TEXT for the
// pseudo type.
func (d *Descriptor) ItemName(t ItemType) string {
	if int(t) < len(d.Items) {
		return d.Items[t].Name
	}
	if t == d.TextType() {
		return TextLabel
	}
	return fmt.Sprintf("ITEM(%d)", t)
}

// LookupItem maps a lowercase glyph to its item type.
func (d *Descriptor) LookupItem(glyph rune) (ItemType, bool) {
	t, ok := d.itemByGlyph[glyph]
	return t, ok
}

// InBounds reports whether (row, col) lies on the board.
func (d *Descriptor) InBounds(row, col int) bool {
	return row >= 0 && row < d.Rows && col >= 0 && col < d.Cols
}

// Decode maps a board glyph to an object variant. Space decodes to a nil
// variant. The boolean is false for glyphs the level does not define.
func (d *Descriptor) Decode(sym *Symbols, glyph rune) (Variant, bool) {
	switch {
	case glyph == ' ':
		return nil, true
	case unicode.IsLower(glyph):
		if t, ok := d.LookupItem(glyph); ok {
			return Item{Type: t}, true
		}
	case unicode.IsUpper(glyph):
		if t, ok := d.LookupItem(unicode.ToLower(glyph)); ok {
			return ItemWord{Type: t}, true
		}
	default:
		if a, ok := sym.LookupAttr(glyph); ok {
			return Attribute{Kind: a}, true
		}
		if k, ok := sym.LookupKeyword(glyph); ok {
			return Keyword{Kind: k}, true
		}
	}
	return nil, false
}

// Glyph is the inverse of Decode.
func (d *Descriptor) Glyph(sym *Symbols, v Variant) rune {
	switch v := v.(type) {
	case nil:
		return ' '
	case Item:
		return d.Items[v.Type].Glyph
	case ItemWord:
		return unicode.ToUpper(d.Items[v.Type].Glyph)
	case Attribute:
		return sym.AttrGlyph(v.Kind)
	case Keyword:
		return sym.KeywordGlyph(v.Kind)
	}
	return '?'
}

// Describe names an object the way rule text does: item pieces in lower
// case, words in upper case.
func (d *Descriptor) Describe(o Object) string {
	switch v := o.Variant.(type) {
	case Item:
		return strings.ToLower(d.Items[v.Type].Name)
	case ItemWord:
		return d.Items[v.Type].Name
	case Attribute:
		return v.Kind.String()
	case Keyword:
		return v.Kind.String()
	}
	return "???"
}
