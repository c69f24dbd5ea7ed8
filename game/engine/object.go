package engine

// ItemType indexes Descriptor.Items. The value equal to the number of
// declared item types is the TEXT pseudo type.
type ItemType uint8

// Direction is the way an object faces. Rule derivation ignores it.
type Direction uint8

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

// Variant is the closed set of object kinds: Item, ItemWord, Attribute and
// Keyword. A nil Variant is an empty placeholder.
type Variant interface {
	variant()
}

// Item is a physical piece of an item type. It is not a noun.
type Item struct {
	Type ItemType
}

// ItemWord is the word form of an item type and acts as a noun.
type ItemWord struct {
	Type ItemType
}

// Attribute is an attribute word such as YOU or WIN.
type Attribute struct {
	Kind AttrKind
}

// Keyword is a grammar word such as IS or AND.
type Keyword struct {
	Kind KeywordKind
}

func (Item) variant()      {}
func (ItemWord) variant()  {}
func (Attribute) variant() {}
func (Keyword) variant()   {}

// Object is one board entity.
type Object struct {
	Variant Variant
	Row     int
	Col     int
	Facing  Direction
}

// IsNone reports whether the object is an empty placeholder.
func (o Object) IsNone() bool {
	return o.Variant == nil
}

// IsKeyword reports whether the object is the given keyword.
func (o Object) IsKeyword(kind KeywordKind) bool {
	kw, ok := o.Variant.(Keyword)
	return ok && kw.Kind == kind
}
