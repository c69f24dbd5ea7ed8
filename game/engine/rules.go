package engine

import (
	"log/slog"
	"math"
	"slices"
)

// Axis is the orientation of a rule statement on the board.
type Axis uint8

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

func (a Axis) String() string {
	if a == AxisVertical {
		return "vertical"
	}
	return "horizontal"
}

// axes lists the scan orientations in the order they are tried. Each
// vector points from subject towards predicate.
var axes = [...]struct {
	axis       Axis
	dRow, dCol int
}{
	{AxisHorizontal, 0, 1},
	{AxisVertical, 1, 0},
}

// NoTransform marks an item type without a transformation target.
const NoTransform ItemType = math.MaxUint8

// Statement is one IS keyword that produced a rule along one axis.
type Statement struct {
	Anchor    Handle
	Row       int
	Col       int
	Axis      Axis
	Subjects  BitSet
	Predicate Phrase
}

// RuleTable is the rule set derived from one board. It is filled once by
// Extract and read-only afterwards.
type RuleTable struct {
	desc       *Descriptor
	attrs      []BitSet   // per item type, then the TEXT pseudo type
	transforms []ItemType // per real item type
	statements []Statement
}

func newRuleTable(desc *Descriptor) *RuleTable {
	n := desc.NumItemTypes()
	t := &RuleTable{
		desc:       desc,
		attrs:      make([]BitSet, n+1),
		transforms: make([]ItemType, n),
	}
	for i := range t.attrs {
		t.attrs[i] = NewBitSet(NumAttrKinds)
	}
	for i := range t.transforms {
		t.transforms[i] = NoTransform
	}
	return t
}

// Extract derives the rule table from every IS keyword on the board. Objects
// are visited in ascending handle order and, for each, the horizontal axis
// is tried before the vertical one. That order decides which of two
// conflicting transformations is kept.
func Extract(g *Grid) *RuleTable {
	t := newRuleTable(g.desc)

	for h, obj := range g.Objects() {
		if !obj.IsKeyword(KeywordIs) {
			continue
		}

		for _, ax := range axes {
			subjects := g.ScanPhrase(obj.Row, obj.Col, -ax.dRow, -ax.dCol, false).Items
			if subjects.Empty() {
				continue
			}

			pred := g.ScanPhrase(obj.Row, obj.Col, ax.dRow, ax.dCol, true)
			if pred.Empty() {
				continue
			}

			t.apply(subjects, pred)
			t.statements = append(t.statements, Statement{
				Anchor:    h,
				Row:       obj.Row,
				Col:       obj.Col,
				Axis:      ax.axis,
				Subjects:  subjects,
				Predicate: pred,
			})
			slog.Debug("rule derived",
				"row", obj.Row, "col", obj.Col, "axis", ax.axis,
				"subjects", subjects.Uint64(), "items", pred.Items.Uint64(), "attrs", pred.Attrs.Uint64())
		}
	}

	return t
}

// apply merges one statement. Attributes accumulate. A transformation is
// recorded when the subject has none yet, and a self-transformation
// (X IS X) always replaces whatever was recorded.
func (t *RuleTable) apply(subjects BitSet, pred Phrase) {
	n := t.desc.NumItemTypes()

	for s := range subjects.All() {
		t.attrs[s].Union(pred.Attrs)

		if s >= n {
			continue
		}
		for p := range pred.Items.All() {
			if p >= n {
				continue
			}
			if t.transforms[s] == NoTransform || p == s {
				t.transforms[s] = ItemType(p)
			}
		}
	}
}

// Descriptor returns the level metadata the table was derived for.
func (t *RuleTable) Descriptor() *Descriptor {
	return t.desc
}

// Attrs returns the attribute set of an item type or the TEXT pseudo type.
func (t *RuleTable) Attrs(it ItemType) BitSet {
	return t.attrs[it]
}

// HasAttr reports whether an item type carries an attribute.
func (t *RuleTable) HasAttr(it ItemType, a AttrKind) bool {
	return t.attrs[it].Has(int(a))
}

// Transform returns the transformation target of a real item type.
func (t *RuleTable) Transform(it ItemType) (ItemType, bool) {
	target := t.transforms[it]
	return target, target != NoTransform
}

// Statements returns the contributing statements in derivation order.
func (t *RuleTable) Statements() []Statement {
	return slices.Clone(t.statements)
}

// Empty reports whether no attribute or transformation was derived.
func (t *RuleTable) Empty() bool {
	for _, a := range t.attrs {
		if !a.Empty() {
			return false
		}
	}
	for _, x := range t.transforms {
		if x != NoTransform {
			return false
		}
	}
	return true
}

// Equal reports whether two tables grant the same attributes and
// transformations.
func (t *RuleTable) Equal(o *RuleTable) bool {
	return slices.Equal(t.attrs, o.attrs) && slices.Equal(t.transforms, o.transforms)
}
