package engine

import (
	"fmt"
	"io"
	"strings"
)

// Lines renders the table as "<SUBJECT> IS <PREDICATE>" lines: item types
// in declaration order and then TEXT, each with its attributes in canonical
// order followed by its transformation target.
func (t *RuleTable) Lines() []string {
	var lines []string
	n := t.desc.NumItemTypes()

	for s := 0; s <= n; s++ {
		subject := t.desc.ItemName(ItemType(s))

		for a := range t.attrs[s].All() {
			lines = append(lines, fmt.Sprintf("%s IS %s", subject, AttrKind(a)))
		}

		if s < n {
			if target, ok := t.Transform(ItemType(s)); ok {
				lines = append(lines, fmt.Sprintf("%s IS %s", subject, t.desc.ItemName(target)))
			}
		}
	}

	return lines
}

// WriteRules writes one rule per line.
func WriteRules(w io.Writer, t *RuleTable) error {
	for _, line := range t.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// BoardLines redraws the board from the grid index, framed in '#'. A cell
// holding several objects shows the first one listed.
func (g *Grid) BoardLines(sym *Symbols) []string {
	d := g.desc
	border := strings.Repeat("#", d.Cols+2)

	lines := make([]string, 0, d.Rows+2)
	lines = append(lines, border)

	var row strings.Builder
	for r := 0; r < d.Rows; r++ {
		row.Reset()
		row.WriteByte('#')
		for c := 0; c < d.Cols; c++ {
			obj, ok := g.Top(r, c)
			if !ok {
				row.WriteByte(' ')
				continue
			}
			row.WriteRune(d.Glyph(sym, obj.Variant))
		}
		row.WriteByte('#')
		lines = append(lines, row.String())
	}

	return append(lines, border)
}

// WriteBoard writes the redrawn board.
func WriteBoard(w io.Writer, g *Grid, sym *Symbols) error {
	for _, line := range g.BoardLines(sym) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// names converts item-type bits to display names.
func (d *Descriptor) names(items BitSet) []string {
	out := make([]string, 0, items.Len())
	for it := range items.All() {
		out = append(out, d.ItemName(ItemType(it)))
	}
	return out
}

// Explain renders a contributing statement, e.g. "BABA AND KEKE IS YOU
// (horizontal at 2,3)".
func (t *RuleTable) Explain(st Statement) string {
	preds := t.desc.names(st.Predicate.Items)
	for a := range st.Predicate.Attrs.All() {
		preds = append(preds, AttrKind(a).String())
	}
	return fmt.Sprintf("%s IS %s (%s at %d,%d)",
		strings.Join(t.desc.names(st.Subjects), " AND "),
		strings.Join(preds, " AND "),
		st.Axis, st.Row, st.Col)
}
