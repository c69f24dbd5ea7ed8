package engine

// RuleView is the rule set of one subject in display form.
type RuleView struct {
	Subject    string   `json:"subject"`
	Attributes []string `json:"attributes,omitempty"`
	Becomes    string   `json:"becomes,omitempty"`
}

// RuleTableView lists the subjects that carry at least one rule.
type RuleTableView struct {
	Subjects []RuleView `json:"subjects"`
}

// StatementView is a contributing IS statement in display form.
type StatementView struct {
	Row        int      `json:"row"`
	Col        int      `json:"col"`
	Axis       string   `json:"axis"`
	Subjects   []string `json:"subjects"`
	Predicates []string `json:"predicates"`
	Text       string   `json:"text"`
}

// CellView describes one occupied cell.
type CellView struct {
	Row     int      `json:"row"`
	Col     int      `json:"col"`
	Glyph   string   `json:"glyph"`
	Objects []string `json:"objects"`
}

// Snapshot is the serialisable view of a State sent to API clients.
type Snapshot struct {
	Level       string          `json:"level"`
	Rows        int             `json:"rows"`
	Cols        int             `json:"cols"`
	ObjectCount int             `json:"object_count"`
	Rules       []string        `json:"rules"`
	Board       []string        `json:"board"`
	Table       RuleTableView   `json:"table"`
	Statements  []StatementView `json:"statements"`
}

// View converts the table for display.
func (t *RuleTable) View() RuleTableView {
	view := RuleTableView{Subjects: []RuleView{}}
	n := t.desc.NumItemTypes()

	for s := 0; s <= n; s++ {
		rv := RuleView{Subject: t.desc.ItemName(ItemType(s))}
		for a := range t.attrs[s].All() {
			rv.Attributes = append(rv.Attributes, AttrKind(a).String())
		}
		if s < n {
			if target, ok := t.Transform(ItemType(s)); ok {
				rv.Becomes = t.desc.ItemName(target)
			}
		}
		if len(rv.Attributes) > 0 || rv.Becomes != "" {
			view.Subjects = append(view.Subjects, rv)
		}
	}

	return view
}

// StatementViews converts the contributing statements for display.
func (t *RuleTable) StatementViews() []StatementView {
	views := make([]StatementView, 0, len(t.statements))
	for _, st := range t.statements {
		preds := t.desc.names(st.Predicate.Items)
		for a := range st.Predicate.Attrs.All() {
			preds = append(preds, AttrKind(a).String())
		}
		views = append(views, StatementView{
			Row:        st.Row,
			Col:        st.Col,
			Axis:       st.Axis.String(),
			Subjects:   t.desc.names(st.Subjects),
			Predicates: preds,
			Text:       t.Explain(st),
		})
	}
	return views
}

// Snapshot builds the display view of the state.
func (s *State) Snapshot(levelName string) Snapshot {
	return Snapshot{
		Level:       levelName,
		Rows:        s.Desc.Rows,
		Cols:        s.Desc.Cols,
		ObjectCount: len(s.Objects),
		Rules:       nonNil(s.Rules.Lines()),
		Board:       s.Grid.BoardLines(DefaultSymbols()),
		Table:       s.Rules.View(),
		Statements:  s.Rules.StatementViews(),
	}
}

// Cell describes the objects in one cell, most recently placed first.
func (s *State) Cell(row, col int) CellView {
	cv := CellView{Row: row, Col: col, Glyph: " ", Objects: []string{}}
	for _, obj := range s.Grid.At(row, col) {
		if len(cv.Objects) == 0 {
			cv.Glyph = string(s.Desc.Glyph(DefaultSymbols(), obj.Variant))
		}
		cv.Objects = append(cv.Objects, s.Desc.Describe(obj))
	}
	return cv
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
