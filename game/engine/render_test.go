package engine

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRuleTable_LinesCanonicalOrder(t *testing.T) {
	table := extractBoard(t, threeOf,
		"B=+",
		"K=F",
		"F=*",
		"%=!",
		"B=@",
	)

	want := []string{
		"BABA IS YOU",
		"BABA IS PUSH",
		"FLAG IS WIN",
		"KEKE IS FLAG",
		"TEXT IS DEFEAT",
	}
	if diff := cmp.Diff(want, table.Lines()); diff != "" {
		t.Errorf("Rule lines mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := WriteRules(&buf, table); err != nil {
		t.Fatalf("WriteRules failed: %v", err)
	}
	wantText := "BABA IS YOU\nBABA IS PUSH\nFLAG IS WIN\nKEKE IS FLAG\nTEXT IS DEFEAT\n"
	if buf.String() != wantText {
		t.Errorf("Expected %q, got %q", wantText, buf.String())
	}
}

func TestGrid_BoardLines(t *testing.T) {
	desc, objects := buildBoard(t, babaFlag, "B=@ ", " f  ", "F&%,")
	grid := BuildGrid(desc, objects)

	want := []string{
		"######",
		"#B=@ #",
		"# f  #",
		"#F&%,#",
		"######",
	}
	if diff := cmp.Diff(want, grid.BoardLines(DefaultSymbols())); diff != "" {
		t.Errorf("Board mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := WriteBoard(&buf, grid, DefaultSymbols()); err != nil {
		t.Fatalf("WriteBoard failed: %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("\n")); got != len(want) {
		t.Errorf("Expected %d lines, got %d", len(want), got)
	}
}

func TestRuleTable_View(t *testing.T) {
	table := extractBoard(t, threeOf, "B=@&K", "%=.  ")

	want := RuleTableView{Subjects: []RuleView{
		{Subject: "BABA", Attributes: []string{"YOU"}, Becomes: "KEKE"},
		{Subject: "TEXT", Attributes: []string{"STOP"}},
	}}
	if diff := cmp.Diff(want, table.View()); diff != "" {
		t.Errorf("View mismatch (-want +got):\n%s", diff)
	}

	views := table.StatementViews()
	if len(views) != 2 {
		t.Fatalf("Expected 2 statements, got %d", len(views))
	}
	wantFirst := StatementView{
		Row:        0,
		Col:        1,
		Axis:       "horizontal",
		Subjects:   []string{"BABA"},
		Predicates: []string{"KEKE", "YOU"},
		Text:       "BABA IS KEKE AND YOU (horizontal at 0,1)",
	}
	if diff := cmp.Diff(wantFirst, views[0]); diff != "" {
		t.Errorf("Statement mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleTable_EmptyView(t *testing.T) {
	table := extractBoard(t, babaOnly, "B@")

	view := table.View()
	if view.Subjects == nil || len(view.Subjects) != 0 {
		t.Errorf("Expected an empty non-nil subject list, got %#v", view.Subjects)
	}
}
