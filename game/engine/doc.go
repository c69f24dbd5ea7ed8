// Package engine derives the active rules of a Baba Is You board.
//
// A board is a list of objects: physical item pieces, item words, attribute
// words and keywords. Words arranged on the board as
//
//	<NOUN> [AND <NOUN>]... IS <NOUN-or-ATTRIBUTE> [AND ...]...
//
// either left to right or top to bottom form rule statements. Extract reads
// every statement in one pass over a Grid and produces a RuleTable saying,
// per item type, which attributes it carries and what it transforms into.
//
// Core Types:
//
// Descriptor holds the level metadata (board size, item types). Grid indexes
// the objects by cell. RuleTable is the derived rule set and State bundles a
// board with its grid and rules. GameEngine wraps a State as an editable
// workbench: each edit rebuilds the State from scratch.
//
// Usage:
//
//	lvl, err := level.ParseFile("levels/baba.txt", level.DefaultLimits())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state := engine.NewState(lvl.Desc, lvl.Objects)
//	for _, line := range state.Rules.Lines() {
//		fmt.Println(line)
//	}
//
// Conflicts:
//
// Attributes accumulate across statements. For transformations the first
// statement to name a target wins, except that X IS X always takes over and
// freezes the item. Statements are visited in object order, horizontal
// before vertical at each IS.
package engine
