package engine

import (
	"fmt"
	"sync"
)

// AttrKind is one of the gameplay properties a rule can grant to an item type.
type AttrKind uint8

const (
	AttrYou AttrKind = iota
	AttrWin
	AttrStop
	AttrPush
	AttrDefeat
	AttrHot
	AttrMelt
	AttrOpen
	AttrShut
	AttrFloat
	AttrSink
	AttrMove
	AttrTele
	AttrWeak
)

// NumAttrKinds is the width of every attribute set.
const NumAttrKinds = int(AttrWeak) + 1

// KeywordKind is one of the grammar markers used to form rule statements.
type KeywordKind uint8

const (
	KeywordIs KeywordKind = iota
	KeywordAnd
	KeywordHas
	KeywordText
)

// NumKeywordKinds is the number of keyword kinds.
const NumKeywordKinds = int(KeywordText) + 1

var attrNames = [NumAttrKinds]string{
	"YOU", "WIN", "STOP", "PUSH", "DEFEAT", "HOT", "MELT",
	"OPEN", "SHUT", "FLOAT", "SINK", "MOVE", "TELE", "WEAK",
}

var keywordNames = [NumKeywordKinds]string{"IS", "AND", "HAS", "TEXT"}

// String returns the rule-text name of the attribute, e.g. "YOU".
func (a AttrKind) String() string {
	if int(a) < NumAttrKinds {
		return attrNames[a]
	}
	return fmt.Sprintf("ATTR(%d)", a)
}

// String returns the rule-text name of the keyword, e.g. "IS".
func (k KeywordKind) String() string {
	if int(k) < NumKeywordKinds {
		return keywordNames[k]
	}
	return fmt.Sprintf("KEYWORD(%d)", k)
}

// TextLabel names the reserved pseudo item type matched by the TEXT keyword.
const TextLabel = "TEXT"

// Symbols is the bidirectional glyph table for attribute and keyword objects.
// A Symbols value is never modified after NewSymbols returns it.
type Symbols struct {
	attrGlyphs     [NumAttrKinds]rune
	keywordGlyphs  [NumKeywordKinds]rune
	attrByGlyph    map[rune]AttrKind
	keywordByGlyph map[rune]KeywordKind
}

// NewSymbols builds the standard level glyph table.
func NewSymbols() *Symbols {
	s := &Symbols{
		attrByGlyph:    make(map[rune]AttrKind, NumAttrKinds),
		keywordByGlyph: make(map[rune]KeywordKind, NumKeywordKinds),
	}

	for i, g := range "@*.+!()[]^_><," {
		s.attrGlyphs[i] = g
		s.attrByGlyph[g] = AttrKind(i)
	}
	for i, g := range "=&~%" {
		s.keywordGlyphs[i] = g
		s.keywordByGlyph[g] = KeywordKind(i)
	}

	return s
}

// DefaultSymbols returns the process-wide standard glyph table.
var DefaultSymbols = sync.OnceValue(NewSymbols)

// AttrGlyph returns the board glyph for an attribute.
func (s *Symbols) AttrGlyph(a AttrKind) rune {
	return s.attrGlyphs[a]
}

// KeywordGlyph returns the board glyph for a keyword.
func (s *Symbols) KeywordGlyph(k KeywordKind) rune {
	return s.keywordGlyphs[k]
}

// LookupAttr maps a board glyph to an attribute.
func (s *Symbols) LookupAttr(glyph rune) (AttrKind, bool) {
	a, ok := s.attrByGlyph[glyph]
	return a, ok
}

// LookupKeyword maps a board glyph to a keyword.
func (s *Symbols) LookupKeyword(glyph rune) (KeywordKind, bool) {
	k, ok := s.keywordByGlyph[glyph]
	return k, ok
}
