// Package level reads and writes the text level format.
//
// A level starts with one header line per item type, a lowercase glyph,
// a space and the item name, ended by a blank line:
//
//	b baba
//	f flag
//
//	#####
//	#B=@#
//	#b f#
//	#####
//
// The board follows, framed by '#'. Lowercase letters are item pieces,
// uppercase letters their words, "@*.+!()[]^_><," the attributes YOU
// through WEAK and "=&~%" the keywords IS, AND, HAS and TEXT.
package level

import (
	"github.com/wricardo/babarules/game/engine"
)

// Level is a parsed level file.
type Level struct {
	Name    string
	Desc    *engine.Descriptor
	Objects []engine.Object
}

// State derives the rules of the level as loaded.
func (l *Level) State() *engine.State {
	return engine.NewState(l.Desc, l.Objects)
}

// Source renders the level back to text.
func (l *Level) Source() string {
	return Encode(l.Desc, l.Objects)
}

// Limits bound the boards Parse accepts. A zero field is unbounded.
type Limits struct {
	MaxRows    int
	MaxCols    int
	MaxObjects int
}

// DefaultLimits returns the limits of the classic level set.
func DefaultLimits() Limits {
	return Limits{
		MaxRows:    20,
		MaxCols:    35,
		MaxObjects: 700,
	}
}
