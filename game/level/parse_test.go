package level

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/babarules/game/engine"
)

const babaLevel = `b baba
f flag
w wall

#########
#B=@   w#
#  b   w#
#F=*  f #
#W=.   w#
#########
`

func TestParse_Level(t *testing.T) {
	lvl, err := ParseString(babaLevel, DefaultLimits())
	require.NoError(t, err)

	desc := lvl.Desc
	assert.Equal(t, 4, desc.Rows)
	assert.Equal(t, 7, desc.Cols)
	assert.Equal(t, 28, desc.Size)
	assert.Equal(t, 14, desc.MaxObjects)
	require.Len(t, lvl.Objects, 14)
	assert.Equal(t, []engine.ItemInfo{
		{Name: "BABA", Glyph: 'b'},
		{Name: "FLAG", Glyph: 'f'},
		{Name: "WALL", Glyph: 'w'},
	}, desc.Items)

	// Objects are stored row-major.
	assert.Equal(t, engine.Object{Variant: engine.ItemWord{Type: 0}, Row: 0, Col: 0}, lvl.Objects[0])
	assert.Equal(t, engine.Object{Variant: engine.Keyword{Kind: engine.KeywordIs}, Row: 0, Col: 1}, lvl.Objects[1])
	assert.Equal(t, engine.Object{Variant: engine.Attribute{Kind: engine.AttrYou}, Row: 0, Col: 2}, lvl.Objects[2])
	assert.Equal(t, engine.Object{Variant: engine.Item{Type: 2}, Row: 0, Col: 6}, lvl.Objects[3])
	for i := 1; i < len(lvl.Objects); i++ {
		prev, cur := lvl.Objects[i-1], lvl.Objects[i]
		assert.True(t, prev.Row < cur.Row || (prev.Row == cur.Row && prev.Col < cur.Col), "object %d out of order", i)
	}

	assert.Equal(t, []string{
		"BABA IS YOU",
		"FLAG IS WIN",
		"WALL IS STOP",
	}, lvl.State().Rules.Lines())
}

func TestParse_SingleRuleBoards(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"attribute", "b baba\n\n#####\n#B=@#\n#####\n", []string{"BABA IS YOU"}},
		{"transformation", "b baba\nf flag\n\n#####\n#B=F#\n#####\n", []string{"BABA IS FLAG"}},
		{"self transformation", "b baba\n\n#####\n#B=B#\n#####\n", []string{"BABA IS BABA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := ParseString(tt.src, DefaultLimits())
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl.State().Rules.Lines())
		})
	}
}

func TestParse_Tolerance(t *testing.T) {
	t.Run("CRLF line endings", func(t *testing.T) {
		lvl, err := ParseString(strings.ReplaceAll(babaLevel, "\n", "\r\n"), DefaultLimits())
		require.NoError(t, err)
		assert.Equal(t, 7, lvl.Desc.Cols)
	})

	t.Run("trailing blank lines", func(t *testing.T) {
		_, err := ParseString(babaLevel+"\n  \n", DefaultLimits())
		require.NoError(t, err)
	})

	t.Run("no item types", func(t *testing.T) {
		lvl, err := ParseString("\n###\n#=#\n###\n", DefaultLimits())
		require.NoError(t, err)
		assert.Zero(t, lvl.Desc.NumItemTypes())
		assert.True(t, lvl.State().Rules.Empty())
	})

	t.Run("mixed case names are upper-cased", func(t *testing.T) {
		lvl, err := ParseString("k Keke\n\n###\n#K#\n###\n", DefaultLimits())
		require.NoError(t, err)
		assert.Equal(t, "KEKE", lvl.Desc.Items[0].Name)
	})

	t.Run("zero limits are unbounded", func(t *testing.T) {
		wide := "\n" + strings.Repeat("#", 52) + "\n#" + strings.Repeat("@", 50) + "#\n" + strings.Repeat("#", 52) + "\n"
		_, err := ParseString(wide, Limits{})
		require.NoError(t, err)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		limits Limits
		want   error
		line   int
	}{
		{"empty input", "", DefaultLimits(), ErrTruncatedInput, 1},
		{"header without blank line", "b baba\n", DefaultLimits(), ErrTruncatedInput, 2},
		{"uppercase header glyph", "B baba\n\n###\n#B#\n###\n", DefaultLimits(), ErrMalformedHeader, 1},
		{"missing space", "bbaba\n\n###\n#B#\n###\n", DefaultLimits(), ErrMalformedHeader, 1},
		{"missing name", "b \n\n###\n#B#\n###\n", DefaultLimits(), ErrMalformedHeader, 1},
		{"digit in name", "b baba2\n\n###\n#B#\n###\n", DefaultLimits(), ErrMalformedHeader, 1},
		{"long name", "b " + strings.Repeat("x", 31) + "\n\n###\n#B#\n###\n", DefaultLimits(), ErrMalformedHeader, 1},
		{"duplicate glyph", "b baba\nb box\n\n###\n#B#\n###\n", DefaultLimits(), ErrMalformedHeader, 2},
		{"board missing", "b baba\n\n", DefaultLimits(), ErrTruncatedInput, 3},
		{"top border broken", "b baba\n\n#.#\n#B#\n###\n", DefaultLimits(), ErrMalformedBoard, 3},
		{"board too narrow", "b baba\n\n##\n##\n", DefaultLimits(), ErrMalformedBoard, 3},
		{"ragged row", "b baba\n\n####\n#B#\n####\n", DefaultLimits(), ErrMalformedBoard, 4},
		{"left border missing", "b baba\n\n####\n B=#\n####\n", DefaultLimits(), ErrMalformedBoard, 4},
		{"right border missing", "b baba\n\n####\n#B= \n####\n", DefaultLimits(), ErrMalformedBoard, 4},
		{"bottom border missing", "b baba\n\n###\n#B#\n", DefaultLimits(), ErrTruncatedInput, 5},
		{"no rows", "b baba\n\n###\n###\n", DefaultLimits(), ErrMalformedBoard, 4},
		{"content after board", "b baba\n\n###\n#B#\n###\nextra\n", DefaultLimits(), ErrMalformedBoard, 6},
		{"undeclared word", "b baba\n\n#####\n#B=K#\n#####\n", DefaultLimits(), ErrUnknownGlyph, 4},
		{"undeclared piece", "b baba\n\n#####\n#k  #\n#####\n", DefaultLimits(), ErrUnknownGlyph, 4},
		{"unknown symbol", "b baba\n\n#####\n#B=?#\n#####\n", DefaultLimits(), ErrUnknownGlyph, 4},
		{"too wide", "\n######\n#@@@@#\n######\n", Limits{MaxCols: 3}, ErrBoardTooWide, 2},
		{"too tall", "\n###\n#@#\n#@#\n#@#\n###\n", Limits{MaxRows: 2}, ErrBoardTooLarge, 5},
		{"too many objects", "\n#####\n#@ @#\n#@@@#\n#####\n", Limits{MaxObjects: 3}, ErrTooManyObjects, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := ParseString(tt.src, tt.limits)
			require.Error(t, err)
			assert.Nil(t, lvl)
			assert.ErrorIs(t, err, tt.want)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParse_TooManyItemTypes(t *testing.T) {
	var b strings.Builder
	for c := 'a'; c <= 'z'; c++ {
		b.WriteString(string(c) + " item\n")
	}
	b.WriteString("z again\n\n###\n# #\n###\n")

	_, err := ParseString(b.String(), DefaultLimits())
	assert.ErrorIs(t, err, ErrTooManyItemTypes)

	var full strings.Builder
	for c := 'a'; c <= 'z'; c++ {
		full.WriteString(string(c) + " item\n")
	}
	full.WriteString("\n###\n# #\n###\n")
	lvl, err := ParseString(full.String(), DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, engine.MaxItemTypes, lvl.Desc.NumItemTypes())
}

func TestParseError_Message(t *testing.T) {
	_, err := ParseString("b baba\n\n#####\n#B=?#\n#####\n", DefaultLimits())
	require.Error(t, err)
	assert.Equal(t, `line 4, column 4: unknown glyph: '?'`, err.Error())
}

func TestParse_UnknownGlyphPosition(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column int
		want   string
	}{
		{"undeclared word", "#B=K#", 4, `line 4, column 4: unknown glyph: 'K'`},
		{"undeclared piece", "#k  #", 2, `line 4, column 2: unknown glyph: 'k'`},
		{"unknown symbol", "#B=?#", 4, `line 4, column 4: unknown glyph: '?'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("b baba\n\n#####\n"+tt.row+"\n#####\n", DefaultLimits())
			require.ErrorIs(t, err, ErrUnknownGlyph)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, 4, perr.Line)
			assert.Equal(t, tt.column, perr.Column)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "first-steps.txt")
	require.NoError(t, os.WriteFile(path, []byte(babaLevel), 0644))

	lvl, err := ParseFile(path, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "first-steps", lvl.Name)

	_, err = ParseFile(filepath.Join(dir, "missing.txt"), DefaultLimits())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("b baba\n"), 0644))
	_, err = ParseFile(bad, DefaultLimits())
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.Contains(t, err.Error(), "bad.txt")
}
