package level

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/babarules/game/engine"
)

const maxLineBytes = 64 * 1024

// lineReader yields lines with their 1-based numbers.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (lr *lineReader) next() (string, bool) {
	if !lr.sc.Scan() {
		return "", false
	}
	lr.line++
	return strings.TrimSuffix(lr.sc.Text(), "\r"), true
}

// Parse reads a level. It stops at the first error and returns no partial
// level.
func Parse(r io.Reader, limits Limits) (*Level, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	lr := &lineReader{sc: sc}

	items, err := parseHeader(lr)
	if err == nil {
		var lvl *Level
		lvl, err = parseBoard(lr, items, limits)
		if err == nil {
			return lvl, nil
		}
	}

	if scanErr := sc.Err(); scanErr != nil {
		return nil, fmt.Errorf("reading level: %w", scanErr)
	}
	return nil, err
}

// ParseString reads a level held in memory.
func ParseString(src string, limits Limits) (*Level, error) {
	return Parse(strings.NewReader(src), limits)
}

// ParseFile reads a level file. The level is named after the file without
// its extension.
func ParseFile(path string, limits Limits) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lvl, err := Parse(f, limits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lvl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return lvl, nil
}

func parseHeader(lr *lineReader) ([]engine.ItemInfo, error) {
	var items []engine.ItemInfo
	seen := mapset.New[rune]()

	for {
		text, ok := lr.next()
		if !ok {
			return nil, parseErr(lr.line+1, 0, ErrTruncatedInput, "header must end with a blank line")
		}
		if text == "" {
			return items, nil
		}

		line := []rune(text)
		if len(line) < 3 || line[0] < 'a' || line[0] > 'z' || line[1] != ' ' {
			return nil, parseErr(lr.line, 0, ErrMalformedHeader, "want <lowercase letter> <name>, got %q", text)
		}
		glyph, name := line[0], line[2:]

		for i, c := range name {
			if !isASCIILetter(c) {
				return nil, parseErr(lr.line, i+3, ErrMalformedHeader, "item name may only contain letters, got %q", c)
			}
		}
		if len(name) > engine.MaxItemName {
			return nil, parseErr(lr.line, 0, ErrMalformedHeader, "item name longer than %d letters", engine.MaxItemName)
		}
		if len(items) == engine.MaxItemTypes {
			return nil, parseErr(lr.line, 0, ErrTooManyItemTypes, "at most %d item types", engine.MaxItemTypes)
		}
		if seen.Has(glyph) {
			return nil, parseErr(lr.line, 1, ErrMalformedHeader, "glyph %q declared twice", glyph)
		}

		seen.Put(glyph)
		items = append(items, engine.ItemInfo{
			Name:  strings.ToUpper(string(name)),
			Glyph: glyph,
		})
	}
}

func parseBoard(lr *lineReader, items []engine.ItemInfo, limits Limits) (*Level, error) {
	top, ok := lr.next()
	if !ok {
		return nil, parseErr(lr.line+1, 0, ErrTruncatedInput, "missing board")
	}
	border := []rune(top)
	if !isBorder(border) {
		return nil, parseErr(lr.line, 0, ErrMalformedBoard, "top border must contain only '#', got %q", top)
	}
	width := len(border)
	if width < 3 {
		return nil, parseErr(lr.line, 0, ErrMalformedBoard, "board must be at least one column wide")
	}
	cols := width - 2
	if limits.MaxCols > 0 && cols > limits.MaxCols {
		return nil, parseErr(lr.line, 0, ErrBoardTooWide, "%d columns, limit %d", cols, limits.MaxCols)
	}

	maxObjects := engine.MaxHandles
	if limits.MaxObjects > 0 && limits.MaxObjects < maxObjects {
		maxObjects = limits.MaxObjects
	}

	firstRow := lr.line + 1
	var cells [][]rune
	count := 0

	for {
		text, ok := lr.next()
		if !ok {
			return nil, parseErr(lr.line+1, 0, ErrTruncatedInput, "missing bottom border")
		}
		row := []rune(text)
		if len(row) != width {
			return nil, parseErr(lr.line, 0, ErrMalformedBoard, "row is %d characters wide, want %d", len(row), width)
		}
		if isBorder(row) {
			break
		}
		if row[0] != '#' {
			return nil, parseErr(lr.line, 1, ErrMalformedBoard, "row must start with '#'")
		}
		if row[width-1] != '#' {
			return nil, parseErr(lr.line, width, ErrMalformedBoard, "row must end with '#'")
		}
		if limits.MaxRows > 0 && len(cells) == limits.MaxRows {
			return nil, parseErr(lr.line, 0, ErrBoardTooLarge, "more than %d rows", limits.MaxRows)
		}

		interior := row[1 : width-1]
		for c, g := range interior {
			if g == ' ' {
				continue
			}
			count++
			if count > maxObjects {
				return nil, parseErr(lr.line, c+2, ErrTooManyObjects, "more than %d objects", maxObjects)
			}
		}
		cells = append(cells, interior)
	}

	if len(cells) == 0 {
		return nil, parseErr(lr.line, 0, ErrMalformedBoard, "board has no rows")
	}

	for {
		text, ok := lr.next()
		if !ok {
			break
		}
		if strings.TrimSpace(text) != "" {
			return nil, parseErr(lr.line, 0, ErrMalformedBoard, "unexpected content after the board")
		}
	}

	desc, err := engine.NewDescriptor(len(cells), cols, count, items)
	if err != nil {
		return nil, parseErr(1, 0, ErrMalformedHeader, "%v", err)
	}

	sym := engine.DefaultSymbols()
	objects := make([]engine.Object, 0, count)
	for r, row := range cells {
		for c, g := range row {
			v, ok := desc.Decode(sym, g)
			if !ok {
				return nil, parseErr(firstRow+r, c+2, ErrUnknownGlyph, "%q", g)
			}
			if v == nil {
				continue
			}
			objects = append(objects, engine.Object{Variant: v, Row: r, Col: c})
		}
	}

	return &Level{Desc: desc, Objects: objects}, nil
}

func isBorder(row []rune) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if c != '#' {
			return false
		}
	}
	return true
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
