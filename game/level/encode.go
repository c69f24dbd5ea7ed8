package level

import (
	"strings"

	"github.com/wricardo/babarules/game/engine"
)

// Encode writes a board back in the level format. Where several objects
// share a cell only the first one listed by the grid index is kept.
// Objects past engine.MaxHandles are dropped.
func Encode(desc *engine.Descriptor, objects []engine.Object) string {
	var b strings.Builder

	for _, info := range desc.Items {
		b.WriteRune(info.Glyph)
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(info.Name))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if len(objects) > desc.MaxObjects {
		objects = objects[:min(len(objects), engine.MaxHandles)]
		wider, err := desc.WithCapacity(len(objects))
		if err != nil {
			return b.String()
		}
		desc = wider
	}
	for _, line := range engine.BuildGrid(desc, objects).BoardLines(engine.DefaultSymbols()) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}
