// Command analyze derives and explains the rules of level files without a
// server. It prints the rule table of a level, redraws its board, explains
// which statements produced each rule, and summarizes a whole level
// directory.
//
//	analyze rules baba
//	analyze --levels-dir ./mylevels explain keke
//	analyze board path/to/level.txt
//	analyze summary
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/babarules/game/config"
	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/level"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	var levelsDir string

	return &cli.Command{
		Name:  "analyze",
		Usage: "inspect the rules formed by level files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "levels-dir",
				Value:       "levels",
				Usage:       "directory used to resolve bare level names",
				Destination: &levelsDir,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "rules",
				Usage:     "print the rule table of a level",
				ArgsUsage: "LEVEL",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the full snapshot as JSON"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lvl, err := levelArg(cmd, levelsDir)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return writeSnapshot(out, lvl)
					}
					return engine.WriteRules(out, lvl.State().Rules)
				},
			},
			{
				Name:      "board",
				Usage:     "redraw the board of a level",
				ArgsUsage: "LEVEL",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lvl, err := levelArg(cmd, levelsDir)
					if err != nil {
						return err
					}
					return engine.WriteBoard(out, lvl.State().Grid, engine.DefaultSymbols())
				},
			},
			{
				Name:      "explain",
				Usage:     "show the statements behind each rule",
				ArgsUsage: "LEVEL",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lvl, err := levelArg(cmd, levelsDir)
					if err != nil {
						return err
					}
					explain(out, lvl)
					return nil
				},
			},
			{
				Name:      "summary",
				Usage:     "summarize every level in a directory",
				ArgsUsage: "[DIR]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := levelsDir
					if cmd.Args().Len() > 0 {
						dir = cmd.Args().First()
					}
					return summarize(out, dir)
				},
			},
		},
	}
}

// levelArg parses the LEVEL argument of cmd
func levelArg(cmd *cli.Command, levelsDir string) (*level.Level, error) {
	if cmd.Args().Len() == 0 {
		return nil, fmt.Errorf("missing LEVEL argument")
	}
	return resolveLevel(cmd.Args().First(), levelsDir)
}

// resolveLevel reads a level given as a file path, or as a bare name looked
// up in levelsDir
func resolveLevel(arg, levelsDir string) (*level.Level, error) {
	path := arg
	if !strings.HasSuffix(arg, ".txt") && !strings.ContainsRune(arg, filepath.Separator) {
		path = filepath.Join(levelsDir, arg+".txt")
	}

	lvl, err := level.ParseFile(path, level.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lvl, nil
}

func writeSnapshot(out io.Writer, lvl *level.Level) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(lvl.State().Snapshot(lvl.Name))
}

func explain(out io.Writer, lvl *level.Level) {
	state := lvl.State()
	census := engine.TakeCensus(state)

	fmt.Fprintf(out, "=== %s (%dx%d) ===\n", lvl.Name, state.Desc.Rows, state.Desc.Cols)
	fmt.Fprintf(out, "Objects: %d items, %d item words, %d attributes, %d keywords\n",
		census.Items, census.Words, census.Attributes, census.Keywords)

	fmt.Fprintf(out, "\nStatements (%d):\n", census.Statements)
	for _, st := range state.Rules.Statements() {
		fmt.Fprintf(out, "  %s\n", state.Rules.Explain(st))
	}

	fmt.Fprintln(out, "\nRules:")
	lines := state.Rules.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, line := range lines {
		fmt.Fprintf(out, "  %s\n", line)
	}

	fmt.Fprintln(out, "\nPieces:")
	for t := 0; t < state.Desc.NumItemTypes(); t++ {
		it := engine.ItemType(t)
		fmt.Fprintf(out, "  %-8s %d", state.Desc.ItemName(it), engine.CountPieces(state, it))
		if target, ok := state.Rules.Transform(it); ok {
			fmt.Fprintf(out, " -> %s", state.Desc.ItemName(target))
		}
		fmt.Fprintln(out)
	}

	you := engine.SubjectsWith(state.Rules, engine.AttrYou)
	win := engine.SubjectsWith(state.Rules, engine.AttrWin)
	switch {
	case len(you) == 0:
		fmt.Fprintln(out, "\nWARNING: nothing IS YOU")
	case len(win) == 0:
		fmt.Fprintf(out, "\nYOU: %s, nothing IS WIN\n", strings.Join(you, ", "))
	default:
		fmt.Fprintf(out, "\nYOU: %s  WIN: %s\n", strings.Join(you, ", "), strings.Join(win, ", "))
	}
}

func summarize(out io.Writer, dir string) error {
	manager, err := config.NewManager(dir, level.DefaultLimits())
	if err != nil {
		return err
	}

	levels, err := manager.ListLevels()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-16s %7s %7s %5s  %s\n", "LEVEL", "SIZE", "OBJECTS", "RULES", "ITEMS")
	for _, info := range levels {
		fmt.Fprintf(out, "%-16s %7s %7d %5d  %s\n",
			info.LevelID, fmt.Sprintf("%dx%d", info.Rows, info.Cols),
			info.Objects, info.Rules, strings.Join(info.ItemTypes, ","))
	}
	fmt.Fprintf(out, "\n%d levels\n", len(levels))
	return nil
}
