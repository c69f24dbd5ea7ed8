// Command validate checks every *.txt level in a directory. It reports:
//   - parse failures with their line and column
//   - boards that form no rules, or where nothing IS YOU or nothing IS WIN
//   - declared item types that never appear on the board
//
// Parse failures make a level invalid. The other findings are warnings,
// promoted to errors with --strict. The command exits non-zero when any
// level is invalid.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/level"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateLevel parses and lints a single level file
func validateLevel(filePath string, limits level.Limits, strict bool) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	lvl, err := level.ParseFile(filePath, limits)
	if err != nil {
		result.Valid = false
		var perr *level.ParseError
		if errors.As(err, &perr) {
			result.Errors = append(result.Errors, perr.Error())
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		}
		return result
	}

	state := lvl.State()
	result.Warnings = append(result.Warnings, lintRules(state)...)
	result.Warnings = append(result.Warnings, lintUnusedItems(state)...)

	if strict && len(result.Warnings) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
	}

	census := engine.TakeCensus(state)
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Board: %dx%d", state.Desc.Rows, state.Desc.Cols),
		fmt.Sprintf("✓ Item types: %d", state.Desc.NumItemTypes()),
		fmt.Sprintf("✓ Objects: %d pieces, %d words", census.Items, census.Words+census.Attributes+census.Keywords),
	)
	for _, line := range state.Rules.Lines() {
		result.Info = append(result.Info, "✓ "+line)
	}

	return result
}

// lintRules reports boards that cannot be played as written
func lintRules(state *engine.State) []string {
	var warnings []string

	if state.Rules.Empty() {
		return append(warnings, "No rules are formed")
	}
	if len(engine.SubjectsWith(state.Rules, engine.AttrYou)) == 0 {
		warnings = append(warnings, "Nothing IS YOU")
	}
	if len(engine.SubjectsWith(state.Rules, engine.AttrWin)) == 0 {
		warnings = append(warnings, "Nothing IS WIN")
	}
	return warnings
}

// lintUnusedItems reports declared item types with neither pieces nor words
// on the board
func lintUnusedItems(state *engine.State) []string {
	used := make([]bool, state.Desc.NumItemTypes())
	for _, obj := range state.Grid.Objects() {
		switch v := obj.Variant.(type) {
		case engine.Item:
			used[v.Type] = true
		case engine.ItemWord:
			if int(v.Type) < len(used) {
				used[v.Type] = true
			}
		}
	}

	var warnings []string
	for t, ok := range used {
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Item type %s is declared but never used", state.Desc.ItemName(engine.ItemType(t))))
		}
	}
	return warnings
}

// validateDir validates every level in dir and writes a report to out. It
// returns the number of invalid levels.
func validateDir(out io.Writer, dir string, strict bool) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return 0, fmt.Errorf("error finding level files: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no *.txt levels in %s", dir)
	}

	invalid := 0
	for _, file := range files {
		result := validateLevel(file, level.DefaultLimits(), strict)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(out, "  "+info)
			}
			for _, warning := range result.Warnings {
				fmt.Fprintln(out, "  ⚠️  "+warning)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			invalid++
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if invalid == 0 {
		fmt.Fprintln(out, "✅ All levels are valid!")
	} else {
		fmt.Fprintf(out, "❌ %d of %d levels have errors\n", invalid, len(files))
	}
	return invalid, nil
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check the level files in a directory",
		ArgsUsage: "[DIR]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat warnings as errors",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "levels"
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().First()
			}

			invalid, err := validateDir(out, dir, cmd.Bool("strict"))
			if err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid levels", invalid)
			}
			return nil
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
