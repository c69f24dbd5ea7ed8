package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wricardo/babarules/game/level"
)

const flagLevel = `b baba
f flag

#######
#B=@  #
#F=*  #
# b f #
#######
`

const rockLevel = `b baba
r rock

#######
#R=+  #
# r b #
#######
`

func writeLevelFile(t *testing.T, dir, name, source string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(source), 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeLevelFile(t, dir, "baba.txt", flagLevel)

		manager, err := NewManager(dir, level.DefaultLimits())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "baba" {
			t.Errorf("Expected default level 'baba', got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path", level.DefaultLimits()); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("first valid level becomes default", func(t *testing.T) {
		dir := t.TempDir()
		writeLevelFile(t, dir, "a_broken.txt", "not a level")
		writeLevelFile(t, dir, "rock.txt", rockLevel)

		manager, err := NewManager(dir, level.DefaultLimits())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "rock" {
			t.Errorf("Expected default level 'rock', got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("empty directory uses built-in level", func(t *testing.T) {
		manager, err := NewManager(t.TempDir(), level.DefaultLimits())
		if err != nil {
			t.Fatalf("NewManager should succeed without level files: %v", err)
		}
		def := manager.GetDefault()
		if def == nil {
			t.Fatal("Expected default level to be available")
		}
		if diff := cmp.Diff([]string{"BABA IS YOU"}, def.State().Rules.Lines()); diff != "" {
			t.Errorf("Built-in level rules mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestManager_LoadLevel(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "flag.txt", flagLevel)
	writeLevelFile(t, dir, "broken.txt", "b baba\n\n###\n#Q#\n###\n")

	manager, err := NewManager(dir, level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load by name", func(t *testing.T) {
		lvl, err := manager.LoadLevel("flag")
		if err != nil {
			t.Fatalf("Failed to load level: %v", err)
		}
		if lvl.Name != "flag" {
			t.Errorf("Expected name 'flag', got '%s'", lvl.Name)
		}
		want := []string{"BABA IS YOU", "FLAG IS WIN"}
		if diff := cmp.Diff(want, lvl.State().Rules.Lines()); diff != "" {
			t.Errorf("Rule lines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("load with extension", func(t *testing.T) {
		lvl, err := manager.LoadLevel("flag.txt")
		if err != nil {
			t.Fatalf("Failed to load level: %v", err)
		}
		if lvl.Name != "flag" {
			t.Errorf("Expected name 'flag', got '%s'", lvl.Name)
		}
	})

	t.Run("missing level", func(t *testing.T) {
		if _, err := manager.LoadLevel("nope"); !errors.Is(err, ErrLevelNotFound) {
			t.Errorf("Expected ErrLevelNotFound, got %v", err)
		}
	})

	t.Run("path outside the directory", func(t *testing.T) {
		if _, err := manager.LoadLevel("../flag"); !errors.Is(err, ErrLevelNotFound) {
			t.Errorf("Expected ErrLevelNotFound, got %v", err)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := manager.LoadLevel("broken")
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
		if !errors.Is(err, level.ErrUnknownGlyph) {
			t.Errorf("Expected the parse error to be kept, got %v", err)
		}
	})
}

func TestManager_ListLevels(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "flag.txt", flagLevel)
	writeLevelFile(t, dir, "rock.txt", rockLevel)
	writeLevelFile(t, dir, "broken.txt", "garbage")
	writeLevelFile(t, dir, "notes.md", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	manager, err := NewManager(dir, level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	levels, err := manager.ListLevels()
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("Expected 2 valid levels, got %d", len(levels))
	}

	flag := levels[0]
	if flag.LevelID != "flag" || flag.Filename != "flag.txt" {
		t.Errorf("Unexpected level info: %+v", flag)
	}
	if flag.Rows != 3 || flag.Cols != 5 {
		t.Errorf("Expected 3x5 board, got %dx%d", flag.Rows, flag.Cols)
	}
	if flag.Rules != 2 {
		t.Errorf("Expected 2 rules, got %d", flag.Rules)
	}
	if diff := cmp.Diff([]string{"BABA", "FLAG"}, flag.ItemTypes); diff != "" {
		t.Errorf("Item types mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "baba.txt", flagLevel)
	writeLevelFile(t, dir, "rock.txt", rockLevel)

	manager, err := NewManager(dir, level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("rock"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Name != "rock" {
		t.Errorf("Expected default 'rock', got '%s'", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestManager_SaveLevel(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir, level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid level is written", func(t *testing.T) {
		lvl, err := manager.SaveLevel("rock", rockLevel)
		if err != nil {
			t.Fatalf("Failed to save level: %v", err)
		}
		if lvl.Name != "rock" {
			t.Errorf("Expected name 'rock', got '%s'", lvl.Name)
		}
		data, err := os.ReadFile(filepath.Join(dir, "rock.txt"))
		if err != nil {
			t.Fatalf("Expected level file: %v", err)
		}
		if string(data) != rockLevel {
			t.Errorf("Saved file differs from source:\n%s", data)
		}
	})

	t.Run("invalid level is rejected", func(t *testing.T) {
		_, err := manager.SaveLevel("bad", "b baba\n\n#####\n#B=@\n#####\n")
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir, "bad.txt")); !os.IsNotExist(statErr) {
			t.Error("Invalid level should not be written")
		}
	})

	t.Run("bad name is rejected", func(t *testing.T) {
		if _, err := manager.SaveLevel("../escape", rockLevel); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
	})
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "flag.txt", flagLevel)

	manager, err := NewManager(dir, level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	first, err := manager.LoadLevel("flag")
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}

	// Cached copy survives a change on disk until the cache is refreshed.
	writeLevelFile(t, dir, "flag.txt", rockLevel)
	second, _ := manager.LoadLevel("flag")
	if first != second {
		t.Error("Expected cached level to be returned")
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}
	third, err := manager.LoadLevel("flag")
	if err != nil {
		t.Fatalf("Failed to reload level: %v", err)
	}
	if diff := cmp.Diff([]string{"ROCK IS PUSH"}, third.State().Rules.Lines()); diff != "" {
		t.Errorf("Reloaded rules mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "flag.txt", flagLevel)
	writeLevelFile(t, dir, "rock.txt", rockLevel)

	manager, err := NewManager(dir, level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "flag"
			if i%2 == 0 {
				name = "rock"
			}
			if _, err := manager.LoadLevel(name); err != nil {
				t.Errorf("Failed to load level %s: %v", name, err)
			}
			if _, err := manager.ListLevels(); err != nil {
				t.Errorf("Failed to list levels: %v", err)
			}
			_ = manager.GetDefault()
		}(i)
	}
	wg.Wait()
}

func TestManager_BundledLevels(t *testing.T) {
	manager, err := NewManager("../../levels", level.DefaultLimits())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.GetDefault().Name != "baba" {
		t.Errorf("Expected bundled default 'baba', got '%s'", manager.GetDefault().Name)
	}
	want := []string{"BABA IS YOU", "FLAG IS WIN", "WALL IS STOP", "ROCK IS PUSH"}
	if diff := cmp.Diff(want, manager.GetDefault().State().Rules.Lines()); diff != "" {
		t.Errorf("Bundled default rules mismatch (-want +got):\n%s", diff)
	}

	levels, err := manager.ListLevels()
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if len(levels) < 3 {
		t.Errorf("Expected at least 3 bundled levels, got %d", len(levels))
	}
}
