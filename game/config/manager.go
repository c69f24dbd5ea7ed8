package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/babarules/game/level"
	"github.com/wricardo/babarules/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

const (
	levelExt     = ".txt"
	defaultLevel = "baba"
)

// builtinLevel is served when the level directory has no usable level.
const builtinLevel = `b baba

#####
#B=@#
#b  #
#####
`

// Manager loads and caches the text levels of a directory
type Manager struct {
	levelDir     string
	limits       level.Limits
	defaultLevel *level.Level
	levels       map[string]*level.Level
	mu           sync.RWMutex
}

// NewManager creates a level manager over a directory of *.txt levels
func NewManager(levelDir string, limits level.Limits) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		limits:   limits,
		levels:   make(map[string]*level.Level),
	}

	def, err := m.loadDefaultLevel()
	if err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}
	m.defaultLevel = def

	return m, nil
}

// LoadLevel loads a level by name, with or without the .txt extension
func (m *Manager) LoadLevel(name string) (*level.Level, error) {
	name = strings.TrimSuffix(name, levelExt)
	if !validLevelName(name) {
		return nil, ErrLevelNotFound
	}

	m.mu.RLock()
	if lvl, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return lvl, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if lvl, exists := m.levels[name]; exists {
		return lvl, nil
	}

	lvl, err := level.ParseFile(m.levelPath(name), m.limits)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrLevelNotFound
		}
		var perr *level.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	m.levels[name] = lvl
	return lvl, nil
}

// ListLevels describes every level in the directory that parses. Invalid
// files are skipped.
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var levels []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), levelExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), levelExt)
		lvl, err := m.LoadLevel(name)
		if err != nil {
			log.Printf("Warning: skipping level %s: %v", entry.Name(), err)
			continue
		}

		levels = append(levels, service.DescribeLevel(name, lvl))
	}

	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *level.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	lvl, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = lvl
	return nil
}

// RefreshCache drops every cached level and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*level.Level)
	m.mu.Unlock()

	def, err := m.loadDefaultLevel()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultLevel = def
	m.mu.Unlock()
	return nil
}

// SaveLevel checks that source parses and writes it as name.txt, replacing
// any cached copy
func (m *Manager) SaveLevel(name, source string) (*level.Level, error) {
	name = strings.TrimSuffix(name, levelExt)
	if !validLevelName(name) {
		return nil, fmt.Errorf("%w: bad level name %q", ErrInvalidLevel, name)
	}

	lvl, err := level.ParseString(source, m.limits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	lvl.Name = name

	if err := os.WriteFile(m.levelPath(name), []byte(source), 0644); err != nil {
		return nil, fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[name] = lvl
	m.mu.Unlock()

	return lvl, nil
}

// loadDefaultLevel picks baba.txt, else the first valid level, else the
// built-in level
func (m *Manager) loadDefaultLevel() (*level.Level, error) {
	if lvl, err := m.LoadLevel(defaultLevel); err == nil {
		return lvl, nil
	}

	levels, err := m.ListLevels()
	if err == nil && len(levels) > 0 {
		if lvl, err := m.LoadLevel(levels[0].LevelID); err == nil {
			return lvl, nil
		}
	}

	lvl, err := level.ParseString(builtinLevel, m.limits)
	if err != nil {
		return nil, err
	}
	lvl.Name = "default"
	return lvl, nil
}

func (m *Manager) levelPath(name string) string {
	return filepath.Join(m.levelDir, name+levelExt)
}

// validLevelName accepts names usable as a file name in the level directory
func validLevelName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
