package service

import (
	"time"

	"github.com/wricardo/babarules/game/engine"
)

// SessionInfo provides information about a workbench session
type SessionInfo struct {
	ID             string           `json:"id"`
	LevelName      string           `json:"level_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// EditResult reports a board edit and how the rules changed
type EditResult struct {
	SessionID string           `json:"session_id"`
	Action    string           `json:"action"` // "set_cell", "clear_cell" or "reset"
	Cell      *engine.CellView `json:"cell,omitempty"`
	Added     []string         `json:"added"`
	Removed   []string         `json:"removed"`
	Snapshot  engine.Snapshot  `json:"snapshot"`
}

// RulesChanged reports whether the edit added or removed any rule
func (r *EditResult) RulesChanged() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Evaluation is the result of deriving rules from level text
type Evaluation struct {
	Census   engine.Census   `json:"census"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// LevelInfo provides information about a stored level
type LevelInfo struct {
	Filename  string   `json:"filename"`
	LevelID   string   `json:"level_id"` // The identifier to use for session creation
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	ItemTypes []string `json:"item_types"`
	Objects   int      `json:"objects"`
	Rules     int      `json:"rules"`
}

// LevelDetail is a stored level with its source and derived rules
type LevelDetail struct {
	Info     *LevelInfo      `json:"info"`
	Source   string          `json:"source"`
	Snapshot engine.Snapshot `json:"snapshot"`
}
