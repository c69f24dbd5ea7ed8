package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/level"
)

// ErrInvalidInput is returned for requests the service cannot act on.
var ErrInvalidInput = errors.New("invalid input")

// RuleService defines all rule workbench operations
type RuleService interface {
	// Session Management
	CreateSession(ctx context.Context, levelName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Board editing
	GetRules(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	SetCell(ctx context.Context, sessionID string, row, col int, glyph string) (*EditResult, error)
	ClearCell(ctx context.Context, sessionID string, row, col int) (*EditResult, error)
	Reset(ctx context.Context, sessionID string) (*EditResult, error)

	// One-shot evaluation
	Evaluate(ctx context.Context, source string) (*Evaluation, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelName string) (*LevelDetail, error)
	SaveLevel(ctx context.Context, levelName, source string) (*LevelInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, lvl *level.Level) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, lvl *level.Level) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level loading
type LevelManager interface {
	LoadLevel(name string) (*level.Level, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *level.Level
	SaveLevel(name, source string) (*level.Level, error)
}

// Session is one board being edited
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Level          *level.Level
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
