package session

import (
	"fmt"
	"time"

	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/level"
	"github.com/wricardo/babarules/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. Both boards are
// kept as level text: the level as loaded, for resets, and the edited board.
type PersistedSessionData struct {
	ID             string    `json:"id"`
	LevelName      string    `json:"level_name"`
	LevelSource    string    `json:"level_source"`
	BoardSource    string    `json:"board_source"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// newPersistedData captures a session for storage
func newPersistedData(session *service.Session) PersistedSessionData {
	state := session.Engine.State()
	return PersistedSessionData{
		ID:             session.ID,
		LevelName:      session.Engine.LevelName(),
		LevelSource:    session.Level.Source(),
		BoardSource:    level.Encode(state.Desc, state.Objects),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}
}

// restore rebuilds a session from its stored form
func (d PersistedSessionData) restore(limits level.Limits) (*service.Session, error) {
	lvl, err := level.ParseString(d.LevelSource, limits)
	if err != nil {
		return nil, fmt.Errorf("failed to parse level of session %s: %w", d.ID, err)
	}
	lvl.Name = d.LevelName

	board, err := level.ParseString(d.BoardSource, limits)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board of session %s: %w", d.ID, err)
	}
	if board.Desc.Rows != lvl.Desc.Rows || board.Desc.Cols != lvl.Desc.Cols {
		return nil, fmt.Errorf("session %s: board is %dx%d but level is %dx%d",
			d.ID, board.Desc.Rows, board.Desc.Cols, lvl.Desc.Rows, lvl.Desc.Cols)
	}

	eng, err := engine.NewEngine(lvl.Name, lvl.Desc, lvl.Objects)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.Restore(board.Objects); err != nil {
		return nil, fmt.Errorf("failed to restore board: %w", err)
	}

	return &service.Session{
		ID:             d.ID,
		Engine:         eng,
		Level:          lvl,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}, nil
}
