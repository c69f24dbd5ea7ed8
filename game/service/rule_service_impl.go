package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/level"
)

// ruleServiceImpl implements the RuleService interface
type ruleServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	limits   level.Limits
	mu       sync.RWMutex
}

// NewRuleService creates a new rule service instance
func NewRuleService(sessions SessionManager, levels LevelManager, limits level.Limits) RuleService {
	return &ruleServiceImpl{
		sessions: sessions,
		levels:   levels,
		limits:   limits,
	}
}

// CreateSession starts a workbench session on a stored level, or on the
// default level when levelName is empty
func (s *ruleServiceImpl) CreateSession(ctx context.Context, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lvl *level.Level
	if levelName != "" {
		var err error
		lvl, err = s.levels.LoadLevel(levelName)
		if err != nil {
			return nil, s.levelLoadError(levelName, err)
		}
	} else {
		lvl = s.levels.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", lvl)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *ruleServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *ruleServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *ruleServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// GetRules returns the current board and rules of a session
func (s *ruleServiceImpl) GetRules(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	snap := sess.Engine.Snapshot()
	return &snap, nil
}

// SetCell places the object a glyph stands for, replacing the cell's contents
func (s *ruleServiceImpl) SetCell(ctx context.Context, sessionID string, row, col int, glyph string) (*EditResult, error) {
	if utf8.RuneCountInString(glyph) != 1 {
		return nil, fmt.Errorf("%w: glyph must be a single character, got %q", ErrInvalidInput, glyph)
	}
	g, _ := utf8.DecodeRuneInString(glyph)

	return s.edit(sessionID, "set_cell", func(eng *engine.GameEngine) (*engine.CellView, error) {
		if err := eng.SetCell(row, col, g); err != nil {
			return nil, err
		}
		cell, err := eng.Cell(row, col)
		return &cell, err
	})
}

// ClearCell empties a cell
func (s *ruleServiceImpl) ClearCell(ctx context.Context, sessionID string, row, col int) (*EditResult, error) {
	return s.edit(sessionID, "clear_cell", func(eng *engine.GameEngine) (*engine.CellView, error) {
		if err := eng.ClearCell(row, col); err != nil {
			return nil, err
		}
		cell, err := eng.Cell(row, col)
		return &cell, err
	})
}

// Reset restores the session's board to the level as loaded
func (s *ruleServiceImpl) Reset(ctx context.Context, sessionID string) (*EditResult, error) {
	return s.edit(sessionID, "reset", func(eng *engine.GameEngine) (*engine.CellView, error) {
		eng.Reset()
		return nil, nil
	})
}

// edit applies a board change and reports the rule difference. The session
// is persisted after every successful edit.
func (s *ruleServiceImpl) edit(sessionID, action string, apply func(*engine.GameEngine) (*engine.CellView, error)) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	before := sess.Engine.RuleLines()
	cell, err := apply(sess.Engine)
	if err != nil {
		return nil, err
	}
	after := sess.Engine.RuleLines()

	if err := s.sessions.Save(sess.ID); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}

	return &EditResult{
		SessionID: sess.ID,
		Action:    action,
		Cell:      cell,
		Added:     difference(after, before),
		Removed:   difference(before, after),
		Snapshot:  sess.Engine.Snapshot(),
	}, nil
}

// Evaluate derives the rules of level text without creating a session
func (s *ruleServiceImpl) Evaluate(ctx context.Context, source string) (*Evaluation, error) {
	lvl, err := level.ParseString(source, s.limits)
	if err != nil {
		return nil, err
	}

	state := lvl.State()
	return &Evaluation{
		Census:   engine.TakeCensus(state),
		Snapshot: state.Snapshot(lvl.Name),
	}, nil
}

// ListLevels returns the stored levels
func (s *ruleServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel returns a stored level with its derived rules
func (s *ruleServiceImpl) LoadLevel(ctx context.Context, levelName string) (*LevelDetail, error) {
	lvl, err := s.levels.LoadLevel(levelName)
	if err != nil {
		return nil, s.levelLoadError(levelName, err)
	}

	return &LevelDetail{
		Info:     DescribeLevel(levelName, lvl),
		Source:   lvl.Source(),
		Snapshot: lvl.State().Snapshot(levelName),
	}, nil
}

// SaveLevel stores level text under a name after checking that it parses
func (s *ruleServiceImpl) SaveLevel(ctx context.Context, levelName, source string) (*LevelInfo, error) {
	if levelName == "" {
		return nil, fmt.Errorf("%w: level name is required", ErrInvalidInput)
	}

	lvl, err := s.levels.SaveLevel(levelName, source)
	if err != nil {
		return nil, err
	}
	return DescribeLevel(levelName, lvl), nil
}

// levelLoadError lists the available levels when the requested one is missing
func (s *ruleServiceImpl) levelLoadError(levelName string, err error) error {
	var perr *level.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("level '%s' is invalid: %w", levelName, err)
	}

	available, listErr := s.levels.ListLevels()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, info := range available {
			ids = append(ids, info.LevelID)
		}
		return fmt.Errorf("level '%s' (available: %v): %w", levelName, ids, err)
	}
	return fmt.Errorf("level '%s': %w", levelName, err)
}

// DescribeLevel summarises a parsed level
func DescribeLevel(levelName string, lvl *level.Level) *LevelInfo {
	names := make([]string, 0, len(lvl.Desc.Items))
	for _, info := range lvl.Desc.Items {
		names = append(names, info.Name)
	}

	return &LevelInfo{
		Filename:  levelName + ".txt",
		LevelID:   levelName,
		Rows:      lvl.Desc.Rows,
		Cols:      lvl.Desc.Cols,
		ItemTypes: names,
		Objects:   len(lvl.Objects),
		Rules:     len(lvl.State().Rules.Lines()),
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	snap := sess.Engine.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		LevelName:      sess.Engine.LevelName(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       &snap,
	}
}

// difference returns the lines of a missing from b, in a's order
func difference(a, b []string) []string {
	out := []string{}
	for _, line := range a {
		if !slices.Contains(b, line) {
			out = append(out, line)
		}
	}
	return out
}
