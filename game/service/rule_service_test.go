package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/level"
	"github.com/wricardo/babarules/game/service"
)

var errNotFound = errors.New("not found")

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{sessions: make(map[string]*service.Session)}
}

func (m *MockSessionManager) Create(id string, lvl *level.Level) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(lvl.Name, lvl.Desc, lvl.Objects)
	if err != nil {
		return nil, err
	}

	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Level:          lvl,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	sess, exists := m.sessions[id]
	if !exists {
		return nil, errNotFound
	}
	return sess, nil
}

func (m *MockSessionManager) GetOrCreate(id string, lvl *level.Level) (*service.Session, error) {
	if sess, exists := m.sessions[id]; exists {
		return sess, nil
	}
	return m.Create(id, lvl)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if sess, exists := m.sessions[id]; exists {
		sess.LastAccessedAt = time.Now()
		return nil
	}
	return errNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errNotFound
	}
	m.saves++
	return nil
}

// MockLevelManager implements service.LevelManager for testing
type MockLevelManager struct {
	sources map[string]string
}

func NewMockLevelManager() *MockLevelManager {
	return &MockLevelManager{sources: map[string]string{
		"baba": "b baba\nf flag\n\n######\n#B=  #\n#F=* #\n######\n",
		"keke": "k keke\n\n#####\n#K=@#\n#####\n",
	}}
}

func (m *MockLevelManager) LoadLevel(name string) (*level.Level, error) {
	src, ok := m.sources[name]
	if !ok {
		return nil, errNotFound
	}
	lvl, err := level.ParseString(src, level.DefaultLimits())
	if err != nil {
		return nil, err
	}
	lvl.Name = name
	return lvl, nil
}

func (m *MockLevelManager) ListLevels() ([]*service.LevelInfo, error) {
	var infos []*service.LevelInfo
	for _, name := range []string{"baba", "keke"} {
		lvl, err := m.LoadLevel(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, service.DescribeLevel(name, lvl))
	}
	return infos, nil
}

func (m *MockLevelManager) GetDefault() *level.Level {
	lvl, _ := m.LoadLevel("baba")
	return lvl
}

func (m *MockLevelManager) SaveLevel(name, source string) (*level.Level, error) {
	lvl, err := level.ParseString(source, level.DefaultLimits())
	if err != nil {
		return nil, err
	}
	m.sources[name] = source
	lvl.Name = name
	return lvl, nil
}

func newTestService() (service.RuleService, *MockSessionManager) {
	sessions := NewMockSessionManager()
	return service.NewRuleService(sessions, NewMockLevelManager(), level.DefaultLimits()), sessions
}

func TestRuleService_CreateSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	t.Run("default level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.LevelName != "baba" {
			t.Errorf("Expected default level 'baba', got %q", info.LevelName)
		}
		if diff := cmp.Diff([]string{"FLAG IS WIN"}, info.Snapshot.Rules); diff != "" {
			t.Errorf("Rules mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("named level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "keke")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if diff := cmp.Diff([]string{"KEKE IS YOU"}, info.Snapshot.Rules); diff != "" {
			t.Errorf("Rules mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown level lists alternatives", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "missing")
		if !errors.Is(err, errNotFound) {
			t.Fatalf("Expected wrapped not-found error, got %v", err)
		}
		if !strings.Contains(err.Error(), "baba") || !strings.Contains(err.Error(), "keke") {
			t.Errorf("Expected available levels in %q", err.Error())
		}
	})
}

func TestRuleService_SetCellReportsRuleDiff(t *testing.T) {
	svc, sessions := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "baba")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	result, err := svc.SetCell(ctx, info.ID, 0, 2, "@")
	if err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if diff := cmp.Diff([]string{"BABA IS YOU"}, result.Added); diff != "" {
		t.Errorf("Added mismatch (-want +got):\n%s", diff)
	}
	if len(result.Removed) != 0 || !result.RulesChanged() {
		t.Errorf("Unexpected diff: %+v", result)
	}
	if result.Cell == nil || result.Cell.Glyph != "@" || result.Cell.Objects[0] != "YOU" {
		t.Errorf("Unexpected cell view: %+v", result.Cell)
	}
	if sessions.saves != 1 {
		t.Errorf("Expected session to be saved once, got %d", sessions.saves)
	}

	result, err = svc.ClearCell(ctx, info.ID, 1, 2)
	if err != nil {
		t.Fatalf("ClearCell failed: %v", err)
	}
	if diff := cmp.Diff([]string{"FLAG IS WIN"}, result.Removed); diff != "" {
		t.Errorf("Removed mismatch (-want +got):\n%s", diff)
	}

	snap, err := svc.GetRules(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetRules failed: %v", err)
	}
	if diff := cmp.Diff([]string{"BABA IS YOU"}, snap.Rules); diff != "" {
		t.Errorf("Rules mismatch (-want +got):\n%s", diff)
	}

	result, err = svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if diff := cmp.Diff([]string{"FLAG IS WIN"}, result.Snapshot.Rules); diff != "" {
		t.Errorf("Rules after reset mismatch (-want +got):\n%s", diff)
	}
	if result.Cell != nil {
		t.Error("Expected no cell view for reset")
	}
}

func TestRuleService_EditErrors(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "baba")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	tests := []struct {
		name  string
		id    string
		row   int
		col   int
		glyph string
		want  error
	}{
		{"empty glyph", info.ID, 0, 0, "", service.ErrInvalidInput},
		{"two glyphs", info.ID, 0, 0, "@@", service.ErrInvalidInput},
		{"undeclared glyph", info.ID, 0, 0, "z", engine.ErrInvalidGlyph},
		{"off board", info.ID, 9, 0, "@", engine.ErrCellOutOfRange},
		{"unknown session", "nope", 0, 0, "@", errNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetCell(ctx, tt.id, tt.row, tt.col, tt.glyph)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRuleService_ListAndDeleteSessions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, _ := svc.CreateSession(ctx, "baba")
	second, _ := svc.CreateSession(ctx, "keke")

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, first.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, first.ID); err == nil {
		t.Error("Expected deleted session to be gone")
	}
	if got, err := svc.GetSession(ctx, second.ID); err != nil || got.LevelName != "keke" {
		t.Errorf("Expected remaining session on keke, got %+v (%v)", got, err)
	}
}

func TestRuleService_Evaluate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	eval, err := svc.Evaluate(ctx, "b baba\nr rock\n\n#####\n#B&R#\n#= @#\n#@  #\n#####\n")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if diff := cmp.Diff([]string{"BABA IS YOU"}, eval.Snapshot.Rules); diff != "" {
		t.Errorf("Rules mismatch (-want +got):\n%s", diff)
	}
	if eval.Census.Words != 2 || eval.Census.Statements != 1 {
		t.Errorf("Unexpected census: %+v", eval.Census)
	}

	_, err = svc.Evaluate(ctx, "b baba\n")
	var perr *level.ParseError
	if !errors.As(err, &perr) || !errors.Is(err, level.ErrTruncatedInput) {
		t.Errorf("Expected a truncated-input parse error, got %v", err)
	}
}

func TestRuleService_Levels(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	levels, err := svc.ListLevels(ctx)
	if err != nil {
		t.Fatalf("ListLevels failed: %v", err)
	}
	if len(levels) != 2 || levels[0].LevelID != "baba" || levels[0].Rules != 1 {
		t.Errorf("Unexpected levels: %+v", levels[0])
	}

	detail, err := svc.LoadLevel(ctx, "keke")
	if err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	if detail.Source != "k keke\n\n#####\n#K=@#\n#####\n" {
		t.Errorf("Unexpected source %q", detail.Source)
	}
	if diff := cmp.Diff([]string{"KEKE"}, detail.Info.ItemTypes); diff != "" {
		t.Errorf("Item types mismatch (-want +got):\n%s", diff)
	}

	info, err := svc.SaveLevel(ctx, "rock", "r rock\n\n#####\n#R=.#\n#####\n")
	if err != nil {
		t.Fatalf("SaveLevel failed: %v", err)
	}
	if info.Filename != "rock.txt" || info.Rules != 1 {
		t.Errorf("Unexpected level info: %+v", info)
	}

	if _, err := svc.SaveLevel(ctx, "", "r rock\n\n###\n#R#\n###\n"); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.SaveLevel(ctx, "bad", "###"); err == nil {
		t.Error("Expected invalid level text to be rejected")
	}
}
