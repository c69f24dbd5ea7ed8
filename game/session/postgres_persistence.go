package session

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wricardo/babarules/game/level"
	"github.com/wricardo/babarules/game/service"
)

// PostgresPersistence implements SessionPersistence on a PostgreSQL table
type PostgresPersistence struct {
	db     *sql.DB
	limits level.Limits
}

// NewPostgresPersistence connects to PostgreSQL and creates the session
// table when it is missing
func NewPostgresPersistence(connectionString string, limits level.Limits) (*PostgresPersistence, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pp := &PostgresPersistence{db: db, limits: limits}
	if err := pp.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return pp, nil
}

func (pp *PostgresPersistence) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rule_sessions (
		id TEXT PRIMARY KEY,
		level_name TEXT NOT NULL,
		level_source TEXT NOT NULL,
		board_source TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		last_accessed_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	_, err := pp.db.Exec(schema)
	return err
}

// Close releases the database connection pool
func (pp *PostgresPersistence) Close() error {
	return pp.db.Close()
}

// Save upserts a session row
func (pp *PostgresPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	data := newPersistedData(session)

	query := `
	INSERT INTO rule_sessions (id, level_name, level_source, board_source, created_at, last_accessed_at)
	VALUES (lower($1), $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET
		board_source = $4,
		last_accessed_at = $6,
		updated_at = NOW()
	`

	_, err := pp.db.Exec(query,
		data.ID, data.LevelName, data.LevelSource, data.BoardSource,
		data.CreatedAt, data.LastAccessedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads a session row
func (pp *PostgresPersistence) Load(id string) (*service.Session, error) {
	query := `SELECT id, level_name, level_source, board_source, created_at, last_accessed_at FROM rule_sessions WHERE id = lower($1)`

	var data PersistedSessionData
	err := pp.db.QueryRow(query, id).Scan(
		&data.ID, &data.LevelName, &data.LevelSource, &data.BoardSource,
		&data.CreatedAt, &data.LastAccessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return data.restore(pp.limits)
}

// Delete removes a session row
func (pp *PostgresPersistence) Delete(id string) error {
	result, err := pp.db.Exec(`DELETE FROM rule_sessions WHERE id = lower($1)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (pp *PostgresPersistence) ListAll() ([]string, error) {
	rows, err := pp.db.Query(`SELECT id FROM rule_sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (pp *PostgresPersistence) Exists(id string) bool {
	var exists bool
	err := pp.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM rule_sessions WHERE id = lower($1))`, id).Scan(&exists)
	return err == nil && exists
}
