package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"asoos/internal/session"
)

// SQLiteStore keeps workflows in a SQLite database. Collections are stored as JSON
// text columns; seq records first-insert order and survives overwrites.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create sqlite parent dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store, err := NewSQLiteStoreFromDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStoreFromDB wraps an already open database
func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			name TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			commands TEXT NOT NULL,
			active_connections TEXT NOT NULL,
			context TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS workflows_seq ON workflows(seq);`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, wf Workflow) error {
	wf = normalize(wf)

	commands, err := json.Marshal(wf.Commands)
	if err != nil {
		return fmt.Errorf("encode workflow commands: %w", err)
	}
	connections, err := json.Marshal(wf.ActiveConnections)
	if err != nil {
		return fmt.Errorf("encode workflow connections: %w", err)
	}
	wfContext, err := json.Marshal(wf.Context)
	if err != nil {
		return fmt.Errorf("encode workflow context: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO workflows(name, seq, created_at, commands, active_connections, context)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM workflows), ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   created_at = excluded.created_at,
		   commands = excluded.commands,
		   active_connections = excluded.active_connections,
		   context = excluded.context`,
		wf.Name,
		formatTime(wf.Timestamp),
		string(commands),
		string(connections),
		string(wfContext),
	)
	if err != nil {
		return fmt.Errorf("upsert workflow: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (Workflow, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT name, created_at, commands, active_connections, context
		 FROM workflows
		 WHERE name = ?`,
		name,
	)

	wf, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Workflow{}, false, nil
	}
	if err != nil {
		return Workflow{}, false, err
	}
	return wf, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete workflow: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete workflow rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Workflow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, created_at, commands, active_connections, context
		 FROM workflows
		 ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]Workflow, 0)
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (Workflow, error) {
	var (
		wf             Workflow
		createdAtRaw   string
		commandsRaw    string
		connectionsRaw string
		contextRaw     string
	)

	if err := row.Scan(&wf.Name, &createdAtRaw, &commandsRaw, &connectionsRaw, &contextRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workflow{}, err
		}
		return Workflow{}, fmt.Errorf("scan workflow: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdAtRaw)
	if err != nil {
		return Workflow{}, fmt.Errorf("parse workflow created_at: %w", err)
	}
	wf.Timestamp = createdAt

	var commands []session.HistoryEntry
	if err := json.Unmarshal([]byte(commandsRaw), &commands); err != nil {
		return Workflow{}, fmt.Errorf("decode workflow commands: %w", err)
	}
	wf.Commands = commands

	if err := json.Unmarshal([]byte(connectionsRaw), &wf.ActiveConnections); err != nil {
		return Workflow{}, fmt.Errorf("decode workflow connections: %w", err)
	}
	if err := json.Unmarshal([]byte(contextRaw), &wf.Context); err != nil {
		return Workflow{}, fmt.Errorf("decode workflow context: %w", err)
	}
	return normalize(wf), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
