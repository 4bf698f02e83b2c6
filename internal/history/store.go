package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// MemoryPath opens a store that lives only as long as the process.
const MemoryPath = ":memory:"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored agent run.
type Run struct {
	ID            string
	SessionKey    string
	Instruction   string
	Status        string
	Output        string
	FailureReason string
	Model         string
	Steps         int
	ToolCalls     int
	ToolFailures  int
	Tokens        int
	StartedAt     time.Time
	FinishedAt    time.Time
	WallTime      time.Duration
}

// Store persists runs and their transcripts in DuckDB.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. An empty path or ":memory:" opens an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path == MemoryPath {
		dsn = ""
	}
	if dsn != "" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run and its transcript atomically.
func (s *Store) RecordRun(ctx context.Context, run Run, messages []Message) error {
	if run.ID == "" {
		return errors.New("history: run id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
		  run_id, session_key, instruction, status, output, failure_reason, model,
		  steps, tool_calls, tool_failures, tokens, started_at, finished_at, wall_time_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionKey, run.Instruction, run.Status, run.Output, nullable(run.FailureReason), run.Model,
		run.Steps, run.ToolCalls, run.ToolFailures, run.Tokens, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.WallTime.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, message := range messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_messages (run_id, seq, role, kind, content) VALUES (?, ?, ?, ?, ?)`,
			run.ID, message.Seq, message.Role, message.Kind, message.Content,
		); err != nil {
			return fmt.Errorf("insert message %d: %w", message.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const runColumns = `run_id, session_key, instruction, status, COALESCE(output, ''),
  COALESCE(failure_reason, ''), COALESCE(model, ''), steps, tool_calls, tool_failures, tokens,
  started_at, finished_at, wall_time_ms`

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// GetRun returns one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Transcript returns the stored messages of a run in order.
func (s *Store) Transcript(ctx context.Context, id string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, role, kind, content FROM run_messages WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var message Message
		if err := rows.Scan(&message.Seq, &message.Role, &message.Kind, &message.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, message)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var wallMS int64
	if err := row.Scan(
		&run.ID, &run.SessionKey, &run.Instruction, &run.Status, &run.Output,
		&run.FailureReason, &run.Model, &run.Steps, &run.ToolCalls, &run.ToolFailures, &run.Tokens,
		&run.StartedAt, &run.FinishedAt, &wallMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.WallTime = time.Duration(wallMS) * time.Millisecond
	return run, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
