// Package store persists local task lists and tasks in an embedded SQLite
// database.
//
// The database runs with WAL and foreign keys enabled. Timestamps are stored
// as the ISO-8601 strings carried by the local records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"tasksync/internal/local"
)

// DefaultListTitle is the title of the list created in an empty store.
const DefaultListTitle = "My Tasks"

var (
	// ErrNotFound is returned when a list or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a list name matches several lists.
	ErrAmbiguous = errors.New("ambiguous")
)

const schema = `
CREATE TABLE IF NOT EXISTS lists (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	created_at TEXT NOT NULL,
	last_modified TEXT NOT NULL,
	remote_id TEXT,
	remote_last_modified TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	list_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	due_date TEXT,
	is_completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	last_modified TEXT NOT NULL,
	remote_id TEXT,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id, created_at);
CREATE INDEX IF NOT EXISTS idx_tasks_remote ON tasks(remote_id);
`

// Store is the local task store.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the store at path and initializes the schema.
// The caller must call Close when done.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Lists returns all lists, oldest first.
func (s *Store) Lists(ctx context.Context) ([]local.TaskList, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, created_at, last_modified, remote_id, remote_last_modified
		FROM lists ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []local.TaskList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// List returns the list with id.
func (s *Store) List(ctx context.Context, id string) (local.TaskList, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, created_at, last_modified, remote_id, remote_last_modified
		FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return local.TaskList{}, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	return l, err
}

// DefaultList returns the oldest list, creating one if the store is empty.
func (s *Store) DefaultList(ctx context.Context) (local.TaskList, error) {
	lists, err := s.Lists(ctx)
	if err != nil {
		return local.TaskList{}, err
	}
	if len(lists) > 0 {
		return lists[0], nil
	}
	return s.CreateList(ctx, DefaultListTitle)
}

// ResolveList finds a list by title (case-insensitive, trimmed).
func (s *Store) ResolveList(ctx context.Context, name string) (local.TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	lists, err := s.Lists(ctx)
	if err != nil {
		return local.TaskList{}, err
	}

	var matches []local.TaskList
	for _, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return local.TaskList{}, fmt.Errorf("list %s: %w", name, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return local.TaskList{}, fmt.Errorf("list %s: %w", name, ErrAmbiguous)
	}
}

// CreateList creates a list with a fresh id.
func (s *Store) CreateList(ctx context.Context, title string) (local.TaskList, error) {
	now := local.Now()
	l := local.TaskList{
		ID:           uuid.NewString(),
		Title:        title,
		CreatedAt:    now,
		LastModified: now,
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO lists (id, title, created_at, last_modified) VALUES (?, ?, ?, ?)`,
		l.ID, l.Title, l.CreatedAt, l.LastModified)
	if err != nil {
		return local.TaskList{}, fmt.Errorf("failed to create list: %w", err)
	}
	return l, nil
}

// DeleteList removes a list and all of its tasks.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	return nil
}

// Tasks returns the tasks of a list in creation order. Tombstones are
// included only when includeDeleted is set.
func (s *Store) Tasks(ctx context.Context, listID string, includeDeleted bool) ([]local.Task, error) {
	query := `
		SELECT id, list_id, title, description, due_date, is_completed,
		       created_at, last_modified, remote_id, is_deleted
		FROM tasks WHERE list_id = ?`
	if !includeDeleted {
		query += ` AND is_deleted = 0`
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.conn.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []local.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// OpenTasks returns the not completed, not deleted tasks of a list.
func (s *Store) OpenTasks(ctx context.Context, listID string) ([]local.Task, error) {
	tasks, err := s.Tasks(ctx, listID, false)
	if err != nil {
		return nil, err
	}
	open := tasks[:0]
	for _, t := range tasks {
		if !t.IsCompleted {
			open = append(open, t)
		}
	}
	return open, nil
}

// Task returns the task with id, tombstones included.
func (s *Store) Task(ctx context.Context, id string) (local.Task, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, list_id, title, description, due_date, is_completed,
		       created_at, last_modified, remote_id, is_deleted
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return local.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// CreateTask stores a new task with a fresh id and current timestamps.
func (s *Store) CreateTask(ctx context.Context, t local.Task) (local.Task, error) {
	now := local.Now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.LastModified = now
	t.RemoteID = ""
	t.IsDeleted = false
	if err := upsertTask(ctx, s.conn, t); err != nil {
		return local.Task{}, err
	}
	return t, nil
}

// UpdateTask saves user edits to t and bumps its modification time.
func (s *Store) UpdateTask(ctx context.Context, t local.Task) (local.Task, error) {
	if _, err := s.Task(ctx, t.ID); err != nil {
		return local.Task{}, err
	}
	t.LastModified = local.Now()
	if err := upsertTask(ctx, s.conn, t); err != nil {
		return local.Task{}, err
	}
	return t, nil
}

// DeleteTask deletes a task on behalf of the user. Synced tasks become
// tombstones so the next sync can delete their remote twin; others are
// removed immediately.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	t, err := s.Task(ctx, id)
	if err != nil {
		return err
	}
	if !t.Synced() {
		return s.Purge(ctx, id)
	}
	return s.MarkDeleted(ctx, id)
}

// MarkDeleted turns a task into a tombstone.
func (s *Store) MarkDeleted(ctx context.Context, id string) error {
	return markDeleted(ctx, s.conn, id, local.Now())
}

// Purge removes a task row.
func (s *Store) Purge(ctx context.Context, id string) error {
	return purge(ctx, s.conn, id)
}

func upsertTask(ctx context.Context, q querier, t local.Task) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tasks (
			id, list_id, title, description, due_date, is_completed,
			created_at, last_modified, remote_id, is_deleted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			list_id = excluded.list_id,
			title = excluded.title,
			description = excluded.description,
			due_date = excluded.due_date,
			is_completed = excluded.is_completed,
			last_modified = excluded.last_modified,
			remote_id = excluded.remote_id,
			is_deleted = excluded.is_deleted`,
		t.ID,
		t.ListID,
		t.Title,
		nullString(t.Description),
		nullString(t.DueDate),
		t.IsCompleted,
		t.CreatedAt,
		t.LastModified,
		nullString(t.RemoteID),
		t.IsDeleted,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", t.ID, err)
	}
	return nil
}

func markDeleted(ctx context.Context, q querier, id, now string) error {
	_, err := q.ExecContext(ctx, `UPDATE tasks SET is_deleted = 1, last_modified = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark task %s deleted: %w", id, err)
	}
	return nil
}

func purge(ctx context.Context, q querier, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to purge task %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanList(row scanner) (local.TaskList, error) {
	var (
		l                  local.TaskList
		remoteID, remoteLM sql.NullString
	)
	if err := row.Scan(&l.ID, &l.Title, &l.CreatedAt, &l.LastModified, &remoteID, &remoteLM); err != nil {
		return local.TaskList{}, err
	}
	l.RemoteID = remoteID.String
	l.RemoteLastModified = remoteLM.String
	return l, nil
}

func scanTask(row scanner) (local.Task, error) {
	var (
		t                      local.Task
		desc, due, remoteID    sql.NullString
		isCompleted, isDeleted bool
	)
	err := row.Scan(&t.ID, &t.ListID, &t.Title, &desc, &due, &isCompleted,
		&t.CreatedAt, &t.LastModified, &remoteID, &isDeleted)
	if err != nil {
		return local.Task{}, err
	}
	t.Description = desc.String
	t.DueDate = due.String
	t.RemoteID = remoteID.String
	t.IsCompleted = isCompleted
	t.IsDeleted = isDeleted
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
