// Package boardstore provides persistent storage for saved dashboard boards.
//
// A board captures a dashboard layout (network, metric list, range) under a
// name so it can be reopened later without re-picking everything.
//
// Storage is backed by the shared SQLite database at
// ~/.config/chainpulse/chainpulse.db (shared with snapstore, separate table).
package boardstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/database"
	"github.com/yashh-d/chainpulse/internal/util"
)

// Repository defines the persistence interface for saved boards.
type Repository interface {
	// Get returns the board with the given name, or nil if not found.
	Get(name string) (*Board, error)

	// Save upserts a board by name.
	Save(board *Board) error

	// List returns all saved boards ordered by name.
	List() ([]Board, error)

	// Delete removes a board by name. Deleting a missing board is an error.
	Delete(name string) error

	// Close releases database resources.
	Close() error
}

// SQLiteRepository implements Repository backed by the shared local SQLite
// database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the board repository at the default database path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates or opens the board repository at the given path.
// The parent directory is created if it does not exist.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

// migrate creates the boards table if it doesn't exist.
func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS boards (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			network     TEXT NOT NULL,
			metrics     TEXT NOT NULL DEFAULT '',
			range_token TEXT NOT NULL DEFAULT '',
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(name)
		);
	`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("boards: migration failed: %w", err)
	}
	return nil
}

// Get returns the board with the given name, or nil if not found.
func (r *SQLiteRepository) Get(name string) (*Board, error) {
	row := r.db.QueryRow(`
		SELECT id, name, network, metrics, range_token, updated_at
		FROM boards WHERE name = ?`, name)

	var board Board
	var metricsStr, updatedStr string
	err := row.Scan(&board.ID, &board.Name, &board.Network, &metricsStr, &board.Range, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("boards: query failed: %w", err)
	}
	board.Metrics = util.SplitList(metricsStr)
	board.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &board, nil
}

// Save upserts a board by name.
func (r *SQLiteRepository) Save(board *Board) error {
	board.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO boards (name, network, metrics, range_token, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			network = excluded.network,
			metrics = excluded.metrics,
			range_token = excluded.range_token,
			updated_at = excluded.updated_at`,
		board.Name, board.Network, strings.Join(board.Metrics, ","),
		board.Range, board.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("boards: upsert failed: %w", err)
	}

	if board.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			board.ID = id
		}
	}
	return nil
}

// List returns all saved boards ordered by name.
func (r *SQLiteRepository) List() ([]Board, error) {
	rows, err := r.db.Query(`
		SELECT id, name, network, metrics, range_token, updated_at
		FROM boards ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("boards: query failed: %w", err)
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var board Board
		var metricsStr, updatedStr string
		err := rows.Scan(&board.ID, &board.Name, &board.Network, &metricsStr, &board.Range, &updatedStr)
		if err != nil {
			return nil, fmt.Errorf("boards: scan failed: %w", err)
		}
		board.Metrics = util.SplitList(metricsStr)
		board.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

// Delete removes a board by name.
func (r *SQLiteRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM boards WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("boards: delete failed: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("boards: board %q not found", name)
	}
	return nil
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
