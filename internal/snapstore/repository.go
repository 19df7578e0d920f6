// Package snapstore persists fetched metric series to a local SQLite
// snapshot cache.
//
// Every successful fetch is written through to the cache so dashboards keep
// working offline and repeat lookups don't hammer the upstream APIs. A
// refresh is an upsert keyed (network, metric, ts) inside a single
// transaction, so a concurrent reader can never observe a half-written or
// transiently empty series.
//
// Storage is backed by the shared SQLite database at
// ~/.config/chainpulse/chainpulse.db (or the platform-equivalent path
// returned by os.UserConfigDir).
package snapstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yashh-d/chainpulse/internal/database"
	"github.com/yashh-d/chainpulse/internal/domain"
)

// SnapshotRepository defines the persistence interface for cached series.
type SnapshotRepository interface {
	// UpsertSeries writes points for a (network, metric) pair, inserting
	// new timestamps and updating existing ones, all inside one
	// transaction. Returns the number of points written.
	UpsertSeries(network, metric string, points []domain.Point) (int64, error)

	// LoadSeries returns cached points with Start <= ts < End, oldest first.
	LoadSeries(network, metric string, window domain.RangeWindow) ([]domain.Point, error)

	// Stats summarizes the cache per (network, metric) pair.
	Stats() ([]SnapshotStat, error)

	// PruneBefore removes points older than cutoff. Returns the number removed.
	PruneBefore(cutoff time.Time) (int64, error)

	// RecordSync appends a sync run to the history. An ID is assigned if empty.
	RecordSync(run *SyncRun) error

	// RecentSyncs returns the most recent n sync runs, newest first.
	RecentSyncs(n int) ([]SyncRun, error)

	// Close releases database resources.
	Close() error
}

// SQLiteRepository implements SnapshotRepository backed by the shared local
// SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the snapshot repository at the default database path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates or opens the snapshot repository at the given path.
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

// migrate creates the snapshot tables if they don't exist.
func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS snapshots (
			network    TEXT NOT NULL,
			metric     TEXT NOT NULL,
			ts         TEXT NOT NULL,
			value      REAL NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (network, metric, ts)
		);
		CREATE TABLE IF NOT EXISTS sync_runs (
			id            TEXT    PRIMARY KEY,
			network       TEXT    NOT NULL,
			metric        TEXT    NOT NULL,
			range_token   TEXT    NOT NULL DEFAULT '',
			source        TEXT    NOT NULL DEFAULT '',
			row_count     INTEGER NOT NULL DEFAULT 0,
			status        TEXT    NOT NULL DEFAULT 'success',
			error_message TEXT    NOT NULL DEFAULT '',
			duration_ms   INTEGER NOT NULL DEFAULT 0,
			started_at    TEXT    NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
	`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("snapshots: migration failed: %w", err)
	}
	return nil
}

// UpsertSeries writes points inside a single transaction. Existing rows for
// the same (network, metric, ts) are updated in place rather than deleted
// and reinserted, so a reader never sees the series disappear mid-refresh.
func (r *SQLiteRepository) UpsertSeries(network, metric string, points []domain.Point) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("snapshots: begin failed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO snapshots (network, metric, ts, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(network, metric, ts)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("snapshots: prepare failed: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, p := range points {
		ts := p.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.Exec(network, metric, ts, p.Value, now); err != nil {
			return 0, fmt.Errorf("snapshots: upsert failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("snapshots: commit failed: %w", err)
	}
	return int64(len(points)), nil
}

// LoadSeries returns cached points inside the window, oldest first.
// The window is half-open: Start is included, End is not.
func (r *SQLiteRepository) LoadSeries(network, metric string, window domain.RangeWindow) ([]domain.Point, error) {
	rows, err := r.db.Query(`
		SELECT ts, value FROM snapshots
		WHERE network = ? AND metric = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC`,
		network, metric,
		window.Start.UTC().Format(time.RFC3339Nano),
		window.End.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshots: query failed: %w", err)
	}
	defer rows.Close()
	return scanPoints(rows)
}

// Stats summarizes the cached points per (network, metric) pair.
func (r *SQLiteRepository) Stats() ([]SnapshotStat, error) {
	rows, err := r.db.Query(`
		SELECT network, metric, COUNT(*), MIN(ts), MAX(ts)
		FROM snapshots GROUP BY network, metric ORDER BY network, metric`)
	if err != nil {
		return nil, fmt.Errorf("snapshots: query failed: %w", err)
	}
	defer rows.Close()

	var stats []SnapshotStat
	for rows.Next() {
		var stat SnapshotStat
		var oldestStr, newestStr string
		if err := rows.Scan(&stat.Network, &stat.Metric, &stat.Points, &oldestStr, &newestStr); err != nil {
			return nil, fmt.Errorf("snapshots: scan failed: %w", err)
		}
		stat.Oldest, _ = time.Parse(time.RFC3339Nano, oldestStr)
		stat.Newest, _ = time.Parse(time.RFC3339Nano, newestStr)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// PruneBefore removes points with ts older than cutoff.
func (r *SQLiteRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE ts < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("snapshots: prune failed: %w", err)
	}
	return result.RowsAffected()
}

// RecordSync appends a sync run to the history.
func (r *SQLiteRepository) RecordSync(run *SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusSuccess
	}

	_, err := r.db.Exec(`
		INSERT INTO sync_runs (id, network, metric, range_token, source, row_count, status, error_message, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Network, run.Metric, run.RangeToken, run.Source, run.Rows,
		run.Status, run.ErrorMessage, run.Duration.Milliseconds(),
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("snapshots: sync insert failed: %w", err)
	}
	return nil
}

// RecentSyncs returns the most recent n sync runs, newest first.
func (r *SQLiteRepository) RecentSyncs(n int) ([]SyncRun, error) {
	rows, err := r.db.Query(`
		SELECT id, network, metric, range_token, source, row_count, status, error_message, duration_ms, started_at
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("snapshots: query failed: %w", err)
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var run SyncRun
		var durationMS int64
		var startedStr string
		err := rows.Scan(
			&run.ID, &run.Network, &run.Metric, &run.RangeToken, &run.Source,
			&run.Rows, &run.Status, &run.ErrorMessage, &durationMS, &startedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("snapshots: scan failed: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// scanPoints scans (ts, value) rows into domain points.
func scanPoints(rows *sql.Rows) ([]domain.Point, error) {
	var points []domain.Point
	for rows.Next() {
		var point domain.Point
		var tsStr string
		if err := rows.Scan(&tsStr, &point.Value); err != nil {
			return nil, fmt.Errorf("snapshots: scan failed: %w", err)
		}
		point.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
		points = append(points, point)
	}
	return points, rows.Err()
}
