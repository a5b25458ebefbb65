package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

// Timestamp layouts seen in stored rows. The driver stores time.Time as a
// string; older rows may carry other layouts.
var timeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InsertSnapshot stores one refresh of a resource's statistics.
func (db *DB) InsertSnapshot(snapshot *models.StatSnapshot) error {
	query := `
		INSERT INTO stat_snapshots (
			resource, total, android, ios, average, exact, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		snapshot.Resource,
		snapshot.Total,
		snapshot.Android,
		snapshot.IOS,
		snapshot.Average,
		boolToInt(snapshot.Exact),
		createdAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snapshot.ID = id
	}

	return nil
}

// GetSnapshotHistory returns a resource's snapshots inside the time range,
// oldest first so they can feed a chart directly.
func (db *DB) GetSnapshotHistory(resource string, timeRange models.TimeRange) ([]models.StatSnapshot, error) {
	query := `
		SELECT id, resource, total, android, ios, average, exact, created_at
		FROM stat_snapshots
		WHERE resource = ?
	`
	args := []any{resource}

	if days := timeRange.Days(); days > 0 {
		query += " AND created_at >= datetime('now', ?)"
		args = append(args, fmt.Sprintf("-%d days", days))
	}

	query += " ORDER BY created_at ASC"

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []models.StatSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// GetLatestSnapshot returns a resource's most recent snapshot, nil when the
// resource has never been captured.
func (db *DB) GetLatestSnapshot(resource string) (*models.StatSnapshot, error) {
	query := `
		SELECT id, resource, total, android, ios, average, exact, created_at
		FROM stat_snapshots
		WHERE resource = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	rows, err := db.QueryContext(context.Background(), query, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}

	snapshot, err := scanSnapshot(rows)
	if err != nil {
		return nil, err
	}
	return &snapshot, rows.Err()
}

// PruneSnapshots deletes snapshots older than the retention window and
// returns the number of rows removed.
func (db *DB) PruneSnapshots(retentionDays int) (int64, error) {
	query := `DELETE FROM stat_snapshots WHERE created_at < datetime('now', ?)`

	result, err := db.ExecContext(context.Background(), query,
		fmt.Sprintf("-%d days", retentionDays))
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return result.RowsAffected()
}

func scanSnapshot(rows *sql.Rows) (models.StatSnapshot, error) {
	var snapshot models.StatSnapshot
	var exact int
	var createdAt sql.NullString

	err := rows.Scan(
		&snapshot.ID,
		&snapshot.Resource,
		&snapshot.Total,
		&snapshot.Android,
		&snapshot.IOS,
		&snapshot.Average,
		&exact,
		&createdAt,
	)
	if err != nil {
		return models.StatSnapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snapshot.Exact = exact != 0
	if createdAt.Valid && createdAt.String != "" {
		if t, ok := parseTimeString(createdAt.String); ok {
			snapshot.CreatedAt = t
		}
	}

	return snapshot, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
