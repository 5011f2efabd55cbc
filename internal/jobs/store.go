package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"titledoctor/internal/config"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the jobs database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const recordColumns = `job_id, channel, email, status, channel_id, channel_name,
    videos_json, improved_titles_json, error_message, delivery_id,
    created_at, updated_at, completed_at`

// NewJob inserts a queued record for a submitted channel/email pair and
// returns the stored record. The email address is normalized to lowercase.
func (s *Store) NewJob(ctx context.Context, channel, email string) (*Record, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	jobID := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            job_id, channel, email, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID,
		strings.TrimSpace(channel),
		strings.ToLower(strings.TrimSpace(email)),
		StatusQueued,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.Get(ctx, jobID)
}

// Get fetches a job record by identifier. A missing record returns (nil, nil).
func (s *Store) Get(ctx context.Context, jobID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM jobs WHERE job_id = ?`, jobID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return record, nil
}

// Update persists every mutable field of the record and refreshes updated_at.
func (s *Store) Update(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("update job: nil record")
	}

	videosJSON, err := marshalJSONField(record.Videos)
	if err != nil {
		return fmt.Errorf("marshal videos: %w", err)
	}
	titlesJSON, err := marshalJSONField(record.ImprovedTitles)
	if err != nil {
		return fmt.Errorf("marshal improved titles: %w", err)
	}

	record.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE jobs SET
            channel = ?, email = ?, status = ?, channel_id = ?, channel_name = ?,
            videos_json = ?, improved_titles_json = ?, error_message = ?,
            delivery_id = ?, updated_at = ?, completed_at = ?
        WHERE job_id = ?`,
		record.Channel,
		record.Email,
		record.Status,
		record.ChannelID,
		record.ChannelName,
		videosJSON,
		titlesJSON,
		record.ErrorMessage,
		record.DeliveryID,
		record.UpdatedAt.Format(time.RFC3339Nano),
		nullableTimestamp(record.CompletedAt),
		record.JobID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// List returns records filtered by the provided statuses, newest first.
// With no statuses, every record is returned.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return records, nil
}

// Summary aggregates job counts per key lifecycle states.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("summarize jobs: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Total += count
		switch {
		case status == StatusQueued:
			summary.Queued += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		default:
			summary.Processing += count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate summary rows: %w", err)
	}
	return summary, nil
}

// Health reports diagnostic information about the jobs database.
func (s *Store) Health(ctx context.Context) DatabaseHealth {
	health := DatabaseHealth{DBPath: s.path}

	if _, err := os.Stat(s.path); err == nil {
		health.DatabaseExists = true
	} else if !os.IsNotExist(err) {
		health.Error = err.Error()
		return health
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		health.Error = err.Error()
		return health
	}
	health.DatabaseReadable = true
	health.SchemaVersion = fmt.Sprintf("%d", version)

	var tableExists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='jobs'",
	).Scan(&tableExists); err != nil {
		health.Error = err.Error()
		return health
	}
	health.TableExists = tableExists > 0

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health
	}
	health.IntegrityCheck = integrity == "ok"

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM jobs").Scan(&health.TotalJobs); err != nil {
		health.Error = err.Error()
	}
	return health
}

// Clear removes records, optionally restricted to completed ones, and returns
// the number deleted.
func (s *Store) Clear(ctx context.Context, completedOnly bool) (int64, error) {
	query := `DELETE FROM jobs`
	var args []any
	if completedOnly {
		query += ` WHERE status = ?`
		args = append(args, StatusCompleted)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record      Record
		videosJSON  string
		titlesJSON  string
		createdAt   string
		updatedAt   string
		completedAt sql.NullString
	)

	err := row.Scan(
		&record.JobID,
		&record.Channel,
		&record.Email,
		&record.Status,
		&record.ChannelID,
		&record.ChannelName,
		&videosJSON,
		&titlesJSON,
		&record.ErrorMessage,
		&record.DeliveryID,
		&createdAt,
		&updatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if videosJSON != "" {
		if err := json.Unmarshal([]byte(videosJSON), &record.Videos); err != nil {
			return nil, fmt.Errorf("unmarshal videos: %w", err)
		}
	}
	if titlesJSON != "" {
		if err := json.Unmarshal([]byte(titlesJSON), &record.ImprovedTitles); err != nil {
			return nil, fmt.Errorf("unmarshal improved titles: %w", err)
		}
	}

	if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if record.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if completedAt.Valid && completedAt.String != "" {
		parsed, parseErr := parseTimestamp(completedAt.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse completed_at: %w", parseErr)
		}
		record.CompletedAt = &parsed
	}

	return &record, nil
}

func marshalJSONField(value any) (string, error) {
	switch v := value.(type) {
	case []Video:
		if len(v) == 0 {
			return "", nil
		}
	case []ImprovedTitle:
		if len(v) == 0 {
			return "", nil
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
