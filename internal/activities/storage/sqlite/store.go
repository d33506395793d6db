// Package sqlite provides a SQLite-backed activity storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mergington/activities/internal/activities/domain"
	"github.com/mergington/activities/internal/activities/storage"
	"github.com/mergington/activities/internal/activities/storage/sqlite/migrations"
	sqlitemigrate "github.com/mergington/activities/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists activity state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite activity store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateActivity inserts one activity with an optional initial roster.
func (s *Store) CreateActivity(ctx context.Context, record storage.ActivityRecord, participants []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name := strings.TrimSpace(record.Name)
	if name == "" {
		return fmt.Errorf("activity name is required")
	}
	if record.MaxParticipants <= 0 {
		return fmt.Errorf("max participants must be greater than zero")
	}
	if len(participants) > record.MaxParticipants {
		return fmt.Errorf("initial roster exceeds capacity")
	}
	createdAt := record.CreatedAt.UTC()
	updatedAt := record.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create activity: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO activities (name, description, schedule, max_participants, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name,
		strings.TrimSpace(record.Description),
		strings.TrimSpace(record.Schedule),
		record.MaxParticipants,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create activity: %w", err)
	}

	for position, email := range participants {
		email = domain.CanonicalEmail(email)
		if email == "" {
			continue
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO participants (activity_name, email, position, created_at) VALUES (?, ?, ?, ?)`,
			name,
			email,
			position,
			toMillis(createdAt),
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateParticipant
			}
			return fmt.Errorf("create roster entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create activity: %w", err)
	}
	return nil
}

// GetActivity returns one activity with its roster in signup order.
func (s *Store) GetActivity(ctx context.Context, name string) (domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Activity{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Activity{}, fmt.Errorf("activity name is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT name, description, schedule, max_participants FROM activities WHERE name = ?`,
		name,
	)

	var activity domain.Activity
	if err := row.Scan(&activity.Name, &activity.Description, &activity.Schedule, &activity.MaxParticipants); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Activity{}, storage.ErrNotFound
		}
		return domain.Activity{}, fmt.Errorf("get activity: %w", err)
	}

	roster, err := s.roster(ctx, activity.Name)
	if err != nil {
		return domain.Activity{}, err
	}
	activity.Participants = roster
	return activity, nil
}

// ListActivities returns all activities with rosters, ordered by name.
func (s *Store) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, description, schedule, max_participants FROM activities ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.Name, &activity.Description, &activity.Schedule, &activity.MaxParticipants); err != nil {
			return nil, fmt.Errorf("list activities: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	rosters, err := s.allRosters(ctx)
	if err != nil {
		return nil, err
	}
	for idx := range activities {
		activities[idx].Participants = rosters[activities[idx].Name]
	}
	return activities, nil
}

// CountActivities returns the number of stored activities.
func (s *Store) CountActivities(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return count, nil
}

// AddParticipant appends email to the roster inside one transaction.
// Capacity and uniqueness are checked against the locked roster state.
// Duplicates are rejected before capacity, so re-signing up on a full
// roster reports the duplicate rather than the full roster.
func (s *Store) AddParticipant(ctx context.Context, activityName, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	activityName = strings.TrimSpace(activityName)
	email = domain.CanonicalEmail(email)
	if activityName == "" {
		return fmt.Errorf("activity name is required")
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin signup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxParticipants int
	row := tx.QueryRowContext(ctx, `SELECT max_participants FROM activities WHERE name = ?`, activityName)
	if err := row.Scan(&maxParticipants); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("load activity: %w", err)
	}

	var onRoster int
	row = tx.QueryRowContext(
		ctx,
		`SELECT 1 FROM participants WHERE activity_name = ? AND email = ?`,
		activityName,
		email,
	)
	if err := row.Scan(&onRoster); err == nil {
		return storage.ErrDuplicateParticipant
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check roster: %w", err)
	}

	var rosterSize int
	var nextPosition int
	row = tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(MAX(position), -1) + 1 FROM participants WHERE activity_name = ?`,
		activityName,
	)
	if err := row.Scan(&rosterSize, &nextPosition); err != nil {
		return fmt.Errorf("count roster: %w", err)
	}
	if rosterSize >= maxParticipants {
		return storage.ErrRosterFull
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO participants (activity_name, email, position, created_at) VALUES (?, ?, ?, ?)`,
		activityName,
		email,
		nextPosition,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateParticipant
		}
		return fmt.Errorf("add participant: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE activities SET updated_at = ? WHERE name = ?`,
		time.Now().UTC().UnixMilli(),
		activityName,
	); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit signup: %w", err)
	}
	return nil
}

// RemoveParticipant deletes email from the roster inside one transaction.
func (s *Store) RemoveParticipant(ctx context.Context, activityName, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	activityName = strings.TrimSpace(activityName)
	email = domain.CanonicalEmail(email)
	if activityName == "" {
		return fmt.Errorf("activity name is required")
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unregister: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	row := tx.QueryRowContext(ctx, `SELECT 1 FROM activities WHERE name = ?`, activityName)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("load activity: %w", err)
	}

	result, err := tx.ExecContext(
		ctx,
		`DELETE FROM participants WHERE activity_name = ? AND email = ?`,
		activityName,
		email,
	)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotRegistered
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE activities SET updated_at = ? WHERE name = ?`,
		time.Now().UTC().UnixMilli(),
		activityName,
	); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unregister: %w", err)
	}
	return nil
}

func (s *Store) roster(ctx context.Context, activityName string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT email FROM participants WHERE activity_name = ? ORDER BY position ASC`,
		activityName,
	)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()

	var roster []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("load roster: %w", err)
		}
		roster = append(roster, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

func (s *Store) allRosters(ctx context.Context) (map[string][]string, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT activity_name, email FROM participants ORDER BY activity_name ASC, position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}
	defer rows.Close()

	rosters := make(map[string][]string)
	for rows.Next() {
		var activityName string
		var email string
		if err := rows.Scan(&activityName, &email); err != nil {
			return nil, fmt.Errorf("load rosters: %w", err)
		}
		rosters[activityName] = append(rosters[activityName], email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}
	return rosters, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
