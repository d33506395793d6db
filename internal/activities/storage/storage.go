// Package storage defines persistence contracts for activity rosters.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mergington/activities/internal/activities/domain"
)

var (
	// ErrNotFound indicates a requested activity record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrDuplicateParticipant indicates the email is already on the roster.
	ErrDuplicateParticipant = errors.New("participant already on roster")
	// ErrRosterFull indicates the roster is at capacity.
	ErrRosterFull = errors.New("roster is full")
	// ErrNotRegistered indicates the email is not on the roster.
	ErrNotRegistered = errors.New("participant not on roster")
)

// ActivityRecord stores one activity row without its roster.
type ActivityRecord struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store persists activities and their rosters.
//
// Roster mutations enforce uniqueness and capacity inside one transaction and
// report violations through the sentinel errors above.
type Store interface {
	CreateActivity(ctx context.Context, record ActivityRecord, participants []string) error
	GetActivity(ctx context.Context, name string) (domain.Activity, error)
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	CountActivities(ctx context.Context) (int, error)
	AddParticipant(ctx context.Context, activityName, email string) error
	RemoveParticipant(ctx context.Context, activityName, email string) error
	Close() error
}
