// Package service implements activity signup operations on top of storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mergington/activities/internal/activities/domain"
	"github.com/mergington/activities/internal/activities/storage"
	apperrors "github.com/mergington/activities/internal/platform/errors"
)

const tracerName = "github.com/mergington/activities/internal/activities/service"

// Service exposes the signup operations shared by the API, web, and CLI surfaces.
type Service struct {
	store  storage.Store
	tracer trace.Tracer
}

// New creates a Service backed by the provided store.
func New(store storage.Store) *Service {
	return &Service{
		store:  store,
		tracer: otel.Tracer(tracerName),
	}
}

// Snapshot returns every activity with its roster.
// Renders always derive from a fresh snapshot; the service holds no state.
func (s *Service) Snapshot(ctx context.Context) ([]domain.Activity, error) {
	ctx, span := s.span(ctx, "activities.snapshot")
	defer span.End()

	if s == nil || s.store == nil {
		return nil, errors.New("service is not configured")
	}
	activities, err := s.store.ListActivities(ctx)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("list activities: %w", err))
	}
	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return activities, nil
}

// Get returns one activity with its roster.
func (s *Service) Get(ctx context.Context, name string) (domain.Activity, error) {
	ctx, span := s.span(ctx, "activities.get", attribute.String("activity.name", name))
	defer span.End()

	if s == nil || s.store == nil {
		return domain.Activity{}, errors.New("service is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Activity{}, s.fail(span, apperrors.New(apperrors.CodeActivityNameEmpty, "activity name is required"))
	}
	activity, err := s.store.GetActivity(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Activity{}, s.fail(span, notFound(name))
		}
		return domain.Activity{}, s.fail(span, fmt.Errorf("get activity: %w", err))
	}
	return activity, nil
}

// Signup adds email to the activity roster.
func (s *Service) Signup(ctx context.Context, activityName, email string) error {
	ctx, span := s.span(ctx, "activities.signup", attribute.String("activity.name", activityName))
	defer span.End()

	if s == nil || s.store == nil {
		return errors.New("service is not configured")
	}
	activityName = strings.TrimSpace(activityName)
	if activityName == "" {
		return s.fail(span, apperrors.New(apperrors.CodeActivityNameEmpty, "activity name is required"))
	}
	if err := domain.ValidateEmail(strings.TrimSpace(email)); err != nil {
		return s.fail(span, err)
	}

	err := s.store.AddParticipant(ctx, activityName, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return s.fail(span, notFound(activityName))
	case errors.Is(err, storage.ErrDuplicateParticipant):
		return s.fail(span, apperrors.WithMetadata(apperrors.CodeSignupDuplicate, "student is already signed up", map[string]string{
			"Activity": activityName,
			"Email":    email,
		}))
	case errors.Is(err, storage.ErrRosterFull):
		return s.fail(span, apperrors.WithMetadata(apperrors.CodeActivityFull, "activity is full", map[string]string{
			"Activity": activityName,
		}))
	default:
		return s.fail(span, fmt.Errorf("signup: %w", err))
	}
}

// Unregister removes email from the activity roster.
func (s *Service) Unregister(ctx context.Context, activityName, email string) error {
	ctx, span := s.span(ctx, "activities.unregister", attribute.String("activity.name", activityName))
	defer span.End()

	if s == nil || s.store == nil {
		return errors.New("service is not configured")
	}
	activityName = strings.TrimSpace(activityName)
	if activityName == "" {
		return s.fail(span, apperrors.New(apperrors.CodeActivityNameEmpty, "activity name is required"))
	}
	if err := domain.ValidateEmail(strings.TrimSpace(email)); err != nil {
		return s.fail(span, err)
	}

	err := s.store.RemoveParticipant(ctx, activityName, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return s.fail(span, notFound(activityName))
	case errors.Is(err, storage.ErrNotRegistered):
		return s.fail(span, apperrors.WithMetadata(apperrors.CodeSignupNotRegistered, "student is not signed up for this activity", map[string]string{
			"Activity": activityName,
			"Email":    email,
		}))
	default:
		return s.fail(span, fmt.Errorf("unregister: %w", err))
	}
}

func (s *Service) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func notFound(activityName string) error {
	return apperrors.WithMetadata(apperrors.CodeActivityNotFound, "activity not found", map[string]string{
		"Activity": activityName,
	})
}
