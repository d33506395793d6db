// Package domain holds the extracurricular activity model and its signup rules.
package domain

import (
	"net/mail"
	"strings"

	apperrors "github.com/mergington/activities/internal/platform/errors"
)

// Activity is one extracurricular activity and its roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	// Participants holds student emails in signup order.
	Participants []string
}

// Validate checks the structural invariants of an activity.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return apperrors.New(apperrors.CodeActivityNameEmpty, "activity name is required")
	}
	if a.MaxParticipants <= 0 {
		return apperrors.New(apperrors.CodeActivityInvalidMax, "max participants must be greater than zero")
	}
	if len(a.Participants) > a.MaxParticipants {
		return apperrors.WithMetadata(apperrors.CodeActivityFull, "roster exceeds capacity", map[string]string{
			"Activity": a.Name,
		})
	}
	return nil
}

// SpotsLeft returns the remaining roster capacity, never negative.
func (a Activity) SpotsLeft() int {
	left := a.MaxParticipants - len(a.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// IsFull reports whether the roster is at capacity.
func (a Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// HasParticipant reports whether email is already on the roster.
// Email comparison is case-insensitive.
func (a Activity) HasParticipant(email string) bool {
	email = CanonicalEmail(email)
	for _, existing := range a.Participants {
		if CanonicalEmail(existing) == email {
			return true
		}
	}
	return false
}

// CanSignup checks the signup rules for email against this activity.
func (a Activity) CanSignup(email string) error {
	if a.HasParticipant(email) {
		return apperrors.WithMetadata(apperrors.CodeSignupDuplicate, "student is already signed up", map[string]string{
			"Activity": a.Name,
			"Email":    email,
		})
	}
	if a.IsFull() {
		return apperrors.WithMetadata(apperrors.CodeActivityFull, "activity is full", map[string]string{
			"Activity": a.Name,
		})
	}
	return nil
}

// CanUnregister checks the unregister rules for email against this activity.
func (a Activity) CanUnregister(email string) error {
	if !a.HasParticipant(email) {
		return apperrors.WithMetadata(apperrors.CodeSignupNotRegistered, "student is not signed up for this activity", map[string]string{
			"Activity": a.Name,
			"Email":    email,
		})
	}
	return nil
}

// ValidateEmail checks that email parses as a bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.New(apperrors.CodeSignupEmailEmpty, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.WithMetadata(apperrors.CodeSignupEmailInvalid, "email is not a valid address", map[string]string{
			"Email": email,
		})
	}
	return nil
}

// CanonicalEmail trims and lowercases an email for comparison and storage keys.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
