package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/models"
)

var (
	// ErrForbidden means the caller may not act on another identity's data.
	ErrForbidden = errors.New("forbidden")
	// ErrNotAuthorized means the caller is not the participant allowed to perform a transition.
	ErrNotAuthorized = errors.New("not authorized")
)

// AuthorizeSelfOrAdmin allows access to target's data for target itself and for admins.
func AuthorizeSelfOrAdmin(caller models.Principal, target uuid.UUID) error {
	if caller.UserID == target || caller.IsAdmin {
		return nil
	}
	return ErrForbidden
}

func RequireAdmin(caller models.Principal) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}
	return nil
}
