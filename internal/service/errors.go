package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package that is not an internal
// failure wraps exactly one of them; handlers map kinds to status codes.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
)

var (
	ErrTripNotFound        = fmt.Errorf("trip %w", ErrNotFound)
	ErrCompanionNotFound   = fmt.Errorf("companion %w", ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("application %w", ErrNotFound)
	ErrChatRoomNotFound    = fmt.Errorf("chat room %w", ErrNotFound)

	ErrNotTripOwner      = fmt.Errorf("%w: only the trip owner may do this", ErrForbidden)
	ErrNotCompanionOwner = fmt.Errorf("%w: only the listing owner may do this", ErrForbidden)

	ErrSelfApplication    = fmt.Errorf("%w: cannot apply to your own listing", ErrConflict)
	ErrNotRecruiting      = fmt.Errorf("%w: listing is not recruiting", ErrConflict)
	ErrAlreadyApplied     = fmt.Errorf("%w: already applied to this listing", ErrConflict)
	ErrCompanionFull      = fmt.Errorf("%w: listing has no open slot", ErrConflict)
	ErrApplicationDecided = fmt.Errorf("%w: application already decided", ErrConflict)
	ErrRoomExists         = fmt.Errorf("%w: chat room already provisioned", ErrConflict)

	ErrTripHasRecruitingCompanions = fmt.Errorf("%w: trip still has a recruiting companion listing", ErrInvalidState)
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
