package services

import "errors"

var (
	// User / auth
	ErrUsernameOrEmailTaken = errors.New("username and email already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidUser          = errors.New("invalid user")
	ErrInvalidToken         = errors.New("invalid or expired refresh token")

	// Social
	ErrFriendAlreadySent    = errors.New("friend request already sent")
	ErrFriendAlreadyFriends = errors.New("already friends")
	ErrFriendInvalidTarget  = errors.New("invalid friend target")
	ErrFriendGeneral        = errors.New("friend operation failed")
	ErrRequestNotPending    = errors.New("request is no longer pending")

	// Shared
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")

	// Missions
	ErrMissionAlreadyCompleted = errors.New("mission already completed today")
	ErrGlobalMissionReadOnly   = errors.New("global missions cannot be edited or deleted")

	// Moderation
	ErrAlreadyBlocked = errors.New("user already blocked")
	ErrSelfBlock      = errors.New("cannot block yourself")
)

// DetailedError attaches a human readable message to one of the sentinel
// errors above. errors.Is matches the sentinel.
type DetailedError struct {
	Kind    error
	Message string
}

func (e *DetailedError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *DetailedError) Unwrap() error {
	return e.Kind
}

func Detailed(kind error, message string) error {
	return &DetailedError{Kind: kind, Message: message}
}
