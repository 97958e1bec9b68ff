package reminder

import (
	"errors"
	"fmt"
)

// Expected policy rejections and failures. All recoverable: callers map
// them to actionable responses, never crashes.
var (
	// ErrConfigNotFound is returned when no reminder config exists for a habit
	ErrConfigNotFound = errors.New("reminder config not found")
	// ErrNotificationsDisabled is returned when the global notification toggle is off
	ErrNotificationsDisabled = errors.New("notifications are disabled")
	// ErrGloballyDisabled is returned when notifications are disabled at the platform level
	ErrGloballyDisabled = errors.New("notifications globally disabled")
	// ErrSchedulingFailed is returned when the platform scheduler rejected a call
	ErrSchedulingFailed = errors.New("scheduling failed")
)

// PermissionDeniedError carries whether the denial can still be retried
// through the system prompt.
type PermissionDeniedError struct {
	CanRetry bool
}

func (e *PermissionDeniedError) Error() string {
	if e.CanRetry {
		return "notification permission denied, can ask again"
	}
	return "notification permission denied permanently"
}

// GeneralError wraps genuinely unexpected platform failures so they are
// surfaced instead of silently swallowed.
type GeneralError struct {
	Cause error
}

func (e *GeneralError) Error() string {
	return fmt.Sprintf("reminder: unexpected error: %v", e.Cause)
}

func (e *GeneralError) Unwrap() error {
	return e.Cause
}
