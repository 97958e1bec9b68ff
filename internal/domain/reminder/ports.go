package reminder

import (
	"context"

	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/google/uuid"
)

// PermissionManager is the platform permission port. RequestPermission
// triggers the actual system prompt; the flow controller never calls it
// directly from RequestWithFlow, since the prompt is UI-mediated.
type PermissionManager interface {
	HasPermission(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (PermissionState, error)
	CanRequestPermission(ctx context.Context) (bool, error)
	OpenSettings(ctx context.Context) (bool, error)
}

// NotificationScheduler is the platform scheduling port. Implementations
// key by habit id and overwrite on re-schedule, so arming twice leaves
// exactly one reminder.
type NotificationScheduler interface {
	Schedule(ctx context.Context, config *NotificationConfig) error
	Cancel(ctx context.Context, habitID uuid.UUID) error
	Update(ctx context.Context, config *NotificationConfig) error
	CancelAll(ctx context.Context) error
	IsScheduled(ctx context.Context, habitID uuid.UUID) (bool, error)
}

// Settings exposes the user's global notification toggle.
type Settings interface {
	NotificationsEnabled(ctx context.Context) bool
}

// HabitSource is the read-only habit lookup the coordinator needs.
// The habits service satisfies it.
type HabitSource interface {
	GetHabit(ctx context.Context, id uuid.UUID) (*habits.Habit, error)
}
