package reminder

import (
	"context"

	"github.com/google/uuid"
)

// ConfigRepository defines the interface for reminder config persistence
type ConfigRepository interface {
	// Save upserts the config for its habit
	Save(ctx context.Context, config *NotificationConfig) error

	// Get returns the config for a habit, ErrConfigNotFound if absent
	Get(ctx context.Context, habitID uuid.UUID) (*NotificationConfig, error)

	GetAll(ctx context.Context) ([]NotificationConfig, error)

	Delete(ctx context.Context, habitID uuid.UUID) error

	SetEnabled(ctx context.Context, habitID uuid.UUID, enabled bool) error

	DisableAll(ctx context.Context) error
}
