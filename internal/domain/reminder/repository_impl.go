package reminder

import (
	"context"
	"errors"
	"strings"

	"github.com/cctncr/habitstreak/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postgresRepository implements ConfigRepository for PostgreSQL
type postgresRepository struct {
	db     *connection.Database
	logger *logrus.Logger
}

// NewConfigRepository creates a new PostgreSQL reminder config repository
func NewConfigRepository(db *connection.Database, logger *logrus.Logger) ConfigRepository {
	return &postgresRepository{
		db:     db,
		logger: logger,
	}
}

// withRecovery executes the given function with database error recovery
func (r *postgresRepository) withRecovery(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	db := r.db.WithContext(ctx)

	err := fn(db)
	if err != nil {
		r.logger.WithError(err).WithField("operation", operation).Error("Database operation failed")

		if isConnectionError(err) {
			r.logger.WithField("operation", operation).Warn("Database connection error, attempting reconnection")

			if reconnectErr := r.db.Reconnect(); reconnectErr != nil {
				r.logger.WithError(reconnectErr).Error("Failed to reconnect to database")
				return err
			}

			r.logger.WithField("operation", operation).Info("Reconnection successful, retrying operation")
			db = r.db.WithContext(ctx)
			if retryErr := fn(db); retryErr != nil {
				r.logger.WithError(retryErr).Error("Operation failed after reconnection")
				return retryErr
			}
			return nil
		}

		return err
	}

	return nil
}

func isConnectionError(err error) bool {
	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"bad connection",
		"connection reset by peer",
		"broken pipe",
		"connection closed",
		"driver: bad connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// Save upserts: one config per habit
func (r *postgresRepository) Save(ctx context.Context, config *NotificationConfig) error {
	return r.withRecovery(ctx, "Save", func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "habit_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"hour", "minute", "enabled", "message",
				"period_kind", "period_days", "sound", "vibration", "updated_at",
			}),
		}).Create(config).Error
	})
}

func (r *postgresRepository) Get(ctx context.Context, habitID uuid.UUID) (*NotificationConfig, error) {
	var config NotificationConfig

	err := r.withRecovery(ctx, "Get", func(tx *gorm.DB) error {
		return tx.First(&config, "habit_id = ?", habitID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	return &config, nil
}

func (r *postgresRepository) GetAll(ctx context.Context) ([]NotificationConfig, error) {
	var configs []NotificationConfig

	err := r.withRecovery(ctx, "GetAll", func(tx *gorm.DB) error {
		return tx.Order("created_at ASC").Find(&configs).Error
	})
	if err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *postgresRepository) Delete(ctx context.Context, habitID uuid.UUID) error {
	return r.withRecovery(ctx, "Delete", func(tx *gorm.DB) error {
		return tx.Delete(&NotificationConfig{}, "habit_id = ?", habitID).Error
	})
}

func (r *postgresRepository) SetEnabled(ctx context.Context, habitID uuid.UUID, enabled bool) error {
	return r.withRecovery(ctx, "SetEnabled", func(tx *gorm.DB) error {
		result := tx.Model(&NotificationConfig{}).
			Where("habit_id = ?", habitID).
			Update("enabled", enabled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConfigNotFound
		}
		return nil
	})
}

func (r *postgresRepository) DisableAll(ctx context.Context) error {
	return r.withRecovery(ctx, "DisableAll", func(tx *gorm.DB) error {
		return tx.Model(&NotificationConfig{}).
			Where("enabled = ?", true).
			Update("enabled", false).Error
	})
}
