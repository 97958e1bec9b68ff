package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Coordinator orchestrates per-habit reminder scheduling: it gates on
// the global toggle, persists configuration before touching the
// platform scheduler, and keeps stored state consistent with what is
// armed.
type Coordinator interface {
	Enable(ctx context.Context, habitID uuid.UUID, at TimeOfDay, message string, period Period) (*NotificationConfig, error)
	Disable(ctx context.Context, habitID uuid.UUID) error
	UpdateTime(ctx context.Context, habitID uuid.UUID, at TimeOfDay) (*NotificationConfig, error)
	Get(ctx context.Context, habitID uuid.UUID) (*NotificationConfig, error)
	Weekdays(ctx context.Context, habitID uuid.UUID, weekStart time.Weekday) (map[time.Weekday]bool, error)
	SyncAll(ctx context.Context) (int, error)
	CancelAll(ctx context.Context) error
	DueOn(ctx context.Context, date time.Time) ([]NotificationConfig, error)
}

type coordinator struct {
	repo      ConfigRepository
	scheduler NotificationScheduler
	settings  Settings
	habitSrc  HabitSource
	logger    *zap.Logger

	// Per-habit serialization: concurrent enable/disable for the same
	// habit id are last-writer-wins on the stored config, with the
	// scheduler call reflecting whichever config was persisted last.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewCoordinator(repo ConfigRepository, scheduler NotificationScheduler, settings Settings, habitSrc HabitSource, logger *zap.Logger) Coordinator {
	return &coordinator{
		repo:      repo,
		scheduler: scheduler,
		settings:  settings,
		habitSrc:  habitSrc,
		logger:    logger,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (c *coordinator) habitLock(habitID uuid.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[habitID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[habitID] = lock
	}
	return lock
}

// Enable builds and persists the config, then arms the platform
// scheduler. Persistence comes first so a restart can always
// resynchronize even if the platform call fails.
func (c *coordinator) Enable(ctx context.Context, habitID uuid.UUID, at TimeOfDay, message string, period Period) (*NotificationConfig, error) {
	if !c.settings.NotificationsEnabled(ctx) {
		return nil, ErrNotificationsDisabled
	}
	if err := at.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reminder time: %w", err)
	}
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reminder period: %w", err)
	}

	habit, err := c.habitSrc.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}

	lock := c.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	if message == "" {
		message = fmt.Sprintf("Time for %s", habit.Title)
	}

	config := &NotificationConfig{
		HabitID:   habitID,
		Hour:      at.Hour,
		Minute:    at.Minute,
		Enabled:   true,
		Message:   message,
		Sound:     true,
		Vibration: true,
	}
	config.SetPeriod(period)

	if err := c.repo.Save(ctx, config); err != nil {
		return nil, err
	}

	if err := c.scheduler.Schedule(ctx, config); err != nil {
		c.logger.Error("platform scheduler rejected reminder",
			zap.String("habit_id", habitID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}

	c.logger.Info("reminder enabled",
		zap.String("habit_id", habitID.String()),
		zap.String("time", at.String()))

	return config, nil
}

func (c *coordinator) Disable(ctx context.Context, habitID uuid.UUID) error {
	lock := c.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.repo.SetEnabled(ctx, habitID, false); err != nil {
		return err
	}

	if err := c.scheduler.Cancel(ctx, habitID); err != nil {
		c.logger.Error("platform cancel failed",
			zap.String("habit_id", habitID.String()),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}

	c.logger.Info("reminder disabled", zap.String("habit_id", habitID.String()))
	return nil
}

// UpdateTime rewrites the stored time. The platform scheduler is
// touched only when the config is enabled; disabled configs are updated
// silently.
func (c *coordinator) UpdateTime(ctx context.Context, habitID uuid.UUID, at TimeOfDay) (*NotificationConfig, error) {
	if err := at.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reminder time: %w", err)
	}

	lock := c.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	config, err := c.repo.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}

	config.Hour = at.Hour
	config.Minute = at.Minute
	if err := c.repo.Save(ctx, config); err != nil {
		return nil, err
	}

	if config.Enabled {
		if err := c.scheduler.Update(ctx, config); err != nil {
			c.logger.Error("platform update failed",
				zap.String("habit_id", habitID.String()),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
		}
	}

	return config, nil
}

func (c *coordinator) Get(ctx context.Context, habitID uuid.UUID) (*NotificationConfig, error) {
	return c.repo.Get(ctx, habitID)
}

// Weekdays reports which weekdays the habit's reminder fires on, sampled
// over the current week beginning at the most recent weekStart.
func (c *coordinator) Weekdays(ctx context.Context, habitID uuid.UUID, weekStart time.Weekday) (map[time.Weekday]bool, error) {
	config, err := c.repo.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}
	habit, err := c.habitSrc.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}

	start := habits.DateOf(time.Now().UTC())
	for start.Weekday() != weekStart {
		start = start.AddDate(0, 0, -1)
	}
	return NotificationWeekdays(config.Period(), habit.Recurrence, habit.AnchorDate(), start), nil
}

// SyncAll re-arms every enabled config, the idempotent recovery path
// after a process restart. Disabled configs are left untouched.
func (c *coordinator) SyncAll(ctx context.Context) (int, error) {
	configs, err := c.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	armed := 0
	for i := range configs {
		config := &configs[i]
		if !config.Enabled {
			continue
		}
		if err := c.scheduler.Schedule(ctx, config); err != nil {
			c.logger.Error("resync failed for reminder",
				zap.String("habit_id", config.HabitID.String()),
				zap.Error(err))
			continue
		}
		armed++
	}

	c.logger.Info("reminder resync complete",
		zap.Int("armed", armed),
		zap.Int("total", len(configs)))

	return armed, nil
}

// CancelAll cancels at the platform layer first, then bulk-disables the
// stored configs. Ordered so a crash mid-operation leaves configs
// consistent with "probably still scheduled" rather than orphaning live
// platform timers.
func (c *coordinator) CancelAll(ctx context.Context) error {
	if err := c.scheduler.CancelAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}
	return c.repo.DisableAll(ctx)
}

// DueOn returns the enabled configs whose period policy fires on the
// given date. Habits that disappeared are skipped, not fatal.
func (c *coordinator) DueOn(ctx context.Context, date time.Time) ([]NotificationConfig, error) {
	configs, err := c.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var due []NotificationConfig
	for _, config := range configs {
		if !config.Enabled {
			continue
		}
		habit, err := c.habitSrc.GetHabit(ctx, config.HabitID)
		if err != nil {
			if errors.Is(err, habits.ErrHabitNotFound) {
				continue
			}
			return nil, err
		}
		if habit.Archived {
			continue
		}
		if ShouldNotify(config.Period(), date, habit.Recurrence, habit.AnchorDate()) {
			due = append(due, config)
		}
	}
	return due, nil
}
