package scheduler

import (
	"context"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/events"
	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/cctncr/habitstreak/internal/infrastructure/cache"
	"github.com/cctncr/habitstreak/pkg/logger"
	"go.uber.org/zap"
)

// Dispatcher drives the daily reminder cycle: it re-arms persisted
// reminders at startup and evaluates due reminders at the configured
// dispatch hours.
type Dispatcher struct {
	coordinator   reminder.Coordinator
	redis         *cache.RedisClient
	dispatchHours []int
	logger        *logger.Logger
	stop          chan struct{}
}

func NewDispatcher(coordinator reminder.Coordinator, redis *cache.RedisClient, dispatchHours []int, logger *logger.Logger) *Dispatcher {
	if len(dispatchHours) == 0 {
		dispatchHours = []int{8, 12, 18, 21}
	}
	return &Dispatcher{
		coordinator:   coordinator,
		redis:         redis,
		dispatchHours: dispatchHours,
		logger:        logger,
		stop:          make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	ctx := context.Background()

	// Re-arm whatever was enabled before the last shutdown.
	armed, err := d.coordinator.SyncAll(ctx)
	if err != nil {
		d.logger.Error("Failed to sync reminders at startup", zap.Error(err))
	} else {
		d.logger.Info("Reminder sync complete", zap.Int("armed", armed))
	}

	d.logger.Info("Reminder dispatcher initialized",
		zap.Ints("dispatch_hours", d.dispatchHours),
	)

	go d.run()
}

func (d *Dispatcher) Stop() {
	close(d.stop)
}

func (d *Dispatcher) run() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case now := <-ticker.C:
			// New day: re-arm from storage so the due set reflects
			// overnight config changes before any dispatch hour hits.
			if now.Hour() == 0 {
				if armed, err := d.coordinator.SyncAll(context.Background()); err != nil {
					d.logger.Error("Midnight reminder sync failed", zap.Error(err))
				} else {
					d.logger.Info("Midnight reminder sync complete", zap.Int("armed", armed))
				}
			}
			for _, hour := range d.dispatchHours {
				if now.Hour() == hour {
					d.dispatchDue(now)
					break
				}
			}
		}
	}
}

// dispatchDue evaluates which reminders fire on the given day and
// publishes a dispatch event for each. The platform scheduler owns
// actual delivery; this loop exists so listeners (dashboards, logs)
// see what went out.
func (d *Dispatcher) dispatchDue(now time.Time) {
	ctx := context.Background()
	startTime := time.Now()

	configs, err := d.coordinator.DueOn(ctx, habits.DateOf(now))
	if err != nil {
		d.logger.Error("Failed to resolve due reminders", zap.Error(err))
		return
	}

	for _, cfg := range configs {
		d.publishDispatched(ctx, cfg)
	}

	d.logger.Info("Reminder dispatch cycle complete",
		zap.Int("due_count", len(configs)),
		zap.Duration("duration", time.Since(startTime)),
	)
}

func (d *Dispatcher) publishDispatched(ctx context.Context, cfg reminder.NotificationConfig) {
	if d.redis == nil {
		return
	}
	event := &events.HabitEvent{
		EventType: events.EventReminderDispatched,
		HabitID:   cfg.HabitID,
		Timestamp: time.Now().UTC(),
		Details: map[string]interface{}{
			"time":    cfg.Time().String(),
			"message": cfg.Message,
		},
	}
	if err := d.redis.PublishHabitEvent(ctx, event); err != nil {
		d.logger.Warn("Failed to publish reminder dispatch event",
			zap.String("habit_id", cfg.HabitID.String()),
			zap.Error(err),
		)
	}
}
