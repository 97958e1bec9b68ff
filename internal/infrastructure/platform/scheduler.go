package platform

import (
	"context"
	"sync"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	remindersArmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitstreak_reminders_armed_total",
		Help: "Total number of reminders armed on the local scheduler",
	})
	remindersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitstreak_reminders_cancelled_total",
		Help: "Total number of reminders cancelled on the local scheduler",
	})
)

// ArmedReminder is one scheduled entry on the local scheduler.
type ArmedReminder struct {
	HabitID uuid.UUID
	Hour    int
	Minute  int
	Message string
	Sound   bool
	ArmedAt time.Time
}

// LocalScheduler is the single-process implementation of the
// notification scheduling port. Entries are keyed by habit id and
// overwritten on re-schedule, so arming twice leaves exactly one
// reminder. State is in-memory only; the coordinator's SyncAll restores
// it after a restart.
type LocalScheduler struct {
	mu     sync.Mutex
	armed  map[uuid.UUID]ArmedReminder
	logger *logrus.Logger
}

func NewLocalScheduler(logger *logrus.Logger) *LocalScheduler {
	return &LocalScheduler{
		armed:  make(map[uuid.UUID]ArmedReminder),
		logger: logger,
	}
}

func (s *LocalScheduler) Schedule(ctx context.Context, config *reminder.NotificationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armed[config.HabitID] = ArmedReminder{
		HabitID: config.HabitID,
		Hour:    config.Hour,
		Minute:  config.Minute,
		Message: config.Message,
		Sound:   config.Sound,
		ArmedAt: time.Now().UTC(),
	}
	remindersArmed.Inc()

	s.logger.WithFields(logrus.Fields{
		"habit_id": config.HabitID,
		"time":     config.Time().String(),
	}).Info("Reminder armed")

	return nil
}

func (s *LocalScheduler) Cancel(ctx context.Context, habitID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.armed[habitID]; ok {
		delete(s.armed, habitID)
		remindersCancelled.Inc()
		s.logger.WithField("habit_id", habitID).Info("Reminder cancelled")
	}
	return nil
}

func (s *LocalScheduler) Update(ctx context.Context, config *reminder.NotificationConfig) error {
	// Same as Schedule: keyed by habit id, overwrite semantics.
	return s.Schedule(ctx, config)
}

func (s *LocalScheduler) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.armed)
	s.armed = make(map[uuid.UUID]ArmedReminder)
	remindersCancelled.Add(float64(n))

	s.logger.WithField("count", n).Info("All reminders cancelled")
	return nil
}

func (s *LocalScheduler) IsScheduled(ctx context.Context, habitID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[habitID]
	return ok, nil
}

// Armed returns a snapshot of the currently armed reminders.
func (s *LocalScheduler) Armed() []ArmedReminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ArmedReminder, 0, len(s.armed))
	for _, r := range s.armed {
		out = append(out, r)
	}
	return out
}
