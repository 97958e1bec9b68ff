package main

import (
	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/cctncr/habitstreak/internal/infrastructure/persistence/postgres/connection"
	"github.com/cctncr/habitstreak/internal/infrastructure/platform"
	"github.com/cctncr/habitstreak/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ReminderSystem holds the assembled reminder components.
type ReminderSystem struct {
	Coordinator reminder.Coordinator
	Flow        *reminder.FlowController
	Scheduler   *platform.LocalScheduler
	Permissions *platform.SettingsPermissionManager
	Logger      *logrus.Logger
}

// SetupReminderSystem wires the reminder coordinator, the permission
// flow controller, and the platform adapters behind them.
func SetupReminderSystem(
	db *connection.Database,
	habitService habits.Service,
	appLogger *logger.Logger,
	isDevelopment bool,
) (*ReminderSystem, error) {
	reminderLogger := logrus.New()
	reminderLogger.SetFormatter(&logrus.JSONFormatter{})
	if isDevelopment {
		reminderLogger.SetLevel(logrus.DebugLevel)
	} else {
		reminderLogger.SetLevel(logrus.InfoLevel)
	}

	repo := reminder.NewConfigRepository(db, reminderLogger)
	sched := platform.NewLocalScheduler(reminderLogger)
	permissions := platform.NewSettingsPermissionManager(reminderLogger)

	coordinator := reminder.NewCoordinator(repo, sched, permissions, habitService, appLogger.Logger)
	flow := reminder.NewFlowController(permissions, reminder.NewPermissionCache(), appLogger.Logger)

	appLogger.Info("Reminder system initialized")

	return &ReminderSystem{
		Coordinator: coordinator,
		Flow:        flow,
		Scheduler:   sched,
		Permissions: permissions,
		Logger:      reminderLogger,
	}, nil
}
