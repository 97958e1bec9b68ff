package platform

import (
	"context"
	"io"
	"testing"

	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLocalSchedulerOverwritesOnReschedule(t *testing.T) {
	ctx := context.Background()
	sched := NewLocalScheduler(quietLogger())
	habitID := uuid.New()

	cfg := &reminder.NotificationConfig{HabitID: habitID, Hour: 8, Minute: 0}
	require.NoError(t, sched.Schedule(ctx, cfg))

	cfg2 := &reminder.NotificationConfig{HabitID: habitID, Hour: 20, Minute: 30}
	require.NoError(t, sched.Schedule(ctx, cfg2))

	armed := sched.Armed()
	require.Len(t, armed, 1)
	assert.Equal(t, 20, armed[0].Hour)
	assert.Equal(t, 30, armed[0].Minute)

	ok, err := sched.IsScheduled(ctx, habitID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalSchedulerCancel(t *testing.T) {
	ctx := context.Background()
	sched := NewLocalScheduler(quietLogger())
	a, b := uuid.New(), uuid.New()

	require.NoError(t, sched.Schedule(ctx, &reminder.NotificationConfig{HabitID: a, Hour: 9}))
	require.NoError(t, sched.Schedule(ctx, &reminder.NotificationConfig{HabitID: b, Hour: 10}))

	require.NoError(t, sched.Cancel(ctx, a))
	ok, _ := sched.IsScheduled(ctx, a)
	assert.False(t, ok)
	ok, _ = sched.IsScheduled(ctx, b)
	assert.True(t, ok)

	// Cancelling something never armed is a no-op, not an error.
	require.NoError(t, sched.Cancel(ctx, uuid.New()))

	require.NoError(t, sched.CancelAll(ctx))
	assert.Empty(t, sched.Armed())
}

func TestPermissionGrantOnFirstAsk(t *testing.T) {
	ctx := context.Background()
	pm := NewSettingsPermissionManager(quietLogger())

	ok, err := pm.HasPermission(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	state, err := pm.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGranted, state)

	ok, err = pm.HasPermission(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermissionDenialEscalatesToPermanent(t *testing.T) {
	ctx := context.Background()
	pm := NewSettingsPermissionManager(quietLogger())
	pm.SetState(reminder.PermissionDeniedCanAskAgain)

	state, err := pm.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionDeniedCanAskAgain, state)

	state, err = pm.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionDeniedPermanently, state)

	canAsk, err := pm.CanRequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, canAsk)
}

func TestOpenSettingsResetsPermanentDenial(t *testing.T) {
	ctx := context.Background()
	pm := NewSettingsPermissionManager(quietLogger())
	pm.SetState(reminder.PermissionDeniedPermanently)

	opened, err := pm.OpenSettings(ctx)
	require.NoError(t, err)
	assert.True(t, opened)

	canAsk, err := pm.CanRequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, canAsk)
	assert.Equal(t, reminder.PermissionDeniedCanAskAgain, pm.State())
}

func TestGlobalToggleBlocksPermissionRequests(t *testing.T) {
	ctx := context.Background()
	pm := NewSettingsPermissionManager(quietLogger())
	pm.SetNotificationsEnabled(false)

	assert.False(t, pm.NotificationsEnabled(ctx))

	state, err := pm.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGloballyDisabled, state)
}
