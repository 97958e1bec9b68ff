package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// In-memory config repository for testing
type memoryConfigRepo struct {
	mu      sync.Mutex
	configs map[uuid.UUID]*NotificationConfig
}

func newMemoryConfigRepo() *memoryConfigRepo {
	return &memoryConfigRepo{configs: make(map[uuid.UUID]*NotificationConfig)}
}

func (m *memoryConfigRepo) Save(ctx context.Context, config *NotificationConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *config
	m.configs[config.HabitID] = &copied
	return nil
}

func (m *memoryConfigRepo) Get(ctx context.Context, habitID uuid.UUID) (*NotificationConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[habitID]
	if !ok {
		return nil, ErrConfigNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memoryConfigRepo) GetAll(ctx context.Context) ([]NotificationConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []NotificationConfig
	for _, c := range m.configs {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memoryConfigRepo) Delete(ctx context.Context, habitID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, habitID)
	return nil
}

func (m *memoryConfigRepo) SetEnabled(ctx context.Context, habitID uuid.UUID, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[habitID]
	if !ok {
		return ErrConfigNotFound
	}
	c.Enabled = enabled
	return nil
}

func (m *memoryConfigRepo) DisableAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.configs {
		c.Enabled = false
	}
	return nil
}

// Mock platform scheduler, keyed by habit id with overwrite semantics
type mockScheduler struct {
	mu            sync.Mutex
	armed         map[uuid.UUID]NotificationConfig
	scheduleCalls int
	cancelCalls   int
	failSchedule  error
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{armed: make(map[uuid.UUID]NotificationConfig)}
}

func (m *mockScheduler) Schedule(ctx context.Context, config *NotificationConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleCalls++
	if m.failSchedule != nil {
		return m.failSchedule
	}
	m.armed[config.HabitID] = *config
	return nil
}

func (m *mockScheduler) Cancel(ctx context.Context, habitID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	delete(m.armed, habitID)
	return nil
}

func (m *mockScheduler) Update(ctx context.Context, config *NotificationConfig) error {
	return m.Schedule(ctx, config)
}

func (m *mockScheduler) CancelAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = make(map[uuid.UUID]NotificationConfig)
	return nil
}

func (m *mockScheduler) IsScheduled(ctx context.Context, habitID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.armed[habitID]
	return ok, nil
}

type mockSettings struct {
	enabled bool
}

func (m *mockSettings) NotificationsEnabled(ctx context.Context) bool { return m.enabled }

type mockHabitSource struct {
	habits map[uuid.UUID]*habits.Habit
}

func (m *mockHabitSource) GetHabit(ctx context.Context, id uuid.UUID) (*habits.Habit, error) {
	h, ok := m.habits[id]
	if !ok {
		return nil, habits.ErrHabitNotFound
	}
	return h, nil
}

type coordinatorFixture struct {
	coordinator Coordinator
	repo        *memoryConfigRepo
	scheduler   *mockScheduler
	settings    *mockSettings
	source      *mockHabitSource
}

func newCoordinatorFixture() *coordinatorFixture {
	repo := newMemoryConfigRepo()
	scheduler := newMockScheduler()
	settings := &mockSettings{enabled: true}
	source := &mockHabitSource{habits: make(map[uuid.UUID]*habits.Habit)}
	return &coordinatorFixture{
		coordinator: NewCoordinator(repo, scheduler, settings, source, zap.NewNop()),
		repo:        repo,
		scheduler:   scheduler,
		settings:    settings,
		source:      source,
	}
}

func (f *coordinatorFixture) addHabit(rule habits.RecurrenceRule, created time.Time) *habits.Habit {
	h := &habits.Habit{
		ID:         uuid.New(),
		Title:      "test habit",
		Recurrence: rule,
		CreatedAt:  created,
	}
	f.source.habits[h.ID] = h
	return h
}

func TestEnableIdempotent(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))
	at := TimeOfDay{Hour: 8, Minute: 30}

	_, err := f.coordinator.Enable(context.Background(), h.ID, at, "", ActiveDaysOnly())
	require.NoError(t, err)
	_, err = f.coordinator.Enable(context.Background(), h.ID, at, "", ActiveDaysOnly())
	require.NoError(t, err)

	assert.Len(t, f.scheduler.armed, 1, "double enable must leave exactly one armed reminder")
	armed := f.scheduler.armed[h.ID]
	assert.Equal(t, 8, armed.Hour)
	assert.Equal(t, 30, armed.Minute)
}

func TestEnableFailsFastWhenGloballyDisabled(t *testing.T) {
	f := newCoordinatorFixture()
	f.settings.enabled = false
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	assert.ErrorIs(t, err, ErrNotificationsDisabled)
	assert.Zero(t, f.scheduler.scheduleCalls)
}

func TestEnableUnknownHabit(t *testing.T) {
	f := newCoordinatorFixture()

	_, err := f.coordinator.Enable(context.Background(), uuid.New(), TimeOfDay{Hour: 8}, "", EveryDay())
	assert.ErrorIs(t, err, habits.ErrHabitNotFound)
}

func TestEnablePersistsBeforeScheduling(t *testing.T) {
	f := newCoordinatorFixture()
	f.scheduler.failSchedule = assert.AnError
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	assert.ErrorIs(t, err, ErrSchedulingFailed)

	// Config was persisted anyway so a restart can resynchronize.
	config, err := f.repo.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.True(t, config.Enabled)
}

func TestDisable(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)

	require.NoError(t, f.coordinator.Disable(context.Background(), h.ID))

	config, err := f.repo.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.False(t, config.Enabled)
	assert.Empty(t, f.scheduler.armed)
}

func TestUpdateTimeMissingConfig(t *testing.T) {
	f := newCoordinatorFixture()

	_, err := f.coordinator.UpdateTime(context.Background(), uuid.New(), TimeOfDay{Hour: 9})
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestUpdateTimeDisabledConfigSkipsScheduler(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)
	require.NoError(t, f.coordinator.Disable(context.Background(), h.ID))
	callsBefore := f.scheduler.scheduleCalls

	updated, err := f.coordinator.UpdateTime(context.Background(), h.ID, TimeOfDay{Hour: 21, Minute: 15})
	require.NoError(t, err)
	assert.Equal(t, 21, updated.Hour)
	assert.Equal(t, callsBefore, f.scheduler.scheduleCalls, "disabled config update must not touch the platform")

	stored, err := f.repo.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, stored.Hour)
	assert.Equal(t, 15, stored.Minute)
}

func TestUpdateTimeEnabledConfigRearms(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)

	_, err = f.coordinator.UpdateTime(context.Background(), h.ID, TimeOfDay{Hour: 19})
	require.NoError(t, err)

	armed := f.scheduler.armed[h.ID]
	assert.Equal(t, 19, armed.Hour)
}

func TestSyncAllRearmsOnlyEnabled(t *testing.T) {
	f := newCoordinatorFixture()
	enabled := f.addHabit(habits.Daily(), date(2024, 1, 1))
	disabled := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), enabled.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)
	_, err = f.coordinator.Enable(context.Background(), disabled.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)
	require.NoError(t, f.coordinator.Disable(context.Background(), disabled.ID))

	// Simulate platform restart losing armed state.
	require.NoError(t, f.scheduler.CancelAll(context.Background()))

	armed, err := f.coordinator.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, armed)

	_, ok := f.scheduler.armed[enabled.ID]
	assert.True(t, ok)
	_, ok = f.scheduler.armed[disabled.ID]
	assert.False(t, ok, "disabled configs must not be re-armed")
}

func TestCancelAll(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)

	require.NoError(t, f.coordinator.CancelAll(context.Background()))

	assert.Empty(t, f.scheduler.armed)
	configs, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)
	for _, c := range configs {
		assert.False(t, c.Enabled)
	}
}

func TestDueOnRespectsPeriodAndArchive(t *testing.T) {
	f := newCoordinatorFixture()
	monday := date(2024, 1, 8)

	weekly := f.addHabit(habits.Weekly(time.Monday), date(2024, 1, 1))
	offday := f.addHabit(habits.Weekly(time.Friday), date(2024, 1, 1))
	everyday := f.addHabit(habits.Weekly(time.Friday), date(2024, 1, 1))
	archived := f.addHabit(habits.Daily(), date(2024, 1, 1))
	archived.Archived = true

	_, err := f.coordinator.Enable(context.Background(), weekly.ID, TimeOfDay{Hour: 8}, "", ActiveDaysOnly())
	require.NoError(t, err)
	_, err = f.coordinator.Enable(context.Background(), offday.ID, TimeOfDay{Hour: 8}, "", ActiveDaysOnly())
	require.NoError(t, err)
	_, err = f.coordinator.Enable(context.Background(), everyday.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)
	_, err = f.coordinator.Enable(context.Background(), archived.ID, TimeOfDay{Hour: 8}, "", EveryDay())
	require.NoError(t, err)

	due, err := f.coordinator.DueOn(context.Background(), monday)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool)
	for _, c := range due {
		ids[c.HabitID] = true
	}
	assert.True(t, ids[weekly.ID], "active-days period on an active day")
	assert.False(t, ids[offday.ID], "active-days period on an inactive day")
	assert.True(t, ids[everyday.ID], "every-day period fires regardless of recurrence")
	assert.False(t, ids[archived.ID], "archived habits never notify")
}

func TestWeekdaysSummarySelectedDays(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", SelectedDays(time.Monday, time.Thursday))
	require.NoError(t, err)

	days, err := f.coordinator.Weekdays(context.Background(), h.ID, time.Monday)
	require.NoError(t, err)
	assert.Equal(t, map[time.Weekday]bool{time.Monday: true, time.Thursday: true}, days)
}

func TestWeekdaysSummaryDailyHabitFiresEveryDay(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	_, err := f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", ActiveDaysOnly())
	require.NoError(t, err)

	days, err := f.coordinator.Weekdays(context.Background(), h.ID, time.Sunday)
	require.NoError(t, err)
	assert.Len(t, days, 7)
}

func TestWeekdaysMissingConfig(t *testing.T) {
	f := newCoordinatorFixture()

	_, err := f.coordinator.Weekdays(context.Background(), uuid.New(), time.Monday)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConcurrentEnableDisableSameHabit(t *testing.T) {
	f := newCoordinatorFixture()
	h := f.addHabit(habits.Daily(), date(2024, 1, 1))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = f.coordinator.Enable(context.Background(), h.ID, TimeOfDay{Hour: 8}, "", EveryDay())
			} else {
				_ = f.coordinator.Disable(context.Background(), h.ID)
			}
		}(i)
	}
	wg.Wait()

	// Last writer wins; stored and armed state must agree.
	config, err := f.repo.Get(context.Background(), h.ID)
	require.NoError(t, err)
	scheduled, err := f.scheduler.IsScheduled(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, config.Enabled, scheduled)
}
