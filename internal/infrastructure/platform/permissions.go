package platform

import (
	"context"
	"sync"

	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/sirupsen/logrus"
)

// SettingsPermissionManager is the single-process implementation of the
// permission port and the global notification toggle. Real mobile or
// desktop deployments replace it with a platform binding; here the
// "system settings" are process state mutated through the settings
// endpoints.
type SettingsPermissionManager struct {
	mu            sync.Mutex
	state         reminder.PermissionState
	denials       int
	globalEnabled bool
	logger        *logrus.Logger
}

func NewSettingsPermissionManager(logger *logrus.Logger) *SettingsPermissionManager {
	return &SettingsPermissionManager{
		state:         reminder.PermissionUnknown,
		globalEnabled: true,
		logger:        logger,
	}
}

func (m *SettingsPermissionManager) HasPermission(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == reminder.PermissionGranted, nil
}

// RequestPermission resolves the pending system prompt. An unknown
// state grants on first ask, mirroring a user accepting the dialog;
// repeated denials escalate to a permanent denial the way mobile
// platforms do.
func (m *SettingsPermissionManager) RequestPermission(ctx context.Context) (reminder.PermissionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.globalEnabled {
		return reminder.PermissionGloballyDisabled, nil
	}

	switch m.state {
	case reminder.PermissionUnknown:
		m.state = reminder.PermissionGranted
	case reminder.PermissionDeniedCanAskAgain:
		m.denials++
		if m.denials >= 2 {
			m.state = reminder.PermissionDeniedPermanently
		}
	}

	m.logger.WithField("state", m.state).Info("Permission request resolved")
	return m.state, nil
}

func (m *SettingsPermissionManager) CanRequestPermission(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == reminder.PermissionUnknown || m.state == reminder.PermissionDeniedCanAskAgain, nil
}

// OpenSettings simulates the settings round-trip by resetting a
// permanent denial back to askable.
func (m *SettingsPermissionManager) OpenSettings(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == reminder.PermissionDeniedPermanently {
		m.state = reminder.PermissionDeniedCanAskAgain
		m.denials = 0
	}
	m.logger.Info("Settings opened")
	return true, nil
}

// NotificationsEnabled implements the global toggle read.
func (m *SettingsPermissionManager) NotificationsEnabled(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalEnabled
}

// SetNotificationsEnabled flips the global toggle.
func (m *SettingsPermissionManager) SetNotificationsEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalEnabled = enabled
}

// SetState overrides the permission state, used by settings endpoints
// and tests to simulate out-of-band changes.
func (m *SettingsPermissionManager) SetState(state reminder.PermissionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.denials = 0
}

// State returns the current permission state.
func (m *SettingsPermissionManager) State() reminder.PermissionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
