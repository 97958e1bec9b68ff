package reminder

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// PermissionCache is a single-slot cache of the last-known permission
// projection. Writes are one atomic slot assignment, never a
// read-modify-write, so concurrent writers cannot corrupt it. The
// platform is the source of truth; the cache exists only to avoid
// re-querying it on every check and must be invalidated on foreground
// resume and after any settings round-trip.
type PermissionCache struct {
	slot atomic.Int32 // 0 unset, 1 granted, 2 not granted
}

func NewPermissionCache() *PermissionCache {
	return &PermissionCache{}
}

// Get returns the cached value and whether the slot is populated.
func (c *PermissionCache) Get() (granted, ok bool) {
	switch c.slot.Load() {
	case 1:
		return true, true
	case 2:
		return false, true
	default:
		return false, false
	}
}

func (c *PermissionCache) Set(granted bool) {
	if granted {
		c.slot.Store(1)
	} else {
		c.slot.Store(2)
	}
}

func (c *PermissionCache) Invalidate() {
	c.slot.Store(0)
}

// FlowController negotiates platform notification permission as a
// two-phase flow: RequestWithFlow decides whether the caller should show
// a rationale before triggering the system prompt, and
// HandleSystemResult maps the prompt's result after it resolves.
// Neither phase ever blocks on a system dialog itself.
type FlowController struct {
	pm     PermissionManager
	cache  *PermissionCache
	logger *zap.Logger
}

func NewFlowController(pm PermissionManager, cache *PermissionCache, logger *zap.Logger) *FlowController {
	return &FlowController{
		pm:     pm,
		cache:  cache,
		logger: logger,
	}
}

// RequestWithFlow begins the permission flow. A cached grant
// short-circuits without touching the platform. A transient platform
// failure surfaces as an error outcome and is never cached as a denial.
func (f *FlowController) RequestWithFlow(ctx context.Context, habitName string) FlowOutcome {
	if granted, ok := f.cache.Get(); ok && granted {
		return FlowOutcome{Kind: OutcomeGranted}
	}

	has, err := f.pm.HasPermission(ctx)
	if err != nil {
		f.logger.Error("permission query failed", zap.Error(err))
		return FlowOutcome{Kind: OutcomeError, Message: fmt.Sprintf("could not check notification permission: %v", err)}
	}
	if has {
		f.cache.Set(true)
		return FlowOutcome{Kind: OutcomeGranted}
	}

	canAsk, err := f.pm.CanRequestPermission(ctx)
	if err != nil {
		f.logger.Error("permission availability query failed", zap.Error(err))
		return FlowOutcome{Kind: OutcomeError, Message: fmt.Sprintf("could not check notification permission: %v", err)}
	}
	if !canAsk {
		return FlowOutcome{
			Kind:    OutcomeShowSettingsPrompt,
			Message: "Notifications are turned off. Enable them in system settings to get reminders.",
		}
	}

	return FlowOutcome{
		Kind:     OutcomeShowRationale,
		Message:  rationaleMessage(habitName),
		Benefits: rationaleBenefits(),
	}
}

// HandleSystemResult is invoked after the system prompt resolves. It
// triggers the platform request, maps its result, and caches true only
// on a grant.
func (f *FlowController) HandleSystemResult(ctx context.Context, habitName string) FlowOutcome {
	state, err := f.pm.RequestPermission(ctx)
	if err != nil {
		f.logger.Error("permission request failed", zap.Error(err))
		return FlowOutcome{Kind: OutcomeError, Message: fmt.Sprintf("notification permission request failed: %v", err)}
	}

	switch state {
	case PermissionGranted:
		f.cache.Set(true)
		return FlowOutcome{Kind: OutcomeGranted}
	case PermissionDeniedCanAskAgain:
		return FlowOutcome{
			Kind:    OutcomeShowSoftDenial,
			Message: softDenialMessage(habitName),
		}
	case PermissionDeniedPermanently:
		return FlowOutcome{
			Kind:    OutcomeShowSettingsPrompt,
			Message: "Notification permission was denied. You can re-enable it in system settings.",
		}
	case PermissionGloballyDisabled:
		return FlowOutcome{
			Kind:    OutcomeShowSettingsPrompt,
			Message: "Notifications are disabled for this app. Enable them in system settings to get reminders.",
		}
	default:
		return FlowOutcome{Kind: OutcomeError, Message: fmt.Sprintf("unexpected permission state %q", state)}
	}
}

// InvalidateCache clears the slot. Callers invoke this on foreground
// resume and after returning from the settings side channel, since
// permission may have changed out-of-band.
func (f *FlowController) InvalidateCache() {
	f.cache.Invalidate()
}

// OpenSettings routes through the settings side channel and restarts
// the state machine by invalidating the cache.
func (f *FlowController) OpenSettings(ctx context.Context) (bool, error) {
	opened, err := f.pm.OpenSettings(ctx)
	f.cache.Invalidate()
	if err != nil {
		return false, &GeneralError{Cause: err}
	}
	return opened, nil
}

func rationaleMessage(habitName string) string {
	if habitName != "" {
		return fmt.Sprintf("Allow notifications to get reminders for %q at the time you choose.", habitName)
	}
	return "Allow notifications to get habit reminders at the times you choose."
}

func rationaleBenefits() []string {
	return []string{
		"Get a nudge on the days a habit is due",
		"Pick the exact reminder time per habit",
		"Keep streaks alive with a heads-up before the day ends",
	}
}

func softDenialMessage(habitName string) string {
	if habitName != "" {
		return fmt.Sprintf("Without notifications you won't get reminders for %q. You can allow them anytime.", habitName)
	}
	return "Without notifications you won't get habit reminders. You can allow them anytime."
}
