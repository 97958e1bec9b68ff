package reminder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PeriodKind discriminates the notification period variants.
type PeriodKind string

const (
	// PeriodEveryDay fires regardless of the habit's recurrence
	PeriodEveryDay PeriodKind = "every_day"
	// PeriodActiveDays fires exactly on days the recurrence is active
	PeriodActiveDays PeriodKind = "active_days"
	// PeriodSelectedDays fires on an explicit weekday subset
	PeriodSelectedDays PeriodKind = "selected_days"
)

// Period is the policy governing which days get a reminder, independent
// of which days the habit itself is due.
type Period struct {
	Kind     PeriodKind
	Weekdays []time.Weekday
}

func EveryDay() Period {
	return Period{Kind: PeriodEveryDay}
}

func ActiveDaysOnly() Period {
	return Period{Kind: PeriodActiveDays}
}

func SelectedDays(days ...time.Weekday) Period {
	return Period{Kind: PeriodSelectedDays, Weekdays: days}
}

func (p Period) Validate() error {
	switch p.Kind {
	case PeriodEveryDay, PeriodActiveDays, PeriodSelectedDays:
		return nil
	default:
		return fmt.Errorf("unknown period kind %q", p.Kind)
	}
}

// TimeOfDay is the wall-clock time a reminder fires.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("hour %d out of range 0..23", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("minute %d out of range 0..59", t.Minute)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// NotificationConfig is the stored per-habit reminder configuration.
// One config per habit; saves upsert.
type NotificationConfig struct {
	HabitID     uuid.UUID     `json:"habit_id" gorm:"type:uuid;primaryKey"`
	Hour        int           `json:"hour" gorm:"not null"`
	Minute      int           `json:"minute" gorm:"not null"`
	Enabled     bool          `json:"enabled" gorm:"not null;default:true;index"`
	Message     string        `json:"message" gorm:"type:text"`
	PeriodKind  PeriodKind    `json:"period_kind" gorm:"type:varchar(20);not null;default:'active_days'"`
	PeriodDays  pq.Int64Array `json:"period_days" gorm:"type:integer[]"`
	Sound       bool          `json:"sound" gorm:"not null;default:true"`
	Vibration   bool          `json:"vibration" gorm:"not null;default:true"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for the NotificationConfig model
func (NotificationConfig) TableName() string {
	return "notification_configs"
}

// BeforeCreate hook to set default values
func (c *NotificationConfig) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = time.Now().UTC()
	if c.PeriodKind == "" {
		c.PeriodKind = PeriodActiveDays
	}
	return nil
}

// Time returns the configured time of day.
func (c *NotificationConfig) Time() TimeOfDay {
	return TimeOfDay{Hour: c.Hour, Minute: c.Minute}
}

// Period reconstructs the period variant from the stored columns.
func (c *NotificationConfig) Period() Period {
	p := Period{Kind: c.PeriodKind}
	for _, d := range c.PeriodDays {
		p.Weekdays = append(p.Weekdays, time.Weekday(d))
	}
	return p
}

// SetPeriod stores the period variant into the flat columns.
func (c *NotificationConfig) SetPeriod(p Period) {
	c.PeriodKind = p.Kind
	c.PeriodDays = nil
	for _, d := range p.Weekdays {
		c.PeriodDays = append(c.PeriodDays, int64(d))
	}
}

// PermissionState is the derived platform permission state. It is never
// persisted; the platform is the source of truth.
type PermissionState string

const (
	PermissionGranted           PermissionState = "granted"
	PermissionDeniedCanAskAgain PermissionState = "denied_can_ask_again"
	PermissionDeniedPermanently PermissionState = "denied_permanently"
	PermissionGloballyDisabled  PermissionState = "globally_disabled"
	PermissionUnknown           PermissionState = "unknown"
)

// FlowOutcomeKind discriminates the permission flow outcome variants.
type FlowOutcomeKind string

const (
	OutcomeGranted            FlowOutcomeKind = "granted"
	OutcomeShowRationale      FlowOutcomeKind = "show_rationale"
	OutcomeShowSoftDenial     FlowOutcomeKind = "show_soft_denial"
	OutcomeShowSettingsPrompt FlowOutcomeKind = "show_settings_prompt"
	OutcomeError              FlowOutcomeKind = "error"
)

// FlowOutcome is the closed result variant of a permission flow step.
// Only the fields belonging to the Kind are meaningful.
type FlowOutcome struct {
	Kind     FlowOutcomeKind `json:"kind"`
	Message  string          `json:"message,omitempty"`
	Benefits []string        `json:"benefits,omitempty"`
}

// State reports where the outcome leaves the permission state machine.
func (o FlowOutcome) State() FlowState {
	switch o.Kind {
	case OutcomeGranted:
		return StateGranted
	case OutcomeShowRationale, OutcomeShowSoftDenial:
		return StateCanAskAgain
	case OutcomeShowSettingsPrompt:
		return StateDeniedPermanently
	case OutcomeError:
		return StateError
	default:
		return StateIdle
	}
}

// FlowState is the permission state machine's position.
type FlowState string

const (
	StateIdle              FlowState = "idle"
	StateChecking          FlowState = "checking"
	StateGranted           FlowState = "granted"
	StateCanAskAgain       FlowState = "can_ask_again"
	StateDeniedPermanently FlowState = "denied_permanently"
	StateGloballyDisabled  FlowState = "globally_disabled"
	StateError             FlowState = "error"
)
