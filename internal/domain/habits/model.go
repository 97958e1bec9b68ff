package habits

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecurrenceKind discriminates the recurrence rule variants.
type RecurrenceKind string

const (
	RecurDaily   RecurrenceKind = "daily"
	RecurWeekly  RecurrenceKind = "weekly"
	RecurMonthly RecurrenceKind = "monthly"
	RecurEveryN  RecurrenceKind = "every_n"
)

// IntervalUnit is the unit of an every-N rule.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
)

// RecurrenceRule is a closed tagged variant. Kind selects the variant;
// only the fields belonging to that variant are meaningful.
// Stored as a JSONB column on the habit row.
type RecurrenceRule struct {
	Kind      RecurrenceKind `json:"kind"`
	Weekdays  []time.Weekday `json:"weekdays,omitempty"`
	MonthDays []int          `json:"month_days,omitempty"`
	Interval  int            `json:"interval,omitempty"`
	Unit      IntervalUnit   `json:"unit,omitempty"`
}

// Daily returns the rule that is active every day.
func Daily() RecurrenceRule {
	return RecurrenceRule{Kind: RecurDaily}
}

// Weekly returns a rule active on the given weekdays. An empty set is a
// valid, permanently inactive rule.
func Weekly(days ...time.Weekday) RecurrenceRule {
	return RecurrenceRule{Kind: RecurWeekly, Weekdays: days}
}

// Monthly returns a rule active on the given days of month (1..31).
func Monthly(days ...int) RecurrenceRule {
	return RecurrenceRule{Kind: RecurMonthly, MonthDays: days}
}

// EveryN returns a rule active every interval units from the anchor date.
func EveryN(interval int, unit IntervalUnit) RecurrenceRule {
	return RecurrenceRule{Kind: RecurEveryN, Interval: interval, Unit: unit}
}

// Validate rejects malformed rules at construction time so the engine
// stays a total function over well-typed input.
func (r RecurrenceRule) Validate() error {
	switch r.Kind {
	case RecurDaily, RecurWeekly:
		return nil
	case RecurMonthly:
		for _, d := range r.MonthDays {
			if d < 1 || d > 31 {
				return fmt.Errorf("%w: day of month %d out of range 1..31", ErrInvalidInput, d)
			}
		}
		return nil
	case RecurEveryN:
		if r.Interval < 1 {
			return fmt.Errorf("%w: interval must be >= 1, got %d", ErrInvalidInput, r.Interval)
		}
		switch r.Unit {
		case UnitDays, UnitWeeks, UnitMonths:
			return nil
		default:
			return fmt.Errorf("%w: unknown interval unit %q", ErrInvalidInput, r.Unit)
		}
	default:
		return fmt.Errorf("%w: unknown recurrence kind %q", ErrInvalidInput, r.Kind)
	}
}

func (r *RecurrenceRule) Scan(value interface{}) error {
	if value == nil {
		*r = Daily()
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
	return json.Unmarshal(bytes, r)
}

func (r RecurrenceRule) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Habit is the tracked habit entity. CreatedAt doubles as the anchor date
// for every-N recurrence arithmetic and is immutable once set.
type Habit struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Recurrence  RecurrenceRule `json:"recurrence" gorm:"type:jsonb;not null"`
	TargetCount int            `json:"target_count" gorm:"not null;default:1"`
	Archived    bool           `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for the Habit model
func (Habit) TableName() string {
	return "habits"
}

// BeforeCreate is called before creating a new habit record
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// BeforeUpdate is called before updating a habit record
func (h *Habit) BeforeUpdate(tx *gorm.DB) error {
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// AnchorDate returns the habit's creation date truncated to day
// granularity, the zero point for every-N recurrence arithmetic.
func (h *Habit) AnchorDate() time.Time {
	return DateOf(h.CreatedAt)
}

// CompletionRecord is one completion entry, at most one per habit per
// calendar day. An update replaces the row, it does not append.
type CompletionRecord struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	HabitID     uuid.UUID `json:"habit_id" gorm:"type:uuid;not null;uniqueIndex:idx_completion_habit_date,priority:1"`
	Date        time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_completion_habit_date,priority:2"`
	Count       int       `json:"count" gorm:"not null;default:1"`
	Note        string    `json:"note" gorm:"type:text"`
	CompletedAt time.Time `json:"completed_at" gorm:"not null"`
}

// TableName specifies the table name for the CompletionRecord model
func (CompletionRecord) TableName() string {
	return "completion_records"
}

// BeforeCreate is called before creating a new completion record
func (c *CompletionRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	c.Date = DateOf(c.Date)
	return nil
}

// CreateHabitInput represents the input for creating a new habit
type CreateHabitInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Recurrence  RecurrenceRule `json:"recurrence"`
	TargetCount int            `json:"target_count"`
}

// UpdateHabitInput represents the input for updating a habit. The
// creation date is deliberately absent: the anchor never moves.
type UpdateHabitInput struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
	TargetCount *int            `json:"target_count,omitempty"`
}

// HabitFilter defines the filtering options for habits
type HabitFilter struct {
	Title           *string
	IncludeArchived bool
	Page            int
	PageSize        int
}

// DateOf truncates t to day granularity in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
