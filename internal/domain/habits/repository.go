package habits

import (
	"context"
	"errors"
	"time"

	"github.com/cctncr/habitstreak/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Repository defines the interface for habit persistence operations
type Repository interface {
	Create(ctx context.Context, habit *Habit) error
	FindByID(ctx context.Context, id uuid.UUID) (*Habit, error)
	FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error)
	FindActive(ctx context.Context) ([]Habit, error)
	Update(ctx context.Context, habit *Habit) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Completion records, one per habit per day
	UpsertCompletion(ctx context.Context, record *CompletionRecord) error
	RemoveCompletion(ctx context.Context, habitID uuid.UUID, date time.Time) error
	GetCompletions(ctx context.Context, habitID uuid.UUID) ([]CompletionRecord, error)
	GetCompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error)
	GetHeatmapData(ctx context.Context, startDate, endDate time.Time) (map[string]int, error)

	// Activity log
	RecordActivity(ctx context.Context, activity *HabitActivity) error
	GetActivitySummary(ctx context.Context, habitID uuid.UUID, startTime, endTime time.Time) (map[string]int, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Habit, error) {
	var habit Habit
	result := r.db.WithContext(ctx).First(&habit, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, result.Error
	}
	return &habit, nil
}

func (r *repository) FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	var habits []Habit
	var total int64
	query := r.db.WithContext(ctx).Model(&Habit{})

	if !filter.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if filter.Title != nil {
		query = query.Where("title LIKE ?", "%"+*filter.Title+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 10000
	}

	err := query.Order("created_at ASC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize).
		Find(&habits).Error
	if err != nil {
		return nil, 0, err
	}

	return habits, total, nil
}

// FindActive returns all non-archived habits. Archived habits are
// excluded from activity and notification evaluation.
func (r *repository) FindActive(ctx context.Context) ([]Habit, error) {
	var habits []Habit
	err := r.db.WithContext(ctx).
		Where("archived = ?", false).
		Order("created_at ASC").
		Find(&habits).Error
	if err != nil {
		return nil, err
	}
	return habits, nil
}

func (r *repository) Update(ctx context.Context, habit *Habit) error {
	result := r.db.WithContext(ctx).Save(habit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	result := r.db.WithContext(ctx).Model(&Habit{}).
		Where("id = ?", id).
		Update("archived", archived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&CompletionRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("habit_id = ?", id).Delete(&HabitActivity{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Habit{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrHabitNotFound
		}
		return nil
	})
}

// UpsertCompletion writes the day's completion record, replacing any
// existing record for the same (habit, date) pair.
func (r *repository) UpsertCompletion(ctx context.Context, record *CompletionRecord) error {
	record.Date = DateOf(record.Date)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "note", "completed_at"}),
	}).Create(record).Error
}

func (r *repository) RemoveCompletion(ctx context.Context, habitID uuid.UUID, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("habit_id = ? AND date = ?", habitID, DateOf(date)).
		Delete(&CompletionRecord{}).Error
}

func (r *repository) GetCompletions(ctx context.Context, habitID uuid.UUID) ([]CompletionRecord, error) {
	var records []CompletionRecord
	err := r.db.WithContext(ctx).
		Where("habit_id = ?", habitID).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) GetCompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&CompletionRecord{}).
		Where("habit_id = ?", habitID).
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *repository) GetHeatmapData(ctx context.Context, startDate, endDate time.Time) (map[string]int, error) {
	type row struct {
		Date  time.Time
		Total int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&CompletionRecord{}).
		Select("date, SUM(count) as total").
		Where("date >= ? AND date <= ?", DateOf(startDate), DateOf(endDate)).
		Group("date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	data := make(map[string]int, len(rows))
	for _, r := range rows {
		data[r.Date.Format("2006-01-02")] = r.Total
	}
	return data, nil
}

func (r *repository) RecordActivity(ctx context.Context, activity *HabitActivity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repository) GetActivitySummary(ctx context.Context, habitID uuid.UUID, startTime, endTime time.Time) (map[string]int, error) {
	type row struct {
		Action string
		Total  int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&HabitActivity{}).
		Select("action, COUNT(*) as total").
		Where("habit_id = ? AND timestamp >= ? AND timestamp <= ?", habitID, startTime, endTime).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Action] = r.Total
	}
	return counts, nil
}
