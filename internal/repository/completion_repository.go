package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focal/internal/model"
)

// CompletionRepository stores per-day completions of recurring tasks.
// Rows come back in insertion order so the oldest duplicate wins downstream.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (r *CompletionRepository) Create(ctx context.Context, rec *model.CompletionRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

func (r *CompletionRepository) ListForTasks(ctx context.Context, uids []string) ([]model.CompletionRecord, error) {
	if len(uids) == 0 {
		return []model.CompletionRecord{}, nil
	}
	var rows []model.CompletionRecord
	if err := r.db.WithContext(ctx).Where("task_uid IN ?", uids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return rows, nil
}

// ListForTasksBetween limits ListForTasks to the inclusive day-key range.
func (r *CompletionRepository) ListForTasksBetween(ctx context.Context, uids []string, fromDay, toDay string) ([]model.CompletionRecord, error) {
	if len(uids) == 0 {
		return []model.CompletionRecord{}, nil
	}
	var rows []model.CompletionRecord
	if err := r.db.WithContext(ctx).
		Where("task_uid IN ? AND day >= ? AND day <= ?", uids, fromDay, toDay).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return rows, nil
}

func (r *CompletionRepository) ListForDay(ctx context.Context, uid, day string) ([]model.CompletionRecord, error) {
	var rows []model.CompletionRecord
	if err := r.db.WithContext(ctx).Where("task_uid = ? AND day = ?", uid, day).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completions for %s: %w", day, err)
	}
	return rows, nil
}

// DeleteForDay removes every record of the task on that day, duplicates included.
func (r *CompletionRepository) DeleteForDay(ctx context.Context, uid, day string) (int64, error) {
	res := r.db.WithContext(ctx).Where("task_uid = ? AND day = ?", uid, day).Delete(&model.CompletionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete completions for %s: %w", day, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *CompletionRepository) CountForTask(ctx context.Context, uid string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CompletionRecord{}).Where("task_uid = ?", uid).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}
