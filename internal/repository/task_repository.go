package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focal/internal/model"
)

// TaskRepository handles CRUD for task templates.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByUser returns every template of the user ordered by start time.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("start_time ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task %d: %w", taskID, notFound(err))
	}
	return &task, nil
}

func (r *TaskRepository) FindByUID(ctx context.Context, uid string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task %s: %w", uid, notFound(err))
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a task of the given user together with its completion records.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
			return fmt.Errorf("find task %d: %w", taskID, notFound(err))
		}
		if err := tx.Where("task_uid = ?", task.UID).Delete(&model.CompletionRecord{}).Error; err != nil {
			return fmt.Errorf("delete completions: %w", err)
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}
