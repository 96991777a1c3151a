package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"focal/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetOrCreate returns nil for an empty name.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID uint, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = model.Category{UserID: userID, Name: name, Icon: model.CategoryIcon(name)}
		if err := db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return &category, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, notFound(err))
	}
	return &category, nil
}

// NamesByID maps the user's category ids to names.
func (r *CategoryRepository) NamesByID(ctx context.Context, userID uint) (map[uint]string, error) {
	categories, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// CategoryUsage counts the tasks filed under one category. CategoryID is nil for uncategorized tasks.
type CategoryUsage struct {
	CategoryID *uint
	Total      int64
	Recurring  int64
}

// Usage aggregates the user's tasks per category in one query.
func (r *CategoryRepository) Usage(ctx context.Context, userID uint) ([]CategoryUsage, error) {
	var rows []CategoryUsage
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("category_id, COUNT(*) AS total, SUM(CASE WHEN recurrence <> '' AND LOWER(recurrence) <> 'none' THEN 1 ELSE 0 END) AS recurring").
		Where("user_id = ?", userID).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("category usage: %w", err)
	}
	return rows, nil
}
