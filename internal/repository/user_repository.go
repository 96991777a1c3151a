package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"focal/internal/model"
)

// UserRepository stores Telegram users and their report preferences.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram finds or creates a user by TelegramID and refreshes the profile fields.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	var user model.User
	// A map so that cleared profile fields are written too.
	profile := map[string]any{"first_name": firstName, "last_name": lastName, "username": username}
	err := r.db.WithContext(ctx).
		Where(model.User{TelegramID: telegramID}).
		Assign(profile).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", telegramID, err)
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user %d: %w", telegramID, notFound(err))
	}
	return &user, nil
}

// ListReportable returns users that have not muted scheduled reports.
func (r *UserRepository) ListReportable(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("reports_muted = ?", false).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list reportable users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) SetReportsMuted(ctx context.Context, userID uint, muted bool) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("reports_muted", muted)
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// MarkReported stores when the last scheduled report reached the user.
func (r *UserRepository) MarkReported(ctx context.Context, userID uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("last_report_at", at).Error
	if err != nil {
		return fmt.Errorf("mark user %d reported: %w", userID, err)
	}
	return nil
}
