package repository

import (
	"context"
	"errors"
	"time"

	"skillshare/internal/cache"
	"skillshare/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error)
	CountByRecipient(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, recipientID uint) error
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteByRecipientBefore(ctx context.Context, recipientID uint, cutoff time.Time) (int64, error)
	DeleteAllBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNotificationCount(ctx, n.RecipientID)
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountByRecipient(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNotificationCount(ctx, n.RecipientID)
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNotificationCount(ctx, recipientID)
	return nil
}

// CountUnread serves the unread badge, so the count is cached briefly and
// invalidated by every write that can change it.
func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	fetch := func() error {
		return r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("recipient_id = ? AND read = ?", recipientID, false).
			Count(&count).Error
	}
	if err := cache.CacheAside(ctx, cache.NotificationCountKey(recipientID), &count,
		cache.NotificationCountTTL, fetch); err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	cache.InvalidateNotificationCount(ctx, n.RecipientID)
	return nil
}

func (r *notificationRepository) DeleteByRecipientBefore(ctx context.Context, recipientID uint, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? AND created_at < ?", recipientID, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	cache.InvalidateNotificationCount(ctx, recipientID)
	return res.RowsAffected, nil
}

// DeleteAllBefore removes notifications older than the cutoff for every
// recipient. Used by the nightly retention sweep.
func (r *notificationRepository) DeleteAllBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
