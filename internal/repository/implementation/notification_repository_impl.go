package implementation

import (
	"context"
	"time"

	"vibenotes-be/internal/model"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/repository/contract"
	"vibenotes-be/internal/repository/scope"
	"vibenotes-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) contract.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) CreateNotification(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepositoryImpl) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := specification.Apply(r.db.WithContext(ctx).Model(&model.Notification{}), specification.OwnedBy{UserID: userID})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := specification.Apply(db.Scopes(scope.NewestFirst),
		specification.Pagination{Limit: limit, Offset: offset},
	).Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepositoryImpl) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.Notification{}),
		specification.OwnedBy{UserID: userID},
		specification.Unread{},
	).Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	now := time.Now()
	result := specification.Apply(r.db.WithContext(ctx).Model(&model.Notification{}),
		specification.ByID{ID: notificationID},
		specification.OwnedBy{UserID: userID},
	).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	return specification.Apply(r.db.WithContext(ctx).Model(&model.Notification{}),
		specification.OwnedBy{UserID: userID},
		specification.Unread{},
	).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
}

func (r *NotificationRepositoryImpl) DeleteByNoteID(ctx context.Context, noteID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&model.Notification{}).Error
}
