package service

import (
	"context"
	"fmt"
	"time"

	"vibenotes-be/internal/constant"
	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/model"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/unitofwork"
	"vibenotes-be/pkg/events"
	pktNats "vibenotes-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// NotificationDelivery pushes real-time updates. Implemented by the WebSocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

type INotificationService interface {
	Notifier
	// Start subscribes to notification events on the bus, if one is configured.
	Start() error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type NotificationOption func(*notificationService)

func WithSubscriber(sub *pktNats.Subscriber) NotificationOption {
	return func(s *notificationService) { s.subscriber = sub }
}

func WithDelivery(d NotificationDelivery) NotificationOption {
	return func(s *notificationService) { s.delivery = d }
}

// WithRedisDedupe shares like-notification dedupe keys across instances.
func WithRedisDedupe(rdb *redis.Client) NotificationOption {
	return func(s *notificationService) { s.rdb = rdb }
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	rdb        *redis.Client
	local      *cache.Cache
	dedupeTTL  time.Duration
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, dedupeTTL time.Duration, log logger.ILogger, opts ...NotificationOption) INotificationService {
	s := &notificationService{
		uowFactory: uowFactory,
		local:      cache.New(dedupeTTL, 2*dedupeTTL),
		dedupeTTL:  dedupeTTL,
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *notificationService) Start() error {
	if s.subscriber == nil {
		return nil
	}
	subject := pktNats.Subject(events.NotificationRequested)
	if err := s.subscriber.Subscribe(subject, constant.NotificationConsumer, s.handleEvent); err != nil {
		return fmt.Errorf("start notification subscriber: %w", err)
	}
	s.logger.Info("NotificationService", "Notification service started", map[string]interface{}{"subject": subject})
	return nil
}

func (s *notificationService) handleEvent(ctx context.Context, event events.Event) error {
	req, err := payloadToRequest(event.Payload())
	if err != nil {
		// Malformed payloads never become valid on redelivery.
		s.logger.Warn("NotificationService", "Dropping malformed notification event", map[string]interface{}{"error": err})
		return nil
	}
	return s.CreateNotification(ctx, req)
}

func dedupeKey(req dto.CreateNotificationRequest) string {
	return fmt.Sprintf("vibenotes:notif:%s:%s:%s:%s", req.Type, req.ActorId, req.RecipientId, req.TargetUrl)
}

// firstOccurrence reports whether this dedupe key has not been seen within the TTL.
func (s *notificationService) firstOccurrence(ctx context.Context, key string) bool {
	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, key, 1, s.dedupeTTL).Result()
		if err == nil {
			return ok
		}
		s.logger.Warn("NotificationService", "Redis dedupe unavailable, using local cache", map[string]interface{}{"error": err})
	}
	return s.local.Add(key, struct{}{}, cache.DefaultExpiration) == nil
}

// releaseDedupe forgets a claimed key so a redelivered event is not mistaken for a duplicate.
func (s *notificationService) releaseDedupe(ctx context.Context, key string) {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			s.logger.Warn("NotificationService", "Failed to release dedupe key", map[string]interface{}{"error": err})
		}
	}
	s.local.Delete(key)
}

func (s *notificationService) CreateNotification(ctx context.Context, req dto.CreateNotificationRequest) error {
	if req.RecipientId == uuid.Nil || req.RecipientId == req.ActorId {
		return nil
	}
	key := dedupeKey(req)
	if req.Dedupe && !s.firstOccurrence(ctx, key) {
		s.logger.Debug("NotificationService", "Duplicate notification suppressed", map[string]interface{}{"type": req.Type})
		return nil
	}

	actorID, noteID := req.ActorId, req.NoteId
	var responseIndex *int
	if req.ResponseIndex >= 0 {
		ri := req.ResponseIndex
		responseIndex = &ri
	}
	notif := model.Notification{
		ID:            uuid.New(),
		UserID:        req.RecipientId,
		ActorID:       &actorID,
		TypeCode:      req.Type,
		NoteID:        &noteID,
		ResponseIndex: responseIndex,
		ReplyIndex:    req.ReplyIndex,
		TargetURL:     req.TargetUrl,
		Message:       req.Message,
		CreatedAt:     time.Now().UTC(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().CreateNotification(ctx, &notif); err != nil {
		if req.Dedupe {
			s.releaseDedupe(ctx, key)
		}
		s.logger.Error("NotificationService", "Failed to save notification", map[string]interface{}{
			"error":   err,
			"user_id": req.RecipientId,
		})
		return fmt.Errorf("save notification: %w", err)
	}

	if s.delivery != nil {
		s.delivery.Send(req.RecipientId, notif)
	}
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notifications, total, err := uow.NotificationRepository().GetNotificationsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("failed to load notifications", err)
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, total, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.uowFactory.NewUnitOfWork(ctx).NotificationRepository().GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to count notifications", err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.uowFactory.NewUnitOfWork(ctx).NotificationRepository().MarkAsRead(ctx, userID, notificationID)
	if err != nil && apperr.KindOf(err) == apperr.KindInternal {
		return apperr.Internal("failed to mark notification", err)
	}
	return err
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.uowFactory.NewUnitOfWork(ctx).NotificationRepository().MarkAllAsRead(ctx, userID); err != nil {
		return apperr.Internal("failed to mark notifications", err)
	}
	return nil
}
