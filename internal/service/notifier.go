package service

import (
	"context"
	"encoding/json"
	"fmt"

	"vibenotes-be/internal/dto"
	"vibenotes-be/pkg/events"
)

// Notifier receives notification requests from the core. Callers treat it as
// fire-and-forget: a failure is logged, never returned to the user.
type Notifier interface {
	CreateNotification(ctx context.Context, req dto.CreateNotificationRequest) error
}

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type eventNotifier struct {
	publisher EventPublisher
}

// NewEventNotifier queues notification requests on the event bus; the
// notification service consumes them.
func NewEventNotifier(publisher EventPublisher) Notifier {
	return &eventNotifier{publisher: publisher}
}

func (n *eventNotifier) CreateNotification(ctx context.Context, req dto.CreateNotificationRequest) error {
	data, err := requestToPayload(req)
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, events.New(events.NotificationRequested, data))
}

func requestToPayload(req dto.CreateNotificationRequest) (map[string]interface{}, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode notification request: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode notification request: %w", err)
	}
	return data, nil
}

func payloadToRequest(data map[string]interface{}) (dto.CreateNotificationRequest, error) {
	var req dto.CreateNotificationRequest
	raw, err := json.Marshal(data)
	if err != nil {
		return req, fmt.Errorf("decode notification request: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decode notification request: %w", err)
	}
	return req, nil
}
