package constant

// Notification type codes.
const (
	NotificationResponseAdded = "RESPONSE_ADDED"
	NotificationReplyAdded    = "REPLY_ADDED"
	NotificationResponseLiked = "RESPONSE_LIKED"
	NotificationReplyLiked    = "REPLY_LIKED"
	NotificationNoteLiked     = "NOTE_LIKED"
)

// Durable consumer name for notification events on the bus.
const NotificationConsumer = "notification-service-worker"
