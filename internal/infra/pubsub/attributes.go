package pubsub

import "accounts/internal/domain/service"

// eventAttributes builds the message attributes used for subscription
// filtering and tracing.
func eventAttributes(event *service.AccountEvent) map[string]string {
	attributes := map[string]string{
		"event_id":   event.EventID,
		"event_type": event.Type,
		"account_id": event.AccountID,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}
