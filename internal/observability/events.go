package observability

import (
	"context"
	"sync"
)

// EventPublisher is the sink for operational events (websocket lifecycle).
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// EventEnvelope wraps an operational event.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	RequestID string      `json:"request_id,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Payload   interface{} `json:"payload"`
}

var (
	publisherMu      sync.RWMutex
	defaultPublisher EventPublisher
)

// SetPublisher installs the process-wide event publisher.
func SetPublisher(publisher EventPublisher) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	defaultPublisher = publisher
}

// PublishEvent sends an event through the installed publisher, if any.
func PublishEvent(ctx context.Context, routingKey string, envelope EventEnvelope) error {
	publisherMu.RLock()
	publisher := defaultPublisher
	publisherMu.RUnlock()
	if publisher == nil {
		return nil
	}

	err := publisher.Publish(ctx, routingKey, envelope)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}
