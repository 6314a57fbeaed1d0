package service

import (
	"context"
	"time"
)

// Event types published by the marketplace.
const (
	EventOfferCreated       = "offer.created"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventReviewCreated      = "review.created"
)

// DomainEvent is a fact about committed state, published for downstream consumers.
type DomainEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	RequestID  string         `json:"request_id,omitempty"` // For distributed tracing
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// Publish sends a single event. Callers treat failures as non-fatal.
	Publish(ctx context.Context, event *DomainEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
