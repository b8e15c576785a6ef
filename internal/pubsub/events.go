// Package pubsub provides a generic publish/subscribe event system used to
// hand notifications from background sources (theme changes and
// log entries) to the single-threaded UI loop.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// LogEntryEvent carries a formatted log line.
	LogEntryEvent EventType = "log.entry"
	// ThemeChangedEvent carries the new theme name.
	ThemeChangedEvent EventType = "theme.changed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
