// Package events publishes session audit events (login, refresh, logout,
// expiry) to Kafka.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	SessionLogin     Type = "session.login"
	SessionRefreshed Type = "session.refreshed"
	SessionLogout    Type = "session.logout"
	SessionExpired   Type = "session.expired"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Profile    string    `json:"profile"`
	Email      string    `json:"email,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType Type, profile string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Profile:    profile,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Callers treat publishing as best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
