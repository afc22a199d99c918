// Package events publishes book lifecycle notifications for downstream
// consumers such as search indexers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/aoideee/library-catalog/internal/data"
)

// Event types.
const (
	BookCreated = "book.created"
	BookUpdated = "book.updated"
	BookDeleted = "book.deleted"
)

// Event describes one change to the catalog. Book is nil for deletions.
type Event struct {
	Type       string     `json:"type"`
	BookID     int64      `json:"book_id"`
	Book       *data.Book `json:"book,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// MemoryPublisher keeps published events in order.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *MemoryPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
