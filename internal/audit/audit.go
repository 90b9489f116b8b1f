package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category drives the retention tier of an event.
type Category string

const (
	// CategoryMutation covers ledger-changing actions and is kept forever.
	CategoryMutation Category = "mutation"
	// CategoryReadAccess covers report and sensitive reads, kept 90 days.
	CategoryReadAccess Category = "read_access"
	// CategorySystem covers scheduler runs and startup events, kept 30 days.
	CategorySystem Category = "system"
)

// Event is a semantic audit record emitted by the ledger engine.
// Persistence, fan-out, and retention live behind the Recorder.
type Event struct {
	ID       uuid.UUID
	At       time.Time
	Category Category
	ActorID  uuid.UUID
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
}

// Recorder persists audit events. Implementations must not block the
// caller on downstream failures beyond the database write itself.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Nop discards every event. Used when auditing is not wired.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
