package diag

import (
	"log/slog"

	"github.com/google/uuid"
)

// Event records a collision that was resolved during a tier mutation.
type Event struct {
	// ID is a UUIDv7 identifying this event. UUIDv7 is time-ordered,
	// so events sort by creation time.
	ID string `json:"id"`

	// Tier is the name of the tier the mutation targeted.
	Tier string `json:"tier"`

	// Op names the operation that resolved the collision ("insert").
	Op string `json:"op"`

	// Policy is the collision policy that was applied ("replace", "merge").
	Policy string `json:"policy"`

	// Attempted is the rendered form of the entry being inserted.
	Attempted string `json:"attempted"`

	// Collisions holds the rendered forms of the displaced entries.
	Collisions []string `json:"collisions"`
}

// NewEvent creates an Event with a fresh UUIDv7 ID.
// Falls back to UUIDv4 if the monotonic clock source fails.
func NewEvent(tier, op, policy, attempted string, collisions []string) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{
		ID:         id.String(),
		Tier:       tier,
		Op:         op,
		Policy:     policy,
		Attempted:  attempted,
		Collisions: collisions,
	}
}

// Reporter receives collision events from tier operations.
// Implementations must not retain the Collisions slice beyond the call.
type Reporter interface {
	Collision(ev Event)
}

// SlogReporter logs collision events through log/slog at Warn level.
type SlogReporter struct {
	// Logger is the destination logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Collision implements Reporter.
func (r *SlogReporter) Collision(ev Event) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("collision resolved",
		"event_id", ev.ID,
		"tier", ev.Tier,
		"op", ev.Op,
		"policy", ev.Policy,
		"attempted", ev.Attempted,
		"collisions", ev.Collisions,
	)
}

// Collector accumulates events in memory. Useful in tests and batch
// tooling that reports collisions after the fact.
type Collector struct {
	Events []Event
}

// Collision implements Reporter.
func (c *Collector) Collision(ev Event) {
	c.Events = append(c.Events, ev)
}
