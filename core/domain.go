package core

import (
	"strings"
	"time"
)

const (
	EventTypeSpeeding     = "speeding"
	EventTypeHardBrake    = "hard_brake"
	EventTypeAcceleration = "acceleration"
	EventTypeCornering    = "cornering"
	EventTypeSafety       = "safety"
)

// Event is the persisted, enriched view of a telemetry event. Records are
// append-only: the ingestion pipeline writes them once and the reporting
// surface only reads them.
type Event struct {
	ID          string
	EventType   string
	VehicleUnit string
	Timestamp   time.Time
	Lat         *float64
	Lon         *float64
	Speed       *float64
	Limit       *float64
	MapLink     *string
	CreatedAt   time.Time
}

func (e Event) Validate() error {
	if !IsKnownEventType(e.EventType) {
		return badInputError("core: unknown event type "+strings.TrimSpace(e.EventType), map[string]any{
			"event_type": e.EventType,
		})
	}
	if e.Timestamp.IsZero() {
		return badInputError("core: event timestamp is required", nil)
	}
	return nil
}

func IsKnownEventType(eventType string) bool {
	switch strings.TrimSpace(eventType) {
	case EventTypeSpeeding, EventTypeHardBrake, EventTypeAcceleration, EventTypeCornering, EventTypeSafety:
		return true
	}
	return false
}

// InboundRequest carries one webhook delivery exactly as received. Body must
// hold the raw request bytes: verification hashes them before any parsing.
type InboundRequest struct {
	ProviderID string
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// InboundResult is the synchronous outcome reported back to the provider.
// AcceptedCount+IgnoredCount+SkippedCount equals the number of events in
// the delivery once verification and parsing succeed.
type InboundResult struct {
	Accepted      bool
	StatusCode    int
	Status        string
	Reason        string
	EventIDs      []int64
	AcceptedCount int
	IgnoredCount  int
	SkippedCount  int
	Metadata      map[string]any
}
