package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/fleet-alerts/core"
)

type stubReader struct {
	events []core.Event
	err    error
	limits []int
}

func (s *stubReader) ListRecent(_ context.Context, limit int) ([]core.Event, error) {
	s.limits = append(s.limits, limit)
	return s.events, s.err
}

func TestListRecentEventsMessage_Validate(t *testing.T) {
	if err := (ListRecentEventsMessage{Limit: -1}).Validate(); err == nil {
		t.Fatalf("expected negative limit to fail validation")
	}
	if err := (ListRecentEventsMessage{Limit: 0}).Validate(); err != nil {
		t.Fatalf("expected zero limit to validate, got %v", err)
	}
}

func TestListRecentEventsQuery_DelegatesToReader(t *testing.T) {
	reader := &stubReader{events: []core.Event{
		{ID: "a", EventType: core.EventTypeSpeeding},
		{ID: "b", EventType: core.EventTypeHardBrake},
	}}
	qry := NewListRecentEventsQuery(reader)

	events, err := qry.Query(context.Background(), ListRecentEventsMessage{Limit: 25})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if len(reader.limits) != 1 || reader.limits[0] != 25 {
		t.Fatalf("expected limit passed through, got %v", reader.limits)
	}
}

func TestListRecentEventsQuery_PropagatesReaderError(t *testing.T) {
	qry := NewListRecentEventsQuery(&stubReader{err: errors.New("db gone")})
	if _, err := qry.Query(context.Background(), ListRecentEventsMessage{}); err == nil {
		t.Fatalf("expected reader error to propagate")
	}
}

func TestListRecentEventsQuery_RequiresReader(t *testing.T) {
	qry := NewListRecentEventsQuery(nil)
	if _, err := qry.Query(context.Background(), ListRecentEventsMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}
