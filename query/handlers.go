package query

import (
	"context"

	"github.com/goliatone/fleet-alerts/core"
)

type EventsReader interface {
	ListRecent(ctx context.Context, limit int) ([]core.Event, error)
}

type ListRecentEventsQuery struct {
	reader EventsReader
}

func NewListRecentEventsQuery(reader EventsReader) *ListRecentEventsQuery {
	return &ListRecentEventsQuery{reader: reader}
}

func (q *ListRecentEventsQuery) Query(ctx context.Context, msg ListRecentEventsMessage) ([]core.Event, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: events reader is required")
	}
	return q.reader.ListRecent(ctx, msg.Limit)
}
