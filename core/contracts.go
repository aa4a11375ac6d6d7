package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// EventStore is the source of truth for the reporting dashboard. Appends
// happen inside a caller-scoped batch so one delivery commits atomically.
type EventStore interface {
	Begin(ctx context.Context) (EventBatch, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// EventBatch scopes all writes of one delivery to a single transaction.
// Append failures are per-event: the caller logs and moves on, the batch
// stays usable for sibling events.
type EventBatch interface {
	Append(ctx context.Context, event Event) (Event, error)
	Commit() error
	Rollback() error
}

// UnitResolver maps ids to display labels. Implementations never fail the
// caller: unresolvable ids yield sentinel labels.
type UnitResolver interface {
	Resolve(ctx context.Context, vehicleID int64) string
	ResolveDriver(ctx context.Context, driverID int64) string
}

// Notifier delivers one formatted alert. Delivery is best effort; the
// caller owns timeouts and logging.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

type DeliveryProcessor interface {
	Process(ctx context.Context, req InboundRequest) (InboundResult, error)
}
