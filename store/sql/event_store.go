package sqlstore

import (
	"context"
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/fleet-alerts/core"
)

const maxListLimit = 50

// EventStore persists enriched telemetry events. Each webhook delivery gets
// one batch: the pipeline appends per event and commits once at the end.
type EventStore struct {
	db   *bun.DB
	repo repository.Repository[*eventRecord]
}

func NewEventStore(db *bun.DB) (*EventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*eventRecord](db, eventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid event repository wiring: %w", err)
		}
	}
	return &EventStore{db: db, repo: repo}, nil
}

func NewEventStoreFromPersistence(client *persistence.Client) (*EventStore, error) {
	if client == nil {
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	}
	return NewEventStore(client.DB())
}

func (s *EventStore) Begin(ctx context.Context) (core.EventBatch, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: event store is not configured")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin event batch: %w", err)
	}
	return &eventBatch{tx: tx, repo: s.repo}, nil
}

func (s *EventStore) ListRecent(ctx context.Context, limit int) ([]core.Event, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: event store is not configured")
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("timestamp DESC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list recent events: %w", err)
	}
	events := make([]core.Event, 0, len(records))
	for _, record := range records {
		events = append(events, record.toDomain())
	}
	return events, nil
}

type eventBatch struct {
	tx   bun.Tx
	repo repository.Repository[*eventRecord]
	done bool
}

func (b *eventBatch) Append(ctx context.Context, event core.Event) (core.Event, error) {
	if b == nil || b.repo == nil {
		return core.Event{}, fmt.Errorf("sqlstore: event batch is not configured")
	}
	if b.done {
		return core.Event{}, fmt.Errorf("sqlstore: event batch is already closed")
	}
	if err := event.Validate(); err != nil {
		return core.Event{}, err
	}

	record := recordFromEvent(event)
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	inserted, err := b.repo.CreateTx(ctx, b.tx, record)
	if err != nil {
		return core.Event{}, fmt.Errorf("sqlstore: append event: %w", err)
	}
	return inserted.toDomain(), nil
}

func (b *eventBatch) Commit() error {
	if b == nil {
		return fmt.Errorf("sqlstore: event batch is not configured")
	}
	if b.done {
		return fmt.Errorf("sqlstore: event batch is already closed")
	}
	b.done = true
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit event batch: %w", err)
	}
	return nil
}

func (b *eventBatch) Rollback() error {
	if b == nil || b.done {
		return nil
	}
	b.done = true
	return b.tx.Rollback()
}
