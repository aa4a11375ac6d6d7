package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/fleet-alerts/core"
)

type eventRecord struct {
	bun.BaseModel `bun:"table:telemetry_events,alias:te"`

	ID          string    `bun:"id,pk"`
	EventType   string    `bun:"event_type,notnull"`
	VehicleUnit string    `bun:"vehicle_unit,notnull"`
	Timestamp   time.Time `bun:"timestamp,notnull"`
	Lat         *float64  `bun:"lat"`
	Lon         *float64  `bun:"lon"`
	Speed       *float64  `bun:"speed"`
	Limit       *float64  `bun:"speed_limit"`
	MapLink     *string   `bun:"map_link"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func recordFromEvent(event core.Event) *eventRecord {
	return &eventRecord{
		ID:          event.ID,
		EventType:   event.EventType,
		VehicleUnit: event.VehicleUnit,
		Timestamp:   event.Timestamp.UTC(),
		Lat:         event.Lat,
		Lon:         event.Lon,
		Speed:       event.Speed,
		Limit:       event.Limit,
		MapLink:     event.MapLink,
		CreatedAt:   event.CreatedAt,
	}
}

func (r *eventRecord) toDomain() core.Event {
	if r == nil {
		return core.Event{}
	}
	return core.Event{
		ID:          r.ID,
		EventType:   r.EventType,
		VehicleUnit: r.VehicleUnit,
		Timestamp:   r.Timestamp,
		Lat:         r.Lat,
		Lon:         r.Lon,
		Speed:       r.Speed,
		Limit:       r.Limit,
		MapLink:     r.MapLink,
		CreatedAt:   r.CreatedAt,
	}
}
