package query

import "fmt"

const (
	TypeListRecentEvents = "fleet.query.events.list_recent"
)

// ListRecentEventsMessage requests the newest persisted events for the
// reporting dashboard. Limit 0 means the store default.
type ListRecentEventsMessage struct {
	Limit int
}

func (ListRecentEventsMessage) Type() string { return TypeListRecentEvents }

func (m ListRecentEventsMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
