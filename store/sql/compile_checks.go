package sqlstore

import "github.com/goliatone/fleet-alerts/core"

var (
	_ core.EventStore = (*EventStore)(nil)
	_ core.EventBatch = (*eventBatch)(nil)
)
