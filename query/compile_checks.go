package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/fleet-alerts/core"
)

var (
	_ gocmd.Querier[ListRecentEventsMessage, []core.Event] = (*ListRecentEventsQuery)(nil)
)
