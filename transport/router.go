package transport

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/fleet-alerts/command"
	"github.com/goliatone/fleet-alerts/core"
	"github.com/goliatone/fleet-alerts/query"
)

// Router wires the HTTP surface: the provider webhook, the reporting API,
// and liveness probes.
type Router struct {
	serviceName string
	process     *command.ProcessDeliveryCommand
	listRecent  *query.ListRecentEventsQuery
	dashboard   core.DashboardConfig
	logger      glog.Logger
}

func NewRouter(
	serviceName string,
	process *command.ProcessDeliveryCommand,
	listRecent *query.ListRecentEventsQuery,
	dashboard core.DashboardConfig,
	logger glog.Logger,
) (*Router, error) {
	if process == nil {
		return nil, fmt.Errorf("transport: process delivery command is required")
	}
	if listRecent == nil {
		return nil, fmt.Errorf("transport: list recent events query is required")
	}
	return &Router{
		serviceName: serviceName,
		process:     process,
		listRecent:  listRecent,
		dashboard:   dashboard,
		logger:      glog.Ensure(logger),
	}, nil
}

// Handler builds the chi mux. Recoverer is the 500 boundary for anything
// that escapes the error taxonomy.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhook/{provider}", rt.handleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(rt.basicAuth)
		r.Get("/api/events", rt.handleListEvents)
	})

	r.Get("/health", rt.handleLiveness)
	r.Get("/", rt.handleLiveness)

	return r
}
