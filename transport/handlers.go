package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/fleet-alerts/command"
	"github.com/goliatone/fleet-alerts/core"
	"github.com/goliatone/fleet-alerts/query"
)

// maxBodyBytes caps webhook payloads. The provider batches are small; a
// megabyte of headroom is generous.
const maxBodyBytes = 1 << 20

func (rt *Router) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		rt.logger.Warn("webhook body read failed", "error", err.Error())
		writeJSON(w, http.StatusBadRequest, errorBody("rejected", "request body unreadable", core.ErrorMalformedPayload))
		return
	}

	req := core.InboundRequest{
		ProviderID: chi.URLParam(r, "provider"),
		Headers:    flattenHeaders(r.Header),
		Body:       body,
	}
	msg := command.ProcessDeliveryMessage{Request: req}
	if err := msg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("rejected", err.Error(), core.ErrorMalformedPayload))
		return
	}

	collector := gocmd.NewResult[core.InboundResult]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)

	execErr := rt.process.Execute(ctx, msg)
	result, stored := collector.Load()
	if execErr != nil {
		mapped := core.MapError(execErr)
		status := mapped.Code
		if stored && result.StatusCode != 0 {
			status = result.StatusCode
		}
		writeJSON(w, status, errorBody("rejected", mapped.Message, mapped.TextCode))
		return
	}
	if !stored {
		writeJSON(w, http.StatusInternalServerError, errorBody("rejected", "delivery produced no result", core.ErrorInternal))
		return
	}

	writeJSON(w, result.StatusCode, deliveryBody(result))
}

func (rt *Router) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := rt.listRecent.Query(r.Context(), query.ListRecentEventsMessage{})
	if err != nil {
		mapped := core.MapError(err)
		rt.logger.Error("event listing failed", "error", mapped.Message)
		writeJSON(w, mapped.Code, errorBody("error", "could not load events", mapped.TextCode))
		return
	}

	out := make([]eventView, 0, len(events))
	for _, event := range events {
		out = append(out, viewFromEvent(event))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": out,
		"count":  len(out),
	})
}

func (rt *Router) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": rt.serviceName,
	})
}

// eventView is the reporting API shape of one persisted event.
type eventView struct {
	ID          string    `json:"id"`
	EventType   string    `json:"event_type"`
	VehicleUnit string    `json:"vehicle_unit"`
	Timestamp   time.Time `json:"timestamp"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	Speed       *float64  `json:"speed,omitempty"`
	Limit       *float64  `json:"limit,omitempty"`
	MapLink     *string   `json:"map_link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func viewFromEvent(event core.Event) eventView {
	return eventView{
		ID:          event.ID,
		EventType:   event.EventType,
		VehicleUnit: event.VehicleUnit,
		Timestamp:   event.Timestamp,
		Lat:         event.Lat,
		Lon:         event.Lon,
		Speed:       event.Speed,
		Limit:       event.Limit,
		MapLink:     event.MapLink,
		CreatedAt:   event.CreatedAt,
	}
}

func deliveryBody(result core.InboundResult) map[string]any {
	body := map[string]any{
		"status":             result.Status,
		"accepted_event_ids": result.EventIDs,
		"accepted":           result.AcceptedCount,
		"ignored":            result.IgnoredCount,
		"skipped":            result.SkippedCount,
	}
	if result.Reason != "" {
		body["reason"] = result.Reason
	}
	return body
}

func errorBody(status string, reason string, textCode string) map[string]any {
	return map[string]any{
		"status":    status,
		"reason":    reason,
		"text_code": textCode,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func flattenHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		out[key] = values[0]
	}
	return out
}
