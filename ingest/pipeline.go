package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/fleet-alerts/alerts"
	"github.com/goliatone/fleet-alerts/core"
	"github.com/goliatone/fleet-alerts/telemetry"
	"github.com/goliatone/fleet-alerts/units"
	"github.com/goliatone/fleet-alerts/webhooks"
)

const (
	StatusAccepted = "accepted"
	StatusIgnored  = "ignored"
	StatusRejected = "rejected"
)

// AlertScheduler queues alert messages for asynchronous delivery after the
// transaction committed. alerts.Scheduler satisfies it; tests use a stub.
type AlertScheduler interface {
	Enqueue(text string) bool
}

// Pipeline processes one webhook delivery end to end: verify, parse, then
// per-event validate, enrich, persist, and queue alerts. Per-event failures
// are logged and skipped; only verification, parse, and commit failures
// reject the delivery.
type Pipeline struct {
	template   webhooks.ProviderWebhookTemplate
	store      core.EventStore
	resolver   core.UnitResolver
	dispatcher *alerts.Dispatcher
	scheduler  AlertScheduler
	logger     glog.Logger
	now        func() time.Time
}

type Option func(*Pipeline)

// WithClock swaps the ingestion-time source, used when payloads carry no
// usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func New(
	template webhooks.ProviderWebhookTemplate,
	store core.EventStore,
	resolver core.UnitResolver,
	dispatcher *alerts.Dispatcher,
	scheduler AlertScheduler,
	logger glog.Logger,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("ingest: event store is required")
	}
	p := &Pipeline{
		template:   template,
		store:      store,
		resolver:   resolver,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		logger:     glog.Ensure(logger),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

func (p *Pipeline) Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if p == nil || p.store == nil {
		err := internalError("ingest: pipeline is not configured", nil)
		return rejection(err), err
	}

	if p.template.Verifier != nil {
		if err := p.template.Verifier.Verify(ctx, req); err != nil {
			mapped := core.MapError(err)
			p.logger.Warn("webhook verification failed",
				"provider", req.ProviderID,
				"text_code", mapped.TextCode,
				"error", mapped.Message,
			)
			return rejection(mapped), mapped
		}
	}

	raws, singleObject, err := decodeDelivery(req.Body)
	if err != nil {
		mapped := core.MapError(err)
		p.logger.Warn("webhook payload rejected",
			"provider", req.ProviderID,
			"text_code", mapped.TextCode,
			"error", mapped.Message,
		)
		return rejection(mapped), mapped
	}

	batch, err := p.store.Begin(ctx)
	if err != nil {
		mapped := internalError("ingest: open event batch", err)
		p.logger.Error("event batch open failed", "error", err.Error())
		return rejection(mapped), mapped
	}

	now := p.now().UTC()
	result := core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Status:     StatusAccepted,
		EventIDs:   []int64{},
	}
	var pending []string

	for i, raw := range raws {
		switch telemetry.Classify(raw) {
		case telemetry.KindSpeeding:
			event, decodeErr := telemetry.DecodeSpeeding(raw)
			if decodeErr != nil {
				if reject := p.skipInvalid(batch, singleObject, i, decodeErr); reject != nil {
					return rejection(reject), reject
				}
				result.SkippedCount++
				continue
			}
			record := p.buildSpeedingRecord(ctx, event, raw, now)
			if _, appendErr := batch.Append(ctx, record); appendErr != nil {
				p.logPersistenceFailure(i, appendErr)
				result.SkippedCount++
				continue
			}
			result.AcceptedCount++
			result.EventIDs = append(result.EventIDs, event.ID)
			if text, send := p.dispatcher.SpeedingAlert(ctx, event, record.MapLink); send {
				pending = append(pending, text)
			}

		case telemetry.KindSafety:
			event, decodeErr := telemetry.DecodeSafety(raw)
			if decodeErr != nil {
				if reject := p.skipInvalid(batch, singleObject, i, decodeErr); reject != nil {
					return rejection(reject), reject
				}
				result.SkippedCount++
				continue
			}
			subtype := telemetry.NormalizeSafetySubtype(raw)
			record := p.buildSafetyRecord(ctx, event, subtype, raw, now)
			if _, appendErr := batch.Append(ctx, record); appendErr != nil {
				p.logPersistenceFailure(i, appendErr)
				result.SkippedCount++
				continue
			}
			result.AcceptedCount++
			if event.ID != nil {
				result.EventIDs = append(result.EventIDs, *event.ID)
			}
			if text := p.dispatcher.SafetyAlert(ctx, event, subtype, record.MapLink); text != "" {
				pending = append(pending, text)
			}

		default:
			result.IgnoredCount++
		}
	}

	if err := batch.Commit(); err != nil {
		mapped := internalError("ingest: commit event batch", err)
		p.logger.Error("event batch commit failed", "error", err.Error())
		return rejection(mapped), mapped
	}

	if p.scheduler != nil {
		for _, text := range pending {
			p.scheduler.Enqueue(text)
		}
	}

	if result.AcceptedCount == 0 {
		result.Status = StatusIgnored
		result.Reason = "no events matched a recognized action"
	}
	return result, nil
}

// skipInvalid handles a per-event validation failure. For a single-object
// delivery the whole request is malformed and the batch is abandoned; inside
// an array the event is logged and the caller skips it.
func (p *Pipeline) skipInvalid(batch core.EventBatch, singleObject bool, index int, err error) *goerrors.Error {
	if singleObject {
		_ = batch.Rollback()
		return core.MapError(err)
	}
	mapped := core.MapError(err)
	p.logger.Warn("event validation failed, skipping",
		"event_index", index,
		"text_code", mapped.TextCode,
		"error", mapped.Message,
	)
	return nil
}

func (p *Pipeline) logPersistenceFailure(index int, err error) {
	p.logger.Error("event persistence failed, skipping",
		"event_index", index,
		"text_code", core.ErrorPersistenceFailed,
		"error", err.Error(),
	)
}

func (p *Pipeline) buildSpeedingRecord(ctx context.Context, event telemetry.SpeedingEvent, raw telemetry.RawEvent, now time.Time) core.Event {
	lat, lon := telemetry.ExtractLocation(raw)
	speed := alerts.ToMph(event.MaxVehicleSpeedKph)
	limit := alerts.ToMph(event.MaxPostedSpeedLimitKph)
	return core.Event{
		EventType:   core.EventTypeSpeeding,
		VehicleUnit: p.unitLabel(ctx, event.VehicleID),
		Timestamp:   eventTime(raw, now),
		Lat:         lat,
		Lon:         lon,
		Speed:       &speed,
		Limit:       &limit,
		MapLink:     telemetry.BuildMapLink(lat, lon),
	}
}

func (p *Pipeline) buildSafetyRecord(ctx context.Context, event telemetry.SafetyEvent, subtype string, raw telemetry.RawEvent, now time.Time) core.Event {
	lat, lon := telemetry.ExtractLocation(raw)
	return core.Event{
		EventType:   subtype,
		VehicleUnit: p.unitLabel(ctx, event.VehicleID),
		Timestamp:   eventTime(raw, now),
		Lat:         lat,
		Lon:         lon,
		MapLink:     telemetry.BuildMapLink(lat, lon),
	}
}

func (p *Pipeline) unitLabel(ctx context.Context, vehicleID int64) string {
	if p.resolver == nil {
		return units.UnknownUnitLabel
	}
	return p.resolver.Resolve(ctx, vehicleID)
}

func eventTime(raw telemetry.RawEvent, now time.Time) time.Time {
	if ts := telemetry.ExtractTimestamp(raw); ts != nil {
		return *ts
	}
	return now
}

func decodeDelivery(body []byte) ([]telemetry.RawEvent, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, malformedError("ingest: request body is empty")
	}
	switch trimmed[0] {
	case '[':
		var raws []telemetry.RawEvent
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, false, malformedError("ingest: malformed JSON array: " + err.Error())
		}
		return raws, false, nil
	case '{':
		var raw telemetry.RawEvent
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, false, malformedError("ingest: malformed JSON object: " + err.Error())
		}
		return []telemetry.RawEvent{raw}, true, nil
	default:
		return nil, false, malformedError("ingest: body must be a JSON object or array")
	}
}

func rejection(err *goerrors.Error) core.InboundResult {
	result := core.InboundResult{
		Accepted: false,
		Status:   StatusRejected,
	}
	if err != nil {
		result.StatusCode = err.Code
		result.Reason = err.Message
	}
	if result.StatusCode == 0 {
		result.StatusCode = http.StatusInternalServerError
	}
	return result
}

func malformedError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorMalformedPayload)
}

func internalError(message string, cause error) *goerrors.Error {
	if cause != nil {
		return goerrors.Wrap(cause, goerrors.CategoryInternal, message).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ErrorInternal)
	}
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}

var _ core.DeliveryProcessor = (*Pipeline)(nil)
