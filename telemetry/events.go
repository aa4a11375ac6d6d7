package telemetry

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/fleet-alerts/core"
)

const (
	ActionSpeedingCreated = "speeding_event_created"
	ActionSafetyCreated   = "safety_event_created"
)

// Kind is the classification of one raw provider event. Anything without a
// recognized action discriminator is Ignored, never an error.
type Kind string

const (
	KindSpeeding Kind = "speeding"
	KindSafety   Kind = "safety"
	KindIgnored  Kind = "ignored"
)

// RawEvent is one untyped provider event as decoded from the delivery body.
type RawEvent map[string]any

func Classify(raw RawEvent) Kind {
	action, _ := raw["action"].(string)
	switch strings.TrimSpace(action) {
	case ActionSpeedingCreated:
		return KindSpeeding
	case ActionSafetyCreated:
		return KindSafety
	default:
		return KindIgnored
	}
}

// SpeedingEvent is the validated view of a speeding_event_created payload.
// All speeds are in kph as delivered by the provider.
type SpeedingEvent struct {
	ID                     int64
	DriverID               int64
	VehicleID              int64
	MaxVehicleSpeedKph     float64
	MaxPostedSpeedLimitKph float64
	MaxOverSpeedKph        float64
	Status                 string
}

func DecodeSpeeding(raw RawEvent) (SpeedingEvent, error) {
	var event SpeedingEvent
	var err error

	if event.ID, err = intField(raw, "id"); err != nil {
		return SpeedingEvent{}, err
	}
	if event.DriverID, err = intField(raw, "driver_id"); err != nil {
		return SpeedingEvent{}, err
	}
	if event.VehicleID, err = intField(raw, "vehicle_id"); err != nil {
		return SpeedingEvent{}, err
	}
	if event.MaxVehicleSpeedKph, err = floatField(raw, "max_vehicle_speed"); err != nil {
		return SpeedingEvent{}, err
	}
	if event.MaxPostedSpeedLimitKph, err = floatField(raw, "max_posted_speed_limit_in_kph"); err != nil {
		return SpeedingEvent{}, err
	}
	if event.MaxOverSpeedKph, err = floatField(raw, "max_over_speed_in_kph"); err != nil {
		return SpeedingEvent{}, err
	}
	if status, ok := raw["status"].(string); ok {
		event.Status = strings.TrimSpace(status)
	}
	return event, nil
}

// SafetyEvent is the validated view of a safety_event_created payload. The
// provider does not guarantee an event id, so ID stays nil when absent
// instead of collapsing to a zero sentinel. Raw keeps the open field set
// for subtype detection.
type SafetyEvent struct {
	VehicleID int64
	ID        *int64
	DriverID  *int64
	Raw       RawEvent
}

func DecodeSafety(raw RawEvent) (SafetyEvent, error) {
	vehicleID, err := intField(raw, "vehicle_id")
	if err != nil {
		return SafetyEvent{}, err
	}
	event := SafetyEvent{VehicleID: vehicleID, Raw: raw}
	if id, ok := optionalIntField(raw, "id"); ok {
		event.ID = &id
	}
	if driverID, ok := optionalIntField(raw, "driver_id"); ok {
		event.DriverID = &driverID
	}
	return event, nil
}

func intField(raw RawEvent, key string) (int64, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return 0, validationError(key, fmt.Sprintf("telemetry: %s is required", key))
	}
	parsed, ok := asInt(value)
	if !ok {
		return 0, validationError(key, fmt.Sprintf("telemetry: %s must be an integer, got %T", key, value))
	}
	return parsed, nil
}

func optionalIntField(raw RawEvent, key string) (int64, bool) {
	value, ok := raw[key]
	if !ok || value == nil {
		return 0, false
	}
	return asInt(value)
}

func floatField(raw RawEvent, key string) (float64, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return 0, validationError(key, fmt.Sprintf("telemetry: %s is required", key))
	}
	parsed, ok := asFloat(value)
	if !ok {
		return 0, validationError(key, fmt.Sprintf("telemetry: %s must be numeric, got %T", key, value))
	}
	return parsed, nil
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func validationError(field string, message string) error {
	return goerrors.NewValidation("telemetry: event validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorValidationFailed)
}
