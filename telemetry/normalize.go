package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/fleet-alerts/core"
)

var (
	locationContainers = []string{"start_location", "location"}
	latitudeKeys       = []string{"lat", "latitude"}
	longitudeKeys      = []string{"lon", "longitude"}
	timestampKeys      = []string{"timestamp", "occurred_at", "created_at"}
	subtypeKeys        = []string{"safety_event_type", "event_type", "type", "subtype"}
)

// ExtractLocation pulls best-effort coordinates out of a raw event. Each
// axis resolves independently: nested start_location/location objects win
// over top-level keys, and non-numeric values degrade to nil rather than
// failing the event.
func ExtractLocation(raw RawEvent) (lat *float64, lon *float64) {
	return extractAxis(raw, latitudeKeys), extractAxis(raw, longitudeKeys)
}

func extractAxis(raw RawEvent, keys []string) *float64 {
	for _, container := range locationContainers {
		nested, ok := raw[container].(map[string]any)
		if !ok {
			continue
		}
		if value := lookupFloat(nested, keys); value != nil {
			return value
		}
	}
	return lookupFloat(raw, keys)
}

func lookupFloat(fields map[string]any, keys []string) *float64 {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		if parsed, ok := asFloat(value); ok {
			return &parsed
		}
	}
	return nil
}

// BuildMapLink returns a map URL only when both coordinates are present.
func BuildMapLink(lat *float64, lon *float64) *string {
	if lat == nil || lon == nil {
		return nil
	}
	link := fmt.Sprintf("https://www.google.com/maps?q=%f,%f", *lat, *lon)
	return &link
}

// ExtractTimestamp checks timestamp, occurred_at, then created_at and parses
// ISO-8601 with an optional trailing Z. Unparsable or absent values yield
// nil; the pipeline substitutes ingestion time.
func ExtractTimestamp(raw RawEvent) *time.Time {
	for _, key := range timestampKeys {
		value, ok := raw[key].(string)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
		if parsed, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

// NormalizeSafetySubtype maps the provider's free-form safety subtype onto
// the stored event types. Matching is case- and separator-insensitive on
// the first non-empty candidate field; anything unrecognized falls back to
// the generic safety type.
func NormalizeSafetySubtype(raw RawEvent) string {
	for _, key := range subtypeKeys {
		value, ok := raw[key].(string)
		if !ok {
			continue
		}
		normalized := normalizeLabel(value)
		if normalized == "" {
			continue
		}
		switch {
		case strings.Contains(normalized, "brake"), strings.Contains(normalized, "braking"):
			return core.EventTypeHardBrake
		case strings.Contains(normalized, "accel"):
			return core.EventTypeAcceleration
		case strings.Contains(normalized, "corner"):
			return core.EventTypeCornering
		default:
			return core.EventTypeSafety
		}
	}
	return core.EventTypeSafety
}

func normalizeLabel(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer("-", "", "_", "", " ", "")
	return replacer.Replace(lowered)
}
