package telemetry

import (
	"encoding/json"
	"testing"
)

func decodeRaw(t *testing.T, payload string) RawEvent {
	t.Helper()
	var raw RawEvent
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return raw
}

func TestClassify(t *testing.T) {
	cases := []struct {
		payload string
		want    Kind
	}{
		{`{"action":"speeding_event_created"}`, KindSpeeding},
		{`{"action":"safety_event_created"}`, KindSafety},
		{`{"action":"vehicle_created"}`, KindIgnored},
		{`{"id":1}`, KindIgnored},
		{`{"action":42}`, KindIgnored},
	}
	for _, tc := range cases {
		if got := Classify(decodeRaw(t, tc.payload)); got != tc.want {
			t.Fatalf("classify %s: expected %s, got %s", tc.payload, tc.want, got)
		}
	}
}

func TestDecodeSpeeding(t *testing.T) {
	raw := decodeRaw(t, `{
		"action": "speeding_event_created",
		"id": 101,
		"driver_id": 7,
		"vehicle_id": 42,
		"max_vehicle_speed": 70,
		"max_posted_speed_limit_in_kph": 50,
		"max_over_speed_in_kph": 20,
		"status": "active"
	}`)

	event, err := DecodeSpeeding(raw)
	if err != nil {
		t.Fatalf("decode speeding: %v", err)
	}
	if event.ID != 101 || event.DriverID != 7 || event.VehicleID != 42 {
		t.Fatalf("unexpected ids: %+v", event)
	}
	if event.MaxVehicleSpeedKph != 70 || event.MaxPostedSpeedLimitKph != 50 || event.MaxOverSpeedKph != 20 {
		t.Fatalf("unexpected speeds: %+v", event)
	}
	if event.Status != "active" {
		t.Fatalf("expected status active, got %q", event.Status)
	}
}

func TestDecodeSpeeding_MissingAndMistypedFields(t *testing.T) {
	if _, err := DecodeSpeeding(decodeRaw(t, `{"action":"speeding_event_created","driver_id":7}`)); err == nil {
		t.Fatalf("expected missing id to fail")
	}
	if _, err := DecodeSpeeding(decodeRaw(t, `{
		"id": "one-oh-one",
		"driver_id": 7,
		"vehicle_id": 42,
		"max_vehicle_speed": 70,
		"max_posted_speed_limit_in_kph": 50,
		"max_over_speed_in_kph": 20
	}`)); err == nil {
		t.Fatalf("expected mistyped id to fail")
	}
}

func TestDecodeSafety(t *testing.T) {
	raw := decodeRaw(t, `{
		"action": "safety_event_created",
		"vehicle_id": 42,
		"event_type": "Hard Braking Event"
	}`)

	event, err := DecodeSafety(raw)
	if err != nil {
		t.Fatalf("decode safety: %v", err)
	}
	if event.VehicleID != 42 {
		t.Fatalf("expected vehicle 42, got %d", event.VehicleID)
	}
	if event.ID != nil {
		t.Fatalf("expected absent id to stay nil, got %d", *event.ID)
	}
	if event.Raw["event_type"] != "Hard Braking Event" {
		t.Fatalf("expected raw field set to be preserved")
	}
}

func TestDecodeSafety_RequiresVehicleID(t *testing.T) {
	if _, err := DecodeSafety(decodeRaw(t, `{"action":"safety_event_created","id":9}`)); err == nil {
		t.Fatalf("expected missing vehicle_id to fail")
	}
}
