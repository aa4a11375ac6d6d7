package units

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type scriptedDoer struct {
	status   int
	body     string
	requests []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(bytes.NewBufferString(d.body)),
	}, nil
}

func TestFleetDirectory_UnitLabelPrefersNumber(t *testing.T) {
	doer := &scriptedDoer{status: http.StatusOK, body: `{"vehicle": {"number": "Unit 12", "name": "Freightliner"}}`}
	directory, err := NewFleetDirectory(DirectoryConfig{
		BaseURL:    "https://fleet.example.com/",
		APIKey:     "key-123",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	label, err := directory.UnitLabel(context.Background(), 42)
	if err != nil {
		t.Fatalf("unit label: %v", err)
	}
	if label != "Unit 12" {
		t.Fatalf("expected number to win, got %q", label)
	}

	req := doer.requests[0]
	if req.URL.String() != "https://fleet.example.com/v1/vehicles/42" {
		t.Fatalf("unexpected url %q", req.URL.String())
	}
	if req.Header.Get("X-Api-Key") != "key-123" {
		t.Fatalf("expected api key header, got %q", req.Header.Get("X-Api-Key"))
	}
}

func TestFleetDirectory_UnitLabelFallsBackToName(t *testing.T) {
	doer := &scriptedDoer{status: http.StatusOK, body: `{"vehicle": {"name": "Freightliner"}}`}
	directory, err := NewFleetDirectory(DirectoryConfig{BaseURL: "https://fleet.example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	label, err := directory.UnitLabel(context.Background(), 42)
	if err != nil {
		t.Fatalf("unit label: %v", err)
	}
	if label != "Freightliner" {
		t.Fatalf("expected name fallback, got %q", label)
	}
}

func TestFleetDirectory_DriverNameJoinsParts(t *testing.T) {
	doer := &scriptedDoer{status: http.StatusOK, body: `{"user": {"first_name": "Pat", "last_name": "Jones"}}`}
	directory, err := NewFleetDirectory(DirectoryConfig{BaseURL: "https://fleet.example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	name, err := directory.DriverName(context.Background(), 7)
	if err != nil {
		t.Fatalf("driver name: %v", err)
	}
	if name != "Pat Jones" {
		t.Fatalf("expected joined name, got %q", name)
	}
}

func TestFleetDirectory_NonOKStatusIsError(t *testing.T) {
	doer := &scriptedDoer{status: http.StatusNotFound, body: `{}`}
	directory, err := NewFleetDirectory(DirectoryConfig{BaseURL: "https://fleet.example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	if _, err := directory.UnitLabel(context.Background(), 42); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestNewFleetDirectory_RequiresBaseURL(t *testing.T) {
	if _, err := NewFleetDirectory(DirectoryConfig{}); err == nil {
		t.Fatalf("expected missing base url to fail")
	}
}
