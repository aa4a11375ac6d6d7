package units

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultRequestTimeout     = 10 * time.Second
	maxDirectoryResponseBytes = 1 << 20 // 1 MiB
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FleetDirectory resolves labels against the provider's fleet API. It is a
// read-only collaborator: the resolver wraps every failure in a sentinel,
// so this client only has to report them honestly.
type FleetDirectory struct {
	baseURL        string
	apiKey         string
	httpClient     HTTPDoer
	requestTimeout time.Duration
}

type DirectoryConfig struct {
	BaseURL        string
	APIKey         string
	HTTPClient     HTTPDoer
	RequestTimeout time.Duration
}

func NewFleetDirectory(cfg DirectoryConfig) (*FleetDirectory, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("units: directory base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &FleetDirectory{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		httpClient:     httpClient,
		requestTimeout: timeout,
	}, nil
}

func (d *FleetDirectory) UnitLabel(ctx context.Context, vehicleID int64) (string, error) {
	var payload struct {
		Vehicle struct {
			Number string `json:"number"`
			Name   string `json:"name"`
		} `json:"vehicle"`
	}
	url := fmt.Sprintf("%s/v1/vehicles/%d", d.baseURL, vehicleID)
	if err := d.getJSON(ctx, url, &payload); err != nil {
		return "", err
	}
	if label := strings.TrimSpace(payload.Vehicle.Number); label != "" {
		return label, nil
	}
	return strings.TrimSpace(payload.Vehicle.Name), nil
}

func (d *FleetDirectory) DriverName(ctx context.Context, driverID int64) (string, error) {
	var payload struct {
		User struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"user"`
	}
	url := fmt.Sprintf("%s/v1/users/%d", d.baseURL, driverID)
	if err := d.getJSON(ctx, url, &payload); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.TrimSpace(payload.User.FirstName) + " " + strings.TrimSpace(payload.User.LastName)), nil
}

func (d *FleetDirectory) getJSON(ctx context.Context, url string, out any) error {
	if d == nil || d.httpClient == nil {
		return fmt.Errorf("units: directory client is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, d.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("units: build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if d.apiKey != "" {
		req.Header.Set("X-Api-Key", d.apiKey)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("units: directory request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("units: directory returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectoryResponseBytes))
	if err != nil {
		return fmt.Errorf("units: read directory response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("units: decode directory response: %w", err)
	}
	return nil
}
