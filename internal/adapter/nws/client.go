// Package nws implements the best-effort alerts provider against the
// National Weather Service API. Alert data is supplementary: the coordinator
// swallows failures from this client, so it classifies errors like the
// observation adapters but carries no availability promise.
package nws

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tyson-swetnam/raws-mcp/internal/adapter/httpclient"
	"github.com/tyson-swetnam/raws-mcp/internal/domain"
)

const providerName = "nws"

// Client implements domain.AlertsProvider using api.weather.gov.
type Client struct {
	baseURL   string
	userAgent string
	http      *httpclient.Client
}

// New creates an NWS alerts client. The NWS API requires an identifying
// User-Agent on every request. baseURL is overridable for tests; empty
// selects the production endpoint.
func New(baseURL, userAgent string, http *httpclient.Client) *Client {
	if baseURL == "" {
		baseURL = "https://api.weather.gov"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      http,
	}
}

// Name identifies this provider in logs and source attributions.
func (c *Client) Name() string { return providerName }

// ActiveAlerts returns the active hazard products covering a point.
func (c *Client) ActiveAlerts(ctx context.Context, lat, lon float64) ([]domain.Alert, error) {
	params := url.Values{
		"point": {fmt.Sprintf("%.4f,%.4f", lat, lon)},
	}

	header := http.Header{
		"User-Agent": {c.userAgent},
		"Accept":     {"application/geo+json"},
	}

	var resp alertsResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/alerts/active?"+params.Encode(), header, &resp); err != nil {
		return nil, fmt.Errorf("nws active alerts: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(resp.Features))
	for _, f := range resp.Features {
		alerts = append(alerts, adaptAlert(f))
	}
	return alerts, nil
}

// --- NWS API response types ---

type alertsResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string          `json:"id"`
	Properties alertProperties `json:"properties"`
}

type alertProperties struct {
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Onset       string `json:"onset"`
	Ends        string `json:"ends"`
	Expires     string `json:"expires"`
}

// adaptAlert maps one GeoJSON feature onto the canonical alert. NWS products
// sometimes carry an empty "ends"; the "expires" time stands in for it.
func adaptAlert(f feature) domain.Alert {
	end := f.Properties.Ends
	if end == "" {
		end = f.Properties.Expires
	}

	return domain.Alert{
		ID:          f.ID,
		Event:       f.Properties.Event,
		Headline:    f.Properties.Headline,
		Description: f.Properties.Description,
		Severity:    f.Properties.Severity,
		OnsetAt:     parseTime(f.Properties.Onset),
		ExpiresAt:   parseTime(end),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
