// Package coordinator combines the category caches and the ordered upstream
// providers into one data-access layer: cache-or-fetch with strictly
// sequential provider failover, tagging every served observation with the
// provider that actually produced it.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tyson-swetnam/raws-mcp/internal/cache"
	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/observability"
)

// Cache category labels, used in keys, metrics, and stats.
const (
	categoryCurrent = "current"
	categorySearch  = "search"
	categoryHistory = "history"
	categoryAlerts  = "alerts"
)

// TTLPolicy gives each data category its own cache lifetime. Current
// observations turn over in minutes, station metadata is near-static, and a
// fully elapsed history window is immutable.
type TTLPolicy struct {
	Current time.Duration
	Search  time.Duration
	History time.Duration
	Alerts  time.Duration
}

// Coordinator orchestrates caching and failover. Providers are consulted in
// slice order; the alerts provider is optional and best-effort. All methods
// are safe for concurrent use: the caches carry their own locking and the
// coordinator itself holds no other mutable state.
type Coordinator struct {
	providers []domain.Provider
	alerts    domain.AlertsProvider

	current      *cache.Cache[domain.Observation]
	search       *cache.Cache[[]domain.StationMeta]
	history      *cache.Cache[[]domain.Observation]
	alertResults *cache.Cache[[]domain.Alert]

	ttl     TTLPolicy
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Coordinator. alerts may be nil, which disables alert
// retrieval entirely: ActiveAlerts then returns empty without an upstream
// call. Each category gets its own cache of the given capacity.
func New(
	providers []domain.Provider,
	alerts domain.AlertsProvider,
	capacity int,
	ttl TTLPolicy,
	clk clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Coordinator {
	return &Coordinator{
		providers:    providers,
		alerts:       alerts,
		current:      cache.NewWithClock[domain.Observation](capacity, clk),
		search:       cache.NewWithClock[[]domain.StationMeta](capacity, clk),
		history:      cache.NewWithClock[[]domain.Observation](capacity, clk),
		alertResults: cache.NewWithClock[[]domain.Alert](capacity, clk),
		ttl:          ttl,
		logger:       logger,
		metrics:      metrics,
	}
}

// CurrentObservation returns the latest reading for a station, from cache
// when live, otherwise from the first provider that answers. The returned
// observation's Source names the serving provider; cache hits keep the
// source recorded at fetch time.
func (c *Coordinator) CurrentObservation(ctx context.Context, stationID string) (domain.Observation, error) {
	key := categoryCurrent + ":" + stationID

	if obs, ok := c.current.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues(categoryCurrent, "hit").Inc()
		return obs, nil
	}
	c.metrics.CacheLookups.WithLabelValues(categoryCurrent, "miss").Inc()

	obs, err := failover(ctx, c, "current", stationID, func(ctx context.Context, p domain.Provider) (domain.Observation, error) {
		return p.CurrentObservation(ctx, stationID)
	})
	if err != nil {
		return domain.Observation{}, err
	}

	c.current.Set(key, obs, c.ttl.Current)
	return obs, nil
}

// SearchStations returns stations near a point, cached per full query shape.
func (c *Coordinator) SearchStations(ctx context.Context, q domain.SearchQuery) ([]domain.StationMeta, error) {
	key := fmt.Sprintf("%s:%.4f:%.4f:%.1f:%d", categorySearch, q.Latitude, q.Longitude, q.RadiusMiles, q.Limit)

	if stations, ok := c.search.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues(categorySearch, "hit").Inc()
		return stations, nil
	}
	c.metrics.CacheLookups.WithLabelValues(categorySearch, "miss").Inc()

	stations, err := failover(ctx, c, "search", key, func(ctx context.Context, p domain.Provider) ([]domain.StationMeta, error) {
		return p.SearchStations(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	c.search.Set(key, stations, c.ttl.Search)
	return stations, nil
}

// History returns a station's time series, cached per station, window, and
// variable selection.
func (c *Coordinator) History(ctx context.Context, q domain.HistoryQuery) ([]domain.Observation, error) {
	key := fmt.Sprintf("%s:%s:%d:%d:%s",
		categoryHistory, q.StationID, q.Start.Unix(), q.End.Unix(), strings.Join(q.Variables, ","))

	if series, ok := c.history.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues(categoryHistory, "hit").Inc()
		return series, nil
	}
	c.metrics.CacheLookups.WithLabelValues(categoryHistory, "miss").Inc()

	series, err := failover(ctx, c, "history", q.StationID, func(ctx context.Context, p domain.Provider) ([]domain.Observation, error) {
		return p.History(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	c.history.Set(key, series, c.ttl.History)
	return series, nil
}

// ActiveAlerts returns alerts covering a point. Alert data is supplementary,
// so every failure degrades to "no alerts available": errors are logged and
// swallowed here, never propagated.
func (c *Coordinator) ActiveAlerts(ctx context.Context, lat, lon float64) []domain.Alert {
	if c.alerts == nil {
		c.metrics.AlertFetches.WithLabelValues("disabled").Inc()
		return nil
	}

	key := fmt.Sprintf("%s:%.2f:%.2f", categoryAlerts, lat, lon)
	if alerts, ok := c.alertResults.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues(categoryAlerts, "hit").Inc()
		return alerts
	}
	c.metrics.CacheLookups.WithLabelValues(categoryAlerts, "miss").Inc()

	alerts, err := c.alerts.ActiveAlerts(ctx, lat, lon)
	if err != nil {
		c.metrics.AlertFetches.WithLabelValues("error").Inc()
		c.logger.Warn("alert fetch failed, degrading to no alerts",
			"provider", c.alerts.Name(), "lat", lat, "lon", lon, "error", err)
		return nil
	}
	c.metrics.AlertFetches.WithLabelValues("success").Inc()

	c.alertResults.Set(key, alerts, c.ttl.Alerts)
	return alerts
}

// failover tries each provider in priority order, strictly sequentially, and
// returns the first success. Every failure is logged and counted; the last
// failure propagates when all providers are exhausted. A not-found from one
// provider still advances to the next, since the networks cover different
// station sets.
func failover[T any](
	ctx context.Context,
	c *Coordinator,
	operation, subject string,
	fetch func(context.Context, domain.Provider) (T, error),
) (T, error) {
	var zero T
	if len(c.providers) == 0 {
		return zero, fmt.Errorf("%w: no providers configured", domain.ErrUnavailable)
	}

	var lastErr error
	for i, p := range c.providers {
		start := time.Now()
		result, err := fetch(ctx, p)
		c.metrics.ProviderDuration.WithLabelValues(p.Name(), operation).Observe(time.Since(start).Seconds())

		if err != nil {
			c.metrics.ProviderRequests.WithLabelValues(p.Name(), operation, "error").Inc()
			c.logger.Warn("provider failed",
				"provider", p.Name(), "operation", operation, "subject", subject, "error", err)
			lastErr = err
			continue
		}

		c.metrics.ProviderRequests.WithLabelValues(p.Name(), operation, "success").Inc()
		if i > 0 {
			c.metrics.Failovers.WithLabelValues(operation).Inc()
			c.logger.Info("request served by fallback provider",
				"provider", p.Name(), "operation", operation, "subject", subject)
		}
		return tagSource(result, p.Name()), nil
	}

	return zero, fmt.Errorf("all providers failed for %s %s: %w", operation, subject, lastErr)
}

// tagSource stamps the serving provider onto results that carry a source
// field.
func tagSource[T any](result T, provider string) T {
	switch v := any(&result).(type) {
	case *domain.Observation:
		v.Source = provider
	case *[]domain.Observation:
		for i := range *v {
			(*v)[i].Source = provider
		}
	}
	return result
}

// Stats snapshots every category cache, keyed by category label.
func (c *Coordinator) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		categoryCurrent: c.current.Stats(),
		categorySearch:  c.search.Stats(),
		categoryHistory: c.history.Stats(),
		categoryAlerts:  c.alertResults.Stats(),
	}
}

// SweepExpired removes expired entries from all caches, updates the cache
// occupancy gauges, and returns the total removed.
func (c *Coordinator) SweepExpired() int {
	removed := c.current.SweepExpired() +
		c.search.SweepExpired() +
		c.history.SweepExpired() +
		c.alertResults.SweepExpired()

	for category, stats := range c.Stats() {
		c.metrics.CacheEntries.WithLabelValues(category).Set(float64(stats.Active))
	}
	return removed
}

// InvalidateStation drops any cached current observation for a station.
// History and search entries are keyed more broadly and age out on TTL.
func (c *Coordinator) InvalidateStation(stationID string) {
	c.current.Delete(categoryCurrent + ":" + stationID)
}
