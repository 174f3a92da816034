// Glowclock Core
// Copyright (c) 2026 The Glowclock Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glowclock Core.
//
// Glowclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glowclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.

// Package weather fetches and caches the gridpoint forecast from the
// National Weather Service API. Reads on the display tick path are served
// from cache and never block on the network; a stale cache triggers a
// background refresh and keeps returning the old forecast until the new one
// lands.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	defaultEndpoint = "https://api.weather.gov"
	defaultTTL      = 10 * time.Minute
	fetchTimeout    = 15 * time.Second

	// The NWS API requires an identifying User-Agent and may block the
	// default Go one.
	userAgent = "glowclock-core (https://github.com/GlowclockProject/glowclock-core)"
)

// Forecast is one display-ready forecast period. Text fields are already
// sanitized to the LCD's single-byte charset.
type Forecast struct {
	Name            string
	ShortForecast   string
	TemperatureUnit string
	Temperature     int
	PrecipChance    int // -1 when the API reports no value
}

// Wire types for the gridpoint forecast response.
type forecastResponse struct {
	Properties forecastProperties `json:"properties"`
}

type forecastProperties struct {
	Periods []forecastPeriod `json:"periods"`
}

type forecastPeriod struct {
	Name                       string       `json:"name"`
	TemperatureUnit            string       `json:"temperatureUnit"`
	ShortForecast              string       `json:"shortForecast"`
	ProbabilityOfPrecipitation precipChance `json:"probabilityOfPrecipitation"`
	Temperature                int          `json:"temperature"`
}

type precipChance struct {
	Value *int `json:"value"`
}

// Options locate the forecast gridpoint. Office and grid coordinates come
// from the NWS points lookup for the installation's latitude/longitude.
type Options struct {
	Endpoint string
	Office   string
	GridX    int
	GridY    int
	TTL      time.Duration
}

// Service caches the most recent forecast.
type Service struct {
	clock      clockwork.Clock
	client     *http.Client
	diskCache  *DiskCache
	fetchedAt  time.Time
	opts       Options
	cached     Forecast
	group      singleflight.Group
	mu         syncutil.RWMutex
	haveCached bool
	refreshing bool
}

type ServiceOption func(*Service)

// WithHTTPClient replaces the HTTP client, for tests.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.client = client
	}
}

// WithServiceClock replaces the wall clock, for tests.
func WithServiceClock(clock clockwork.Clock) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithDiskCache persists fetched forecasts to disk and primes the in-memory
// cache from the last persisted forecast on startup.
func WithDiskCache(cache *DiskCache) ServiceOption {
	return func(s *Service) {
		s.diskCache = cache
	}
}

func NewService(opts Options, svcOpts ...ServiceOption) *Service {
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	if opts.TTL == 0 {
		opts.TTL = defaultTTL
	}
	svc := &Service{
		opts:   opts,
		client: &http.Client{Timeout: fetchTimeout},
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range svcOpts {
		opt(svc)
	}

	if svc.diskCache != nil {
		if forecast, fetchedAt, ok := svc.diskCache.Load(); ok {
			svc.cached = forecast
			svc.haveCached = true
			svc.fetchedAt = fetchedAt
			log.Debug().
				Str("period", forecast.Name).
				Time("fetchedAt", fetchedAt).
				Msg("primed forecast from disk cache")
		}
	}

	return svc
}

// Current returns the cached forecast, if any. A stale or missing cache
// kicks off a background refresh; the caller still gets the stale value
// immediately. Safe for concurrent use.
func (s *Service) Current() (Forecast, bool) {
	s.mu.RLock()
	forecast := s.cached
	ok := s.haveCached
	stale := !ok || s.clock.Since(s.fetchedAt) > s.opts.TTL
	s.mu.RUnlock()

	if stale {
		s.refreshInBackground()
	}
	return forecast, ok
}

// Refresh fetches the forecast now and updates the cache. Concurrent calls
// collapse into a single request.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("forecast", func() (any, error) {
		forecast, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now()
		s.mu.Lock()
		s.cached = forecast
		s.haveCached = true
		s.fetchedAt = now
		s.mu.Unlock()
		if s.diskCache != nil {
			if saveErr := s.diskCache.Save(forecast, now); saveErr != nil {
				log.Warn().Err(saveErr).Msg("failed to persist forecast cache")
			}
		}
		log.Debug().
			Str("period", forecast.Name).
			Int("temperature", forecast.Temperature).
			Msg("forecast refreshed")
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("refreshing forecast: %w", err)
	}
	return nil
}

// refreshInBackground starts at most one async refresh at a time so the
// tick path never stacks up goroutines while the API is unreachable.
func (s *Service) refreshInBackground() {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.refreshing = false
			s.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("background forecast refresh failed")
		}
	}()
}

func (s *Service) fetch(ctx context.Context) (Forecast, error) {
	url := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast",
		s.opts.Endpoint, s.opts.Office, s.opts.GridX, s.opts.GridY)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Forecast{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("error getting forecast: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return Forecast{}, fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Forecast{}, fmt.Errorf("error decoding forecast: %w", err)
	}
	if len(decoded.Properties.Periods) == 0 {
		return Forecast{}, errors.New("forecast response has no periods")
	}

	period := decoded.Properties.Periods[0]
	forecast := Forecast{
		Name:            sanitizeDisplay(period.Name),
		Temperature:     period.Temperature,
		TemperatureUnit: sanitizeDisplay(period.TemperatureUnit),
		ShortForecast:   sanitizeDisplay(period.ShortForecast),
		PrecipChance:    -1,
	}
	if period.ProbabilityOfPrecipitation.Value != nil {
		forecast.PrecipChance = *period.ProbabilityOfPrecipitation.Value
	}
	return forecast, nil
}
