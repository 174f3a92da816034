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

package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastJSON(temp int, precip string) string {
	return fmt.Sprintf(`{
		"properties": {
			"periods": [
				{
					"number": 1,
					"name": "Tonight",
					"temperature": %d,
					"temperatureUnit": "F",
					"probabilityOfPrecipitation": {
						"unitCode": "wmoUnit:percent",
						"value": %s
					},
					"windSpeed": "5 mph",
					"shortForecast": "Partly Cloudy",
					"detailedForecast": "Partly cloudy, with a low around 68."
				},
				{
					"number": 2,
					"name": "Friday",
					"temperature": 81,
					"temperatureUnit": "F",
					"probabilityOfPrecipitation": {"value": 10},
					"shortForecast": "Sunny"
				}
			]
		}
	}`, temp, precip)
}

func TestRefreshFetchesFirstPeriod(t *testing.T) {
	t.Parallel()

	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(forecastJSON(68, "30")))
	}))
	defer server.Close()

	svc := NewService(Options{
		Endpoint: server.URL,
		Office:   "TOP",
		GridX:    32,
		GridY:    81,
	})

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, "/gridpoints/TOP/32,81/forecast", gotPath)
	assert.NotEmpty(t, gotAgent, "NWS requires an identifying User-Agent")

	forecast, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, Forecast{
		Name:            "Tonight",
		Temperature:     68,
		TemperatureUnit: "F",
		ShortForecast:   "Partly Cloudy",
		PrecipChance:    30,
	}, forecast)
}

func TestRefreshNullPrecipBecomesUnknown(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(forecastJSON(-3, "null")))
	}))
	defer server.Close()

	svc := NewService(Options{Endpoint: server.URL, Office: "TOP"})
	require.NoError(t, svc.Refresh(context.Background()))

	forecast, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, -1, forecast.PrecipChance)
	assert.Equal(t, -3, forecast.Temperature)
}

func TestRefreshErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewService(Options{Endpoint: server.URL, Office: "TOP"})
	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status code")

	_, ok := svc.Current()
	assert.False(t, ok, "failed refresh must not populate the cache")
}

func TestRefreshEmptyPeriods(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"properties": {"periods": []}}`))
	}))
	defer server.Close()

	svc := NewService(Options{Endpoint: server.URL, Office: "TOP"})
	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no periods")
}

func TestRefreshBadJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"properties": `))
	}))
	defer server.Close()

	svc := NewService(Options{Endpoint: server.URL, Office: "TOP"})
	require.Error(t, svc.Refresh(context.Background()))
}

func TestCurrentEmptyCacheRefreshesInBackground(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(forecastJSON(68, "30")))
	}))
	defer server.Close()

	svc := NewService(Options{Endpoint: server.URL, Office: "TOP"})

	_, ok := svc.Current()
	assert.False(t, ok, "empty cache reports no forecast")

	require.Eventually(t, func() bool {
		forecast, ok := svc.Current()
		return ok && forecast.Temperature == 68
	}, 2*time.Second, 10*time.Millisecond, "background refresh fills the cache")
	assert.Equal(t, int32(1), requests.Load())
}

func TestCurrentServesStaleWhileRefreshing(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := requests.Add(1)
		if n == 1 {
			_, _ = w.Write([]byte(forecastJSON(68, "30")))
			return
		}
		_, _ = w.Write([]byte(forecastJSON(71, "30")))
	}))
	defer server.Close()

	clock := clockwork.NewFakeClock()
	svc := NewService(Options{Endpoint: server.URL, Office: "TOP", TTL: 10 * time.Minute},
		WithServiceClock(clock))

	require.NoError(t, svc.Refresh(context.Background()))

	// Within the TTL the cache is served without touching the network.
	clock.Advance(9 * time.Minute)
	forecast, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, 68, forecast.Temperature)
	assert.Equal(t, int32(1), requests.Load())

	// Past the TTL the stale value is still returned immediately while a
	// background refresh replaces it.
	clock.Advance(2 * time.Minute)
	forecast, ok = svc.Current()
	require.True(t, ok)
	assert.Equal(t, 68, forecast.Temperature, "stale read served, not blocked")

	require.Eventually(t, func() bool {
		current, ok := svc.Current()
		return ok && current.Temperature == 71
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSanitizeDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain ascii", input: "Partly Cloudy", expected: "Partly Cloudy"},
		{name: "diacritics stripped", input: "Tempête Isolée", expected: "Tempete Isolee"},
		{name: "non-ascii dropped", input: "Rain — heavy", expected: "Rain heavy"},
		{name: "whitespace collapsed", input: "Chance  Showers\nAnd Thunderstorms", expected: "Chance Showers And Thunderstorms"},
		{name: "leading and trailing trimmed", input: "  Sunny  ", expected: "Sunny"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizeDisplay(tt.input))
		})
	}
}
