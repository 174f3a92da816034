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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCacheSaveAndLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cache := NewDiskCache(fs, "/data/cache/forecast.json")

	want := Forecast{
		Name:            "Tonight",
		Temperature:     68,
		TemperatureUnit: "F",
		ShortForecast:   "Partly Cloudy",
		PrecipChance:    30,
	}
	fetchedAt := time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC)

	require.NoError(t, cache.Save(want, fetchedAt))

	got, gotFetchedAt, ok := cache.Load()
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, fetchedAt.Equal(gotFetchedAt))
}

func TestDiskCacheLoadMissingFile(t *testing.T) {
	t.Parallel()

	cache := NewDiskCache(afero.NewMemMapFs(), "/data/cache/forecast.json")

	_, _, ok := cache.Load()
	assert.False(t, ok)
}

func TestDiskCacheLoadCorruptFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/cache/forecast.json", []byte("not json"), 0o600))

	cache := NewDiskCache(fs, "/data/cache/forecast.json")

	_, _, ok := cache.Load()
	assert.False(t, ok, "corrupt cache should be ignored, not fatal")
}

func TestServicePrimesFromDiskCache(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	fs := afero.NewMemMapFs()
	cache := NewDiskCache(fs, "/data/cache/forecast.json")

	saved := Forecast{
		Name:            "Overnight",
		Temperature:     55,
		TemperatureUnit: "F",
		ShortForecast:   "Clear",
		PrecipChance:    -1,
	}
	require.NoError(t, cache.Save(saved, clock.Now()))

	svc := NewService(Options{
		Office: "TOP",
		GridX:  32,
		GridY:  81,
	}, WithServiceClock(clock), WithDiskCache(cache))

	// Fresh fetchedAt means no background refresh fires, so no network
	// is needed to serve the cached forecast.
	forecast, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, saved, forecast)
}

func TestServicePersistsForecastOnRefresh(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(forecastJSON(72, "20")))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	cache := NewDiskCache(fs, "/data/cache/forecast.json")

	svc := NewService(Options{
		Endpoint: server.URL,
		Office:   "TOP",
		GridX:    32,
		GridY:    81,
	}, WithDiskCache(cache))

	require.NoError(t, svc.Refresh(context.Background()))

	got, _, ok := cache.Load()
	require.True(t, ok, "refresh should write through to the disk cache")
	assert.Equal(t, "Tonight", got.Name)
	assert.Equal(t, 72, got.Temperature)
	assert.Equal(t, 20, got.PrecipChance)
}

func TestServiceRefreshSurvivesCacheWriteFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(forecastJSON(72, "20")))
	}))
	defer server.Close()

	// Read-only filesystem makes every cache write fail.
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	cache := NewDiskCache(fs, "/data/cache/forecast.json")

	svc := NewService(Options{
		Endpoint: server.URL,
		Office:   "TOP",
		GridX:    32,
		GridY:    81,
	}, WithDiskCache(cache))

	require.NoError(t, svc.Refresh(context.Background()),
		"cache persistence is best-effort and must not fail the refresh")

	forecast, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, 72, forecast.Temperature)
}
