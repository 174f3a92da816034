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

package config

import "time"

const DefaultWeatherRefresh = 10 * time.Minute

// Weather locates the NWS forecast gridpoint for the installation. Office
// and grid coordinates come from the api.weather.gov points lookup for the
// clock's latitude and longitude.
type Weather struct {
	Enabled  *bool  `toml:"enabled,omitempty"`
	Office   string `toml:"office,omitempty"`
	Endpoint string `toml:"endpoint,omitempty"`
	Refresh  string `toml:"refresh,omitempty"`
	GridX    int    `toml:"grid_x,omitempty"`
	GridY    int    `toml:"grid_y,omitempty"`
}

// WeatherEnabled reports whether forecast fetching is active. When the
// enabled flag is unset it follows whether a gridpoint is configured.
func (c *Instance) WeatherEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Weather.Enabled == nil {
		return c.vals.Weather.Office != ""
	}
	return *c.vals.Weather.Enabled
}

func (c *Instance) SetWeatherEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Weather.Enabled = &enabled
}

func (c *Instance) WeatherOffice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Weather.Office
}

func (c *Instance) WeatherGrid() (x, y int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Weather.GridX, c.vals.Weather.GridY
}

// WeatherEndpoint returns the API base URL override, or empty for the
// public api.weather.gov endpoint.
func (c *Instance) WeatherEndpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Weather.Endpoint
}

// WeatherRefresh returns how long a cached forecast stays fresh. Invalid or
// missing values fall back to the default.
func (c *Instance) WeatherRefresh() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Weather.Refresh == "" {
		return DefaultWeatherRefresh
	}
	ttl, err := time.ParseDuration(c.vals.Weather.Refresh)
	if err != nil || ttl <= 0 {
		return DefaultWeatherRefresh
	}
	return ttl
}
