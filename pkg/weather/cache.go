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
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DiskCache persists the last fetched forecast so a freshly booted clock can
// show last-known weather before the network is up.
type DiskCache struct {
	fs   afero.Fs
	path string
}

func NewDiskCache(fs afero.Fs, path string) *DiskCache {
	return &DiskCache{
		fs:   fs,
		path: path,
	}
}

type cachedForecast struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Forecast  Forecast  `json:"forecast"`
}

// Save writes the forecast and its fetch time to disk, creating the cache
// directory if needed.
func (c *DiskCache) Save(forecast Forecast, fetchedAt time.Time) error {
	data, err := json.Marshal(cachedForecast{
		Forecast:  forecast,
		FetchedAt: fetchedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cached forecast: %w", err)
	}

	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write forecast cache: %w", err)
	}
	return nil
}

// Load reads the cached forecast from disk. A missing or unreadable cache
// file returns ok=false rather than an error since the cache is best-effort.
func (c *DiskCache) Load() (forecast Forecast, fetchedAt time.Time, ok bool) {
	exists, err := afero.Exists(c.fs, c.path)
	if err != nil || !exists {
		return Forecast{}, time.Time{}, false
	}

	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return Forecast{}, time.Time{}, false
	}

	var cached cachedForecast
	if err := json.Unmarshal(data, &cached); err != nil {
		return Forecast{}, time.Time{}, false
	}

	return cached.Forecast, cached.FetchedAt, true
}
