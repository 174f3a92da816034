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

import "path/filepath"

type Audio struct {
	ChimeSound     *string `toml:"chime_sound,omitempty"`
	ChimeStartHour *int    `toml:"chime_start_hour,omitempty"`
	ChimeEndHour   *int    `toml:"chime_end_hour,omitempty"`
	HourlyChime    bool    `toml:"hourly_chime"`
}

const (
	DefaultChimeStartHour = 8
	DefaultChimeEndHour   = 22
)

// HourlyChime reports whether the top-of-hour chime is enabled. The chime is
// suppressed at runtime while the display mode is off regardless of this
// setting.
func (c *Instance) HourlyChime() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Audio.HourlyChime
}

func (c *Instance) SetHourlyChime(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Audio.HourlyChime = enabled
}

// ChimeHours returns the inclusive [start, end] hour range in which the
// chime may strike. Hours outside 0-23 fall back to the defaults.
func (c *Instance) ChimeHours() (start, end int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start = DefaultChimeStartHour
	if c.vals.Audio.ChimeStartHour != nil {
		if h := *c.vals.Audio.ChimeStartHour; h >= 0 && h <= 23 {
			start = h
		}
	}

	end = DefaultChimeEndHour
	if c.vals.Audio.ChimeEndHour != nil {
		if h := *c.vals.Audio.ChimeEndHour; h >= 0 && h <= 23 {
			end = h
		}
	}

	return start, end
}

// ChimeSoundPath returns the resolved path to the chime sound file and
// whether a file is configured. Returns ("", false) if unset or disabled, in
// which case the synthesized tone is used instead. Relative paths resolve
// against dataDir.
func (c *Instance) ChimeSoundPath(dataDir string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.vals.Audio.ChimeSound == nil || *c.vals.Audio.ChimeSound == "" {
		return "", false
	}

	path := *c.vals.Audio.ChimeSound
	if filepath.IsAbs(path) {
		return path, true
	}
	return filepath.Join(dataDir, path), true
}
