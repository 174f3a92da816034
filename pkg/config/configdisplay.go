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

import "github.com/GlowclockProject/glowclock-core/pkg/helpers"

const (
	DefaultBrightness = 200
	DefaultContrast   = 180
)

type Display struct {
	Brightness *int   `toml:"brightness,omitempty"`
	Contrast   *int   `toml:"contrast,omitempty"`
	Use24h     *bool  `toml:"use_24h,omitempty"`
	Device     string `toml:"device"`
	Timezone   string `toml:"timezone,omitempty"`
	Baud       int    `toml:"baud,omitempty"`
}

func (c *Instance) DisplayDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Device
}

func (c *Instance) SetDisplayDevice(device string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Device = device
}

func (c *Instance) DisplayBaud() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Baud
}

func (c *Instance) SetDisplayBaud(baud int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Baud = baud
}

// DisplayBrightness returns the configured backlight brightness clamped to
// the device's byte range.
func (c *Instance) DisplayBrightness() byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.Brightness == nil {
		return DefaultBrightness
	}
	return byte(helpers.Clamp(*c.vals.Display.Brightness, 0, 255))
}

func (c *Instance) SetDisplayBrightness(brightness int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clamped := helpers.Clamp(brightness, 0, 255)
	c.vals.Display.Brightness = &clamped
}

// DisplayContrast returns the configured contrast clamped to the device's
// byte range.
func (c *Instance) DisplayContrast() byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.Contrast == nil {
		return DefaultContrast
	}
	return byte(helpers.Clamp(*c.vals.Display.Contrast, 0, 255))
}

func (c *Instance) SetDisplayContrast(contrast int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clamped := helpers.Clamp(contrast, 0, 255)
	c.vals.Display.Contrast = &clamped
}

// DisplayUse24h reports whether the clock renders as 24-hour time. Defaults
// to true.
func (c *Instance) DisplayUse24h() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.Use24h == nil {
		return true
	}
	return *c.vals.Display.Use24h
}

func (c *Instance) SetDisplayUse24h(use24h bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Use24h = &use24h
}

// DisplayTimezone returns the configured IANA timezone name, or empty for
// the system local zone.
func (c *Instance) DisplayTimezone() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Timezone
}
