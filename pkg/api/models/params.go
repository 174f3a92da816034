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

package models

// SetStateParams updates the display state. All fields are optional; only
// the fields present are applied.
type SetStateParams struct {
	Mode  *string `json:"mode,omitempty" validate:"omitempty,displaymode"`
	Color *string `json:"color,omitempty" validate:"omitempty,displaycolor"`
}

type HistoryReadParams struct {
	Limit  *int `json:"limit,omitempty" validate:"omitempty,gte=1,lte=500"`
	LastID *int `json:"lastId,omitempty" validate:"omitempty,gte=0"`
}

type UpdateSettingsParams struct {
	DebugLogging *bool   `json:"debugLogging"`
	Use24h       *bool   `json:"use24h"`
	HourlyChime  *bool   `json:"hourlyChime"`
	Brightness   *int    `json:"brightness" validate:"omitempty,gte=0,lte=255"`
	Contrast     *int    `json:"contrast" validate:"omitempty,gte=0,lte=255"`
	Telemetry    *bool   `json:"telemetry"`
	DevicePath   *string `json:"devicePath"`
}
