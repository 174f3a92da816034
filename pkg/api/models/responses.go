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

import "time"

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
	DeviceID string `json:"deviceId"`
}

type StatusResponse struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Version       string `json:"version"`
	BootUUID      string `json:"bootUuid"`
	UptimeSeconds uint64 `json:"uptimeSeconds"`
	MemoryTotal   uint64 `json:"memoryTotalBytes"`
	MemoryUsed    uint64 `json:"memoryUsedBytes"`
	ClockSynced   bool   `json:"clockSynced"`
}

type StateResponse struct {
	Mode  string `json:"mode"`
	Color string `json:"color"`
}

// StateChangedParams is the payload of the state.changed notification,
// mirroring StateResponse so clients can track without polling.
type StateChangedParams struct {
	Mode  string `json:"mode"`
	Color string `json:"color"`
}

// ResourceErrorParams is the payload of the resource.error notification,
// sent when a hardware resource tick fails.
type ResourceErrorParams struct {
	Time     time.Time `json:"time"`
	Resource string    `json:"resource"`
	Error    string    `json:"error"`
}

type SettingsResponse struct {
	DevicePath   string `json:"devicePath"`
	Brightness   int    `json:"brightness"`
	Contrast     int    `json:"contrast"`
	Use24h       bool   `json:"use24h"`
	HourlyChime  bool   `json:"hourlyChime"`
	DebugLogging bool   `json:"debugLogging"`
	Telemetry    bool   `json:"telemetry"`
}

type HistoryResponseEntry struct {
	Time  time.Time `json:"time"`
	Mode  string    `json:"mode"`
	Color string    `json:"color"`
	// ID is the pagination cursor; pass the last entry's ID as lastId to
	// fetch the next page.
	ID int64 `json:"id"`
}

type HistoryResponse struct {
	Entries []HistoryResponseEntry `json:"entries"`
}

type WeatherResponse struct {
	Period          string `json:"period"`
	ShortForecast   string `json:"shortForecast"`
	TemperatureUnit string `json:"temperatureUnit"`
	Temperature     int    `json:"temperature"`
	PrecipChance    int    `json:"precipChance"`
	Cached          bool   `json:"cached"`
}

// NoContent is an empty result for methods with nothing to return; it
// marshals as {} rather than null.
type NoContent struct{}
