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

package fixtures

import (
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/database"
)

// Database fixture collections for testing

// HistoryEntries provides sample state change history entries for testing
var HistoryEntries = struct {
	Collection []database.HistoryEntry
	Clock      database.HistoryEntry
	Weather    database.HistoryEntry
	Off        database.HistoryEntry
	EarlyBoot  database.HistoryEntry
}{
	Clock: database.HistoryEntry{
		Time:          time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		ID:            "8f14e45f-ceea-467f-a0f1-7585e3a1d111",
		Mode:          "clock",
		Color:         "#ff8800",
		BootUUID:      "boot-aaa",
		DBID:          1,
		ClockReliable: true,
	},
	Weather: database.HistoryEntry{
		Time:          time.Date(2026, 8, 20, 12, 5, 0, 0, time.UTC),
		ID:            "8f14e45f-ceea-467f-a0f1-7585e3a1d222",
		Mode:          "weather",
		Color:         "#00ff00",
		BootUUID:      "boot-aaa",
		DBID:          2,
		ClockReliable: true,
	},
	Off: database.HistoryEntry{
		Time:          time.Date(2026, 8, 20, 23, 0, 0, 0, time.UTC),
		ID:            "8f14e45f-ceea-467f-a0f1-7585e3a1d333",
		Mode:          "off",
		Color:         "#000000",
		BootUUID:      "boot-aaa",
		DBID:          3,
		ClockReliable: true,
	},
	// Recorded before NTP sync landed, so the wall clock time is bogus
	// and the monotonic offset is the only trustworthy timestamp.
	EarlyBoot: database.HistoryEntry{
		Time:           time.Date(1970, 1, 1, 0, 0, 42, 0, time.UTC),
		ID:             "8f14e45f-ceea-467f-a0f1-7585e3a1d444",
		Mode:           "clock",
		Color:          "#ffffff",
		BootUUID:       "boot-bbb",
		DBID:           4,
		MonotonicStart: 42,
		ClockReliable:  false,
	},
	Collection: []database.HistoryEntry{
		{
			Time:          time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
			ID:            "8f14e45f-ceea-467f-a0f1-7585e3a1d111",
			Mode:          "clock",
			Color:         "#ff8800",
			BootUUID:      "boot-aaa",
			DBID:          1,
			ClockReliable: true,
		},
		{
			Time:          time.Date(2026, 8, 20, 12, 5, 0, 0, time.UTC),
			ID:            "8f14e45f-ceea-467f-a0f1-7585e3a1d222",
			Mode:          "weather",
			Color:         "#00ff00",
			BootUUID:      "boot-aaa",
			DBID:          2,
			ClockReliable: true,
		},
		{
			Time:          time.Date(2026, 8, 20, 23, 0, 0, 0, time.UTC),
			ID:            "8f14e45f-ceea-467f-a0f1-7585e3a1d333",
			Mode:          "off",
			Color:         "#000000",
			BootUUID:      "boot-aaa",
			DBID:          3,
			ClockReliable: true,
		},
	},
}

// UserStates provides sample persisted user states for testing
var UserStates = struct {
	ClockAmber   [2]string
	WeatherGreen [2]string
	OffBlack     [2]string
}{
	ClockAmber:   [2]string{"clock", "#ff8800"},
	WeatherGreen: [2]string{"weather", "#00ff00"},
	OffBlack:     [2]string{"off", "#000000"},
}
