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

package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsClockReliable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		time time.Time
		name string
		want bool
	}{
		{
			name: "year 2025 is reliable",
			time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "year 2026 is reliable",
			time: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "year 2030 is reliable",
			time: time.Date(2030, 6, 15, 9, 30, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "year 2024 is unreliable",
			time: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			want: false,
		},
		{
			name: "year 2000 is unreliable",
			time: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "epoch time (1970) is unreliable",
			time: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "unix zero is unreliable",
			time: time.Unix(0, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := IsClockReliable(tt.time)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinReliableYear(t *testing.T) {
	t.Parallel()

	// Verify the constant has the expected value
	assert.Equal(t, 2025, MinReliableYear)

	// Verify boundary conditions
	assert.True(t, IsClockReliable(time.Date(MinReliableYear, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsClockReliable(time.Date(MinReliableYear-1, 12, 31, 23, 59, 59, 0, time.UTC)))
}
