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

package lcd

import (
	"fmt"
	"strings"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/weather"
)

// setRow writes text into a frame row, left aligned, space padded. A row
// longer than the grid is a builder bug, not a soft truncation.
func setRow(f *Frame, row int, text string) error {
	if len(text) > Width {
		return fmt.Errorf("row %d content %q exceeds %d columns", row, text, Width)
	}
	for col := 0; col < Width; col++ {
		if col < len(text) {
			f[row][col] = text[col]
		} else {
			f[row][col] = ' '
		}
	}
	return nil
}

// fitRow truncates free-form text to the grid width. Only used for external
// text (forecasts) that has no fixed layout guarantee.
func fitRow(text string) string {
	if len(text) > Width {
		return text[:Width]
	}
	return text
}

// dateRow renders the top line: weekday and date on the left, seconds clock
// on the right.
func dateRow(now time.Time) string {
	date := now.Format("Mon Jan 02")
	clock := now.Format("15:04:05")
	gap := Width - len(date) - len(clock)
	if gap < 1 {
		gap = 1
	}
	return date + strings.Repeat(" ", gap) + clock
}

// jumboTime renders the hour and minute as jumbo rows.
func jumboTime(now time.Time, use24h bool) ([JumboHeight][]byte, error) {
	layout := "3:04"
	if use24h {
		layout = "15:04"
	}
	return Jumbo(now.Format(layout))
}

// clockFrame builds the full clock mode frame: the date line on top and the
// jumbo time on the remaining three rows, left padded by one column.
func clockFrame(now time.Time, use24h bool) (Frame, error) {
	frame := BlankFrame()
	if err := setRow(&frame, 0, dateRow(now)); err != nil {
		return frame, err
	}

	rows, err := jumboTime(now, use24h)
	if err != nil {
		return frame, err
	}
	for r := 0; r < JumboHeight; r++ {
		if 1+len(rows[r]) > Width {
			return frame, fmt.Errorf("jumbo row %d width %d exceeds %d columns", r, 1+len(rows[r]), Width)
		}
		for i, cell := range rows[r] {
			frame[1+r][1+i] = cell
		}
	}
	return frame, nil
}

// weatherFrame builds the weather mode frame: the date line stays on top,
// the lower rows carry the current forecast period, conditions and rain
// chance. Forecast text is pre-sanitized to the device charset upstream.
func weatherFrame(now time.Time, forecast weather.Forecast, haveForecast bool) (Frame, error) {
	frame := BlankFrame()
	if err := setRow(&frame, 0, dateRow(now)); err != nil {
		return frame, err
	}

	if !haveForecast {
		if err := setRow(&frame, 2, "forecast unavailable"); err != nil {
			return frame, err
		}
		return frame, nil
	}

	temp := fmt.Sprintf("%d%s", forecast.Temperature, forecast.TemperatureUnit)
	name := forecast.Name
	if maxName := Width - len(temp) - 1; len(name) > maxName {
		name = name[:maxName]
	}
	gap := Width - len(name) - len(temp)
	if err := setRow(&frame, 1, name+strings.Repeat(" ", gap)+temp); err != nil {
		return frame, err
	}
	if err := setRow(&frame, 2, fitRow(forecast.ShortForecast)); err != nil {
		return frame, err
	}
	if forecast.PrecipChance >= 0 {
		if err := setRow(&frame, 3, fmt.Sprintf("Rain: %d%%", forecast.PrecipChance)); err != nil {
			return frame, err
		}
	}
	return frame, nil
}
