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

package resources

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Mode is the user-selected display mode.
type Mode string

const (
	ModeOff     Mode = "off"
	ModeClock   Mode = "clock"
	ModeWeather Mode = "weather"
)

// IsValid returns true if the mode is one of the known display modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeOff, ModeClock, ModeWeather:
		return true
	default:
		return false
	}
}

// Color is an RGB backlight color. The zero value is black.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Black is the color sent to blank the backlight.
var Black = Color{R: 0, G: 0, B: 0}

// ParseColor parses a "#rrggbb" hex string into a Color. All six digits must
// be hex; nothing else is accepted.
func ParseColor(s string) (Color, error) {
	trimmed := strings.TrimPrefix(s, "#")
	if len(trimmed) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	decoded, err := hex.DecodeString(strings.ToLower(trimmed))
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: decoded[0], G: decoded[1], B: decoded[2]}, nil
}

// String returns the color as a "#rrggbb" hex string.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Bytes returns the color as the 3-byte payload the device protocol expects.
func (c Color) Bytes() [3]byte {
	return [3]byte{c.R, c.G, c.B}
}

// MarshalText implements encoding.TextMarshaler so colors serialize as
// "#rrggbb" in JSON and TOML.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UserState is the snapshot of user-selected display settings handed to each
// resource tick. It is always passed by value; resources never hold a
// reference into the live state store.
type UserState struct {
	Mode  Mode
	Color Color
}
