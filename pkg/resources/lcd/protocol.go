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

// The backpack's command channel shares the serial stream with literal
// screen text. A command is framed as the 0xFE sentinel, a tag byte and a
// fixed number of parameter bytes per tag; any byte outside a frame is
// printed at the cursor with autowrap.
const sentinel byte = 0xFE

// Command tags.
const (
	tagClear         byte = 0x58 // no params
	tagBacklightOn   byte = 0x42 // minutes (0 = stay on)
	tagBacklightOff  byte = 0x46 // no params
	tagSetSize       byte = 0xD1 // width, height
	tagSetBrightness byte = 0x98 // value, set and save
	tagSetContrast   byte = 0x91 // value, set and save
	tagSetColor      byte = 0xD0 // r, g, b
	tagSetCursor     byte = 0x47 // column, row (1-indexed)
	tagSaveCustom    byte = 0xC1 // bank, slot, 8 bitmap rows
	tagLoadBank      byte = 0xC0 // bank
)

// Command is one device operation. Encoding is a pure transform of the
// variant: the caller owns the write and surfaces I/O failure per call, with
// no retry inside the encoder.
type Command struct {
	name   string
	params []byte
	tag    byte
}

// Name identifies the command in logs when a write fails.
func (c Command) Name() string {
	return c.name
}

// Encode returns the exact wire frame for the command.
func (c Command) Encode() []byte {
	frame := make([]byte, 0, 2+len(c.params))
	frame = append(frame, sentinel, c.tag)
	frame = append(frame, c.params...)
	return frame
}

// Clear wipes the screen and homes the cursor.
func Clear() Command {
	return Command{name: "clear", tag: tagClear}
}

// BacklightOn enables the backlight indefinitely. The device takes a
// minutes-until-off parameter; zero means stay on.
func BacklightOn() Command {
	return Command{name: "backlight_on", tag: tagBacklightOn, params: []byte{0}}
}

// BacklightOff disables the backlight.
func BacklightOff() Command {
	return Command{name: "backlight_off", tag: tagBacklightOff}
}

// SetSize configures the device for a width x height character grid.
func SetSize(width, height byte) Command {
	return Command{name: "set_size", tag: tagSetSize, params: []byte{width, height}}
}

// SetBrightness sets and saves the backlight brightness.
func SetBrightness(value byte) Command {
	return Command{name: "set_brightness", tag: tagSetBrightness, params: []byte{value}}
}

// SetContrast sets and saves the display contrast.
func SetContrast(value byte) Command {
	return Command{name: "set_contrast", tag: tagSetContrast, params: []byte{value}}
}

// SetColor sets the backlight color.
func SetColor(r, g, b byte) Command {
	return Command{name: "set_color", tag: tagSetColor, params: []byte{r, g, b}}
}

// SetCursor moves the cursor. The device is 1-indexed: callers translating
// from 0-indexed buffer coordinates must add one to both column and row.
func SetCursor(col, row byte) Command {
	return Command{name: "set_cursor", tag: tagSetCursor, params: []byte{col, row}}
}

// SaveCustomCharacter uploads one 5x8 tile bitmap into a character bank
// slot. This is the only variable-position payload in the command set and it
// is still fixed length: always 11 bytes after the sentinel.
func SaveCustomCharacter(bank, slot byte, bitmap [8]byte) Command {
	params := make([]byte, 0, 10)
	params = append(params, bank, slot)
	params = append(params, bitmap[:]...)
	return Command{name: "save_custom_character", tag: tagSaveCustom, params: params}
}

// LoadCharacterBank activates a previously saved character bank.
func LoadCharacterBank(bank byte) Command {
	return Command{name: "load_character_bank", tag: tagLoadBank, params: []byte{bank}}
}
