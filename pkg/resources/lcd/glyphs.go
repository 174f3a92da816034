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

import "fmt"

// The jumbo digits are assembled from five custom 5x8 tiles uploaded to
// character bank 0 at startup. A tile's upload slot doubles as the byte value
// that references it in screen content, so these constants appear both in
// SaveCustomCharacter commands and inside frames.
const (
	tileHalfBottomRight byte = 0x00 // bottom half, rising toward the right edge
	tileHalfBottomLeft  byte = 0x01 // bottom half, rising toward the left edge
	tileFullBottom      byte = 0x02 // bottom half bar, full width
	tileFullBottomRight byte = 0x03 // full height, notched at the top left
	tileFullBottomLeft  byte = 0x04 // full height, notched at the top right

	// solidBlock is the device's built-in all-on character.
	solidBlock byte = 0xFF
)

// JumboHeight is the number of character rows a jumbo line spans.
const JumboHeight = 3

// tileBitmaps holds the pixel rows for each custom tile, indexed by slot.
// Each entry is 8 rows of 5-bit patterns, top to bottom, matching the
// device's 5x8 character cell.
var tileBitmaps = [5][8]byte{
	tileHalfBottomRight: {
		0b00000,
		0b00000,
		0b00000,
		0b00000,
		0b00011,
		0b00111,
		0b01111,
		0b11111,
	},
	tileHalfBottomLeft: {
		0b00000,
		0b00000,
		0b00000,
		0b00000,
		0b11000,
		0b11100,
		0b11110,
		0b11111,
	},
	tileFullBottom: {
		0b00000,
		0b00000,
		0b00000,
		0b00000,
		0b11111,
		0b11111,
		0b11111,
		0b11111,
	},
	tileFullBottomRight: {
		0b00011,
		0b00111,
		0b01111,
		0b11111,
		0b11111,
		0b11111,
		0b11111,
		0b11111,
	},
	tileFullBottomLeft: {
		0b11000,
		0b11100,
		0b11110,
		0b11111,
		0b11111,
		0b11111,
		0b11111,
		0b11111,
	},
}

// jumboFont maps each renderable character to its three rows of tile bytes.
// Digits are three cells wide, colon and space one cell. Short aliases keep
// the table readable.
var jumboFont = func() map[byte][JumboHeight][]byte {
	hbr := tileHalfBottomRight
	hbl := tileHalfBottomLeft
	bar := tileFullBottom
	fbr := tileFullBottomRight
	fbl := tileFullBottomLeft
	blk := solidBlock
	sp := byte(' ')

	return map[byte][JumboHeight][]byte{
		'0': {
			{hbr, bar, hbl},
			{blk, sp, blk},
			{fbr, bar, fbl},
		},
		'1': {
			{bar, hbl, sp},
			{sp, blk, sp},
			{bar, blk, bar},
		},
		'2': {
			{hbr, bar, hbl},
			{hbr, bar, fbl},
			{fbr, bar, bar},
		},
		'3': {
			{hbr, bar, hbl},
			{sp, bar, hbl},
			{fbr, bar, fbl},
		},
		'4': {
			{blk, sp, blk},
			{fbl, bar, blk},
			{sp, sp, blk},
		},
		'5': {
			{fbl, bar, bar},
			{fbl, bar, hbl},
			{hbr, bar, fbl},
		},
		'6': {
			{hbr, bar, hbl},
			{blk, bar, hbl},
			{fbr, bar, fbl},
		},
		'7': {
			{bar, bar, blk},
			{sp, sp, blk},
			{sp, sp, blk},
		},
		'8': {
			{hbr, bar, hbl},
			{fbr, bar, fbl},
			{fbr, bar, fbl},
		},
		'9': {
			{hbr, bar, hbl},
			{fbr, bar, blk},
			{sp, sp, blk},
		},
		':': {
			{bar},
			{bar},
			{sp},
		},
		' ': {
			{sp},
			{sp},
			{sp},
		},
	}
}()

// jumboWidth returns the cell width of one character's definition, the max
// row length across its three rows.
func jumboWidth(def [JumboHeight][]byte) int {
	width := 0
	for _, row := range def {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Jumbo renders text as three rows of screen bytes using the custom tile
// font. Characters are placed left to right with a single blank spacer
// column between them. Only digits, colon and space are renderable; anything
// else is a caller bug and returns an error rather than a blank substitute.
func Jumbo(text string) ([JumboHeight][]byte, error) {
	var rows [JumboHeight][]byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		def, ok := jumboFont[ch]
		if !ok {
			return rows, fmt.Errorf("unsupported jumbo character %q", ch)
		}
		width := jumboWidth(def)
		for r := 0; r < JumboHeight; r++ {
			if i > 0 {
				rows[r] = append(rows[r], ' ')
			}
			rows[r] = append(rows[r], def[r]...)
			// Pad short tile rows so columns stay aligned.
			for pad := len(def[r]); pad < width; pad++ {
				rows[r] = append(rows[r], ' ')
			}
		}
	}
	return rows, nil
}
