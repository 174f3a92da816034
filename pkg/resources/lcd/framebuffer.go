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

// Width and Height are the character grid dimensions of the display.
const (
	Width  = 20
	Height = 4
)

// Frame is a full-screen snapshot. Cells hold ASCII bytes, custom tile tags
// or the solid block. Fixed-size arrays make dimension mismatches
// unrepresentable and let frames be compared with ==.
type Frame [Height][Width]byte

// BlankFrame returns a frame of all spaces.
func BlankFrame() Frame {
	var f Frame
	for row := range f {
		for col := range f[row] {
			f[row][col] = ' '
		}
	}
	return f
}

// DiffGroup is one contiguous horizontal run of changed cells. Groups never
// span rows: the device cursor is row/column addressed and a run wrapping
// mid-group would corrupt positioning. Col+len(Data) never exceeds Width.
type DiffGroup struct {
	Data []byte
	Row  int
	Col  int
}

// Buffer tracks what is currently on the physical screen. It is created
// blank, mutated only by DiffAndApply and Reset, and owned exclusively by
// the driver.
type Buffer struct {
	cells Frame
}

// NewBuffer returns a buffer of all spaces, matching a freshly cleared
// display.
func NewBuffer() *Buffer {
	return &Buffer{cells: BlankFrame()}
}

// Reset returns the buffer to all spaces. Used after sending a clear so the
// next frame diff repaints every non-blank cell; clearing the device without
// resetting the buffer leaves the diff blind to the wiped content.
func (b *Buffer) Reset() {
	b.cells = BlankFrame()
}

// Snapshot returns a copy of the tracked screen content.
func (b *Buffer) Snapshot() Frame {
	return b.cells
}

// DiffAndApply compares a new frame against the tracked screen content,
// updates the buffer in place and returns the changed runs in scan order.
// Scanning is row-major: a differing cell is written into the buffer
// immediately and opens or extends the current group; a matching cell closes
// any open group; end of row force-closes so no group crosses rows.
// Replaying the returned groups over the previous physical state yields
// exactly the new frame, and unchanged cells are never retransmitted. An
// identical frame returns no groups and leaves the buffer untouched.
func (b *Buffer) DiffAndApply(frame Frame) []DiffGroup {
	var groups []DiffGroup
	var open *DiffGroup
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			next := frame[row][col]
			if b.cells[row][col] == next {
				if open != nil {
					groups = append(groups, *open)
					open = nil
				}
				continue
			}
			b.cells[row][col] = next
			if open == nil {
				open = &DiffGroup{Row: row, Col: col}
			}
			open.Data = append(open.Data, next)
		}
		if open != nil {
			groups = append(groups, *open)
			open = nil
		}
	}
	return groups
}
