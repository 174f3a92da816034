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
	"testing"

	"pgregory.net/rapid"
)

// cellGen generates screen cell values across the whole alphabet the
// renderer uses: text, digits, tile tags and the solid block. A small
// alphabet keeps collisions (unchanged cells) frequent, which is the
// interesting case for the diff.
func cellGen() *rapid.Generator[byte] {
	return rapid.SampledFrom([]byte{
		' ', 'a', 'Z', '0', '9', ':', '%',
		tileHalfBottomRight, tileHalfBottomLeft, tileFullBottom,
		tileFullBottomRight, tileFullBottomLeft, solidBlock,
	})
}

func frameGen() *rapid.Generator[Frame] {
	return rapid.Custom(func(t *rapid.T) Frame {
		var frame Frame
		for row := 0; row < Height; row++ {
			for col := 0; col < Width; col++ {
				frame[row][col] = cellGen().Draw(t, "cell")
			}
		}
		return frame
	})
}

// TestPropertyDiffReplayYieldsNewFrame verifies the core diff guarantee:
// replaying the emitted groups over the previous screen state produces
// exactly the new frame, and no unchanged cell is ever retransmitted.
func TestPropertyDiffReplayYieldsNewFrame(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		frameA := frameGen().Draw(t, "frameA")
		frameB := frameGen().Draw(t, "frameB")

		buf := NewBuffer()
		buf.DiffAndApply(frameA)
		groups := buf.DiffAndApply(frameB)

		screen := frameA
		for _, group := range groups {
			if group.Row < 0 || group.Row >= Height {
				t.Fatalf("group row %d out of range", group.Row)
			}
			if group.Col < 0 || group.Col+len(group.Data) > Width {
				t.Fatalf("group at row %d col %d len %d exceeds width",
					group.Row, group.Col, len(group.Data))
			}
			for i, cell := range group.Data {
				if frameA[group.Row][group.Col+i] == frameB[group.Row][group.Col+i] {
					t.Fatalf("unchanged cell row %d col %d retransmitted",
						group.Row, group.Col+i)
				}
				screen[group.Row][group.Col+i] = cell
			}
		}
		if screen != frameB {
			t.Fatalf("replaying groups did not reproduce the new frame")
		}
		if snapshot := buf.Snapshot(); snapshot != frameB {
			t.Fatalf("buffer does not track the new frame")
		}
	})
}

// TestPropertyDiffIdempotent verifies diffing the same frame twice emits
// nothing the second time.
func TestPropertyDiffIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		frame := frameGen().Draw(t, "frame")

		buf := NewBuffer()
		buf.DiffAndApply(frame)
		if again := buf.DiffAndApply(frame); len(again) != 0 {
			t.Fatalf("second diff of identical frame emitted %d groups", len(again))
		}
	})
}

// TestPropertyDiffGroupsOrderedAndDisjoint verifies groups arrive in scan
// order and never touch the same cell twice.
func TestPropertyDiffGroupsOrderedAndDisjoint(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		frameA := frameGen().Draw(t, "frameA")
		frameB := frameGen().Draw(t, "frameB")

		buf := NewBuffer()
		buf.DiffAndApply(frameA)
		groups := buf.DiffAndApply(frameB)

		lastRow, lastEnd := -1, -2
		for _, group := range groups {
			if group.Row < lastRow {
				t.Fatalf("groups out of scan order")
			}
			if group.Row > lastRow {
				lastRow = group.Row
				lastEnd = -2
			}
			// Two runs in a row are always separated by at least one
			// unchanged cell, otherwise they would be one group.
			if group.Col <= lastEnd+1 {
				t.Fatalf("group at row %d col %d should have merged with run ending at %d",
					group.Row, group.Col, lastEnd)
			}
			lastEnd = group.Col + len(group.Data) - 1
		}
	})
}
