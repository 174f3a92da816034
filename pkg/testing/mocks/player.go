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

package mocks

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockPlayer is a mock implementation of audio.Player using testify/mock.
type MockPlayer struct {
	mock.Mock
}

// NewMockPlayer creates a new mock audio player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

func (m *MockPlayer) PlayTone(freq int, duration time.Duration) error {
	args := m.Called(freq, duration)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock player play tone failed: %w", err)
	}
	return nil
}

func (m *MockPlayer) PlayFile(path string) error {
	args := m.Called(path)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock player play file failed: %w", err)
	}
	return nil
}

func (m *MockPlayer) ClearFileCache() {
	m.Called()
}
