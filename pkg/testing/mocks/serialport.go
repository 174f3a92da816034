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
	"sync"

	"go.bug.st/serial"
)

// MockSerialPort is a fake serial.Port that records everything written to
// it. Only the methods the display driver uses (Write, Close) are
// implemented; calling anything else hits the embedded nil interface and
// panics, which is the desired behavior for an unexpected call.
type MockSerialPort struct {
	serial.Port

	writeErr   error
	writes     [][]byte
	mu         sync.Mutex
	failAfter  int
	writeCount int
	closeCount int
}

// NewMockSerialPort returns a port that accepts all writes.
func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{failAfter: -1}
}

// SetWriteError makes every subsequent write fail with err (nil clears it).
func (m *MockSerialPort) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
	m.failAfter = -1
}

// FailAfterWrites lets n more writes succeed, then fails every write with
// err until the error is cleared.
func (m *MockSerialPort) FailAfterWrites(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
	m.failAfter = m.writeCount + n
}

func (m *MockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil && (m.failAfter < 0 || m.writeCount >= m.failAfter) {
		return 0, m.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	m.writes = append(m.writes, buf)
	m.writeCount++
	return len(p), nil
}

func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	return nil
}

// Writes returns a copy of each recorded write in order.
func (m *MockSerialPort) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		buf := make([]byte, len(w))
		copy(buf, w)
		out[i] = buf
	}
	return out
}

// Bytes returns all recorded writes concatenated into one stream.
func (m *MockSerialPort) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, w := range m.writes {
		out = append(out, w...)
	}
	return out
}

// ResetWrites discards the recorded writes, keeping error settings.
func (m *MockSerialPort) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// CloseCount returns how many times Close was called.
func (m *MockSerialPort) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}
