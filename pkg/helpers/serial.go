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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.bug.st/serial"
)

// serialPrefixes are the /dev name prefixes that can plausibly host the
// display: USB CDC adapters and the Pi's onboard UARTs.
var serialPrefixes = []string{"ttyACM", "ttyUSB", "ttyAMA"}

func isCandidateSerialDevice(name string) bool {
	for _, prefix := range serialPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func listDevSerialDevices(devDir string) ([]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", devDir, err)
	}

	devices := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isCandidateSerialDevice(entry.Name()) {
			continue
		}
		devices = append(devices, filepath.Join(devDir, entry.Name()))
	}

	return devices, nil
}

// GetSerialDeviceList returns serial devices that could plausibly be the
// display, used to hint at likely paths when the configured device cannot
// be opened. Scanning /dev directly on Linux avoids the dozens of legacy
// ttyS entries a full port listing would include.
func GetSerialDeviceList() ([]string, error) {
	if runtime.GOOS == "linux" {
		return listDevSerialDevices("/dev")
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports list: %w", err)
	}
	return ports, nil
}
