//go:build !linux

/*
Glowclock Core
Copyright (c) 2026 The Glowclock Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Glowclock Core.

Glowclock Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Glowclock Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.
*/

package helpers

// USBTopologyPath is only implemented for Linux sysfs; elsewhere the device
// identity is just its path.
func USBTopologyPath(_ string) string {
	return ""
}
