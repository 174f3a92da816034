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

package methods

import (
	"runtime"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/helpers"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HandleStatus reports device health. Host stats are best effort; a probe
// failure leaves its fields zeroed rather than failing the request.
func HandleStatus(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received status request")

	resp := models.StatusResponse{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Version:     config.AppVersion,
		BootUUID:    env.State.BootUUID(),
		ClockSynced: helpers.IsClockReliable(time.Now()),
	}

	info, err := host.Info()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get host info")
	} else {
		resp.Hostname = info.Hostname
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get memory stats")
	} else {
		resp.MemoryTotal = vm.Total
		resp.MemoryUsed = vm.Used
	}

	systemUptime, err := uptime.Get()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get system uptime")
	} else {
		resp.UptimeSeconds = uint64(systemUptime.Seconds())
	}

	return resp, nil
}
