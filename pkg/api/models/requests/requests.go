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

package requests

import (
	"context"
	"encoding/json"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/GlowclockProject/glowclock-core/pkg/service/state"
	"github.com/GlowclockProject/glowclock-core/pkg/weather"
)

// ForecastSource is the slice of the weather service API methods need.
type ForecastSource interface {
	Current() (weather.Forecast, bool)
	Refresh(ctx context.Context) error
}

// RequestEnv carries service dependencies into API method handlers.
type RequestEnv struct {
	Config   *config.Instance
	State    *state.State
	Database *database.Database
	Weather  ForecastSource
	Params   json.RawMessage
	ID       models.RPCID
	IsLocal  bool
}
