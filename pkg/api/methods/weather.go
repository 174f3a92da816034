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
	"errors"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/rs/zerolog/log"
)

// HandleWeatherGet returns the cached forecast, fetching one synchronously
// if the cache is empty or expired.
func HandleWeatherGet(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received weather get request")

	if env.Weather == nil {
		return nil, errors.New("weather is not enabled")
	}

	forecast, ok := env.Weather.Current()
	cached := true
	if !ok {
		cached = false
		if err := env.Weather.Refresh(env.State.GetContext()); err != nil {
			log.Error().Err(err).Msg("error fetching weather")
			return nil, errors.New("error fetching weather")
		}
		forecast, ok = env.Weather.Current()
		if !ok {
			return nil, errors.New("no forecast available")
		}
	}

	return models.WeatherResponse{
		Period:          forecast.Name,
		ShortForecast:   forecast.ShortForecast,
		TemperatureUnit: forecast.TemperatureUnit,
		Temperature:     forecast.Temperature,
		PrecipChance:    forecast.PrecipChance,
		Cached:          cached,
	}, nil
}
