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
	"fmt"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

func HandleSettings(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received settings request")

	return models.SettingsResponse{
		DevicePath:   env.Config.DisplayDevice(),
		Brightness:   int(env.Config.DisplayBrightness()),
		Contrast:     int(env.Config.DisplayContrast()),
		Use24h:       env.Config.DisplayUse24h(),
		HourlyChime:  env.Config.HourlyChime(),
		DebugLogging: env.Config.DebugLogging(),
		Telemetry:    env.Config.TelemetryEnabled(),
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsReload(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings reload request")

	err := env.Config.Load()
	if err != nil {
		log.Error().Err(err).Msg("error loading settings")
		return nil, errors.New("error loading settings")
	}

	return models.NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		log.Error().Err(err).Msg("invalid params")
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
	}

	if params.Use24h != nil {
		log.Info().Bool("use24h", *params.Use24h).Msg("update")
		env.Config.SetDisplayUse24h(*params.Use24h)
	}

	if params.HourlyChime != nil {
		log.Info().Bool("hourlyChime", *params.HourlyChime).Msg("update")
		env.Config.SetHourlyChime(*params.HourlyChime)
	}

	if params.Brightness != nil {
		log.Info().Int("brightness", *params.Brightness).Msg("update")
		env.Config.SetDisplayBrightness(*params.Brightness)
	}

	if params.Contrast != nil {
		log.Info().Int("contrast", *params.Contrast).Msg("update")
		env.Config.SetDisplayContrast(*params.Contrast)
	}

	if params.Telemetry != nil {
		log.Info().Bool("telemetry", *params.Telemetry).Msg("update")
		env.Config.SetTelemetryEnabled(*params.Telemetry)
	}

	if params.DevicePath != nil {
		log.Info().Str("devicePath", *params.DevicePath).Msg("update")
		env.Config.SetDisplayDevice(*params.DevicePath)
	}

	err := env.Config.Save()
	if err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return models.NoContent{}, nil
}
