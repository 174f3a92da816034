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
	"fmt"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/api/validation"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/rs/zerolog/log"
)

func HandleStateGet(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received state get request")

	user := env.State.UserState()
	return models.StateResponse{
		Mode:  string(user.Mode),
		Color: user.Color.String(),
	}, nil
}

// HandleStateSet merges the given fields onto the current user state and
// stores the result with a single state write, so each request produces at
// most one state.changed notification.
func HandleStateSet(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received state set request")

	var params models.SetStateParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		log.Error().Err(err).Msg("invalid params")
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	user := env.State.UserState()

	if params.Mode != nil {
		log.Info().Str("mode", *params.Mode).Msg("update")
		mode := resources.Mode(*params.Mode)
		if !mode.IsValid() {
			return nil, validation.ErrInvalidParams
		}
		user.Mode = mode
	}

	if params.Color != nil {
		log.Info().Str("color", *params.Color).Msg("update")
		color, err := resources.ParseColor(*params.Color)
		if err != nil {
			return nil, validation.ErrInvalidParams
		}
		user.Color = color
	}

	env.State.SetUserState(user)

	return models.StateResponse{
		Mode:  string(user.Mode),
		Color: user.Color.String(),
	}, nil
}
