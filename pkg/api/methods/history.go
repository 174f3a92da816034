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

// HandleHistoryRead returns pages of past display state changes, newest
// first. Params are optional; without them the first page is returned at the
// default page size.
func HandleHistoryRead(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received history read request")

	var lastID, limit int
	if len(env.Params) > 0 {
		var params models.HistoryReadParams
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			log.Error().Err(err).Msg("invalid params")
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		if params.LastID != nil {
			lastID = *params.LastID
		}
		if params.Limit != nil {
			limit = *params.Limit
		}
	}

	entries, err := env.Database.UserDB.GetHistory(lastID, limit)
	if err != nil {
		log.Error().Err(err).Msg("error getting history")
		return nil, errors.New("error getting history")
	}

	resp := models.HistoryResponse{
		Entries: make([]models.HistoryResponseEntry, len(entries)),
	}

	for i, e := range entries {
		resp.Entries[i] = models.HistoryResponseEntry{
			Time:  e.Time,
			Mode:  e.Mode,
			Color: e.Color,
			ID:    e.DBID,
		}
	}

	return resp, nil
}
