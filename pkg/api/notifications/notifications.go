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

// Package notifications provides typed constructors for the events the
// service broadcasts to API clients. Payloads are marshaled at send time so
// a bad payload never reaches the wire half-encoded.
package notifications

import (
	"encoding/json"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/rs/zerolog/log"
)

func send(ns chan<- models.Notification, method string, payload any) {
	notif := models.Notification{Method: method}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("marshalling notification payload")
			return
		}
		notif.Params = data
	}
	ns <- notif
}

// Running signals that the service has finished starting up.
func Running(ns chan<- models.Notification) {
	send(ns, models.NotificationRunning, nil)
}

// StateChanged reports a new display mode or color.
func StateChanged(ns chan<- models.Notification, payload models.StateChangedParams) {
	send(ns, models.NotificationStateChanged, payload)
}

// ResourceError reports a failed hardware resource tick.
func ResourceError(ns chan<- models.Notification, payload models.ResourceErrorParams) {
	send(ns, models.NotificationResourceError, payload)
}
