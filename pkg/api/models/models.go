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

// Package models defines the JSON-RPC 2.0 wire objects for the local API,
// plus the method and notification names it speaks.
package models

import "encoding/json"

const (
	NotificationRunning       = "running"
	NotificationStateChanged  = "state.changed"
	NotificationResourceError = "resource.error"
)

const (
	MethodVersion        = "version"
	MethodStatus         = "status"
	MethodStateGet       = "state.get"
	MethodStateSet       = "state.set"
	MethodHistoryRead    = "history.read"
	MethodSettingsGet    = "settings.get"
	MethodSettingsSet    = "settings.set"
	MethodSettingsReload = "settings.reload"
	MethodWeatherGet     = "weather.get"
)

// Notification is a server-initiated event broadcast to every connected
// client as a JSON-RPC request without an ID.
type Notification struct {
	Method string
	Params json.RawMessage
}

type RequestObject struct {
	ID      *RPCID          `json:"id,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// ResponseErrorObject exists for sending errors, so we can omit result from
// the response, but so nil results are still included when using the main
// ResponseObject.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}
