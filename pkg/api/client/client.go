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

// Package client implements one-shot JSON-RPC calls to a running local
// service, used by the CLI and config UI.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api"

func localWebSocketURL(cfg *config.Instance) url.URL {
	return url.URL{
		Scheme: "ws",
		Host:   "localhost:" + strconv.Itoa(cfg.APIPort()),
		Path:   APIPath,
	}
}

// LocalClient sends a single method with params to the local running API
// service, waits for a response until timeout then disconnects.
func LocalClient(
	ctx context.Context,
	cfg *config.Instance,
	method string,
	params string,
) (string, error) {
	wsURL := localWebSocketURL(cfg)

	id := models.NewStringID(uuid.New().String())
	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}

	switch {
	case len(params) == 0:
		req.Params = nil
	case json.Valid([]byte(params)):
		req.Params = []byte(params)
	default:
		return "", ErrInvalidParams
	}

	c, dialResp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to dial websocket: %w", err)
	}
	if dialResp != nil && dialResp.Body != nil {
		_ = dialResp.Body.Close()
	}
	defer func(c *websocket.Conn) {
		if closeErr := c.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing websocket")
		}
	}(c)

	done := make(chan struct{})
	var resp *models.ResponseObject

	go func() {
		defer close(done)
		for {
			_, message, readErr := c.ReadMessage()
			if readErr != nil {
				// expected when the connection closes on timeout or cancel
				log.Debug().Err(readErr).Msg("stopped reading websocket")
				return
			}

			var m models.ResponseObject
			if unmarshalErr := json.Unmarshal(message, &m); unmarshalErr != nil {
				continue
			}

			if m.JSONRPC != "2.0" {
				log.Error().Msg("invalid jsonrpc version")
				continue
			}

			if !m.ID.Equal(id) {
				continue
			}

			resp = &m
			return
		}
	}()

	if writeErr := c.WriteJSON(req); writeErr != nil {
		return "", fmt.Errorf("failed to send request: %w", writeErr)
	}

	timer := time.NewTimer(config.APIRequestTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		if closeErr := c.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing websocket")
		}
		return "", ErrRequestTimeout
	case <-ctx.Done():
		if closeErr := c.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing websocket")
		}
		return "", ErrRequestCancelled
	}

	if resp == nil {
		return "", ErrRequestTimeout
	}

	if resp.Error != nil {
		return "", errors.New(resp.Error.Message)
	}

	b, err := json.Marshal(resp.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(b), nil
}

// WaitNotification blocks until the service broadcasts a notification with
// the given method, then returns its params as JSON. A timeout of 0 uses
// the default request timeout; negative means wait until ctx is done.
func WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	cfg *config.Instance,
	method string,
) (string, error) {
	_, params, err := WaitNotifications(ctx, timeout, cfg, method)
	return params, err
}

// WaitNotifications blocks until the service broadcasts a notification
// matching any of the given methods, and returns the method that matched
// along with its params as JSON.
func WaitNotifications(
	ctx context.Context,
	timeout time.Duration,
	cfg *config.Instance,
	methods ...string,
) (string, string, error) {
	wsURL := localWebSocketURL(cfg)

	wanted := make(map[string]bool, len(methods))
	for _, m := range methods {
		wanted[m] = true
	}

	c, dialResp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to dial websocket: %w", err)
	}
	if dialResp != nil && dialResp.Body != nil {
		_ = dialResp.Body.Close()
	}
	defer func(c *websocket.Conn) {
		if closeErr := c.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing websocket")
		}
	}(c)

	done := make(chan struct{})
	var notif *models.RequestObject

	go func() {
		defer close(done)
		for {
			_, message, readErr := c.ReadMessage()
			if readErr != nil {
				log.Debug().Err(readErr).Msg("stopped reading websocket")
				return
			}

			var m models.RequestObject
			if unmarshalErr := json.Unmarshal(message, &m); unmarshalErr != nil {
				continue
			}

			if m.JSONRPC != "2.0" {
				log.Error().Msg("invalid jsonrpc version")
				continue
			}

			// notifications have no id; anything else is a response or
			// request meant for someone else
			if m.ID != nil {
				continue
			}

			if !wanted[m.Method] {
				continue
			}

			notif = &m
			return
		}
	}()

	var timerChan <-chan time.Time
	switch {
	case timeout == 0:
		timer := time.NewTimer(config.APIRequestTimeout)
		defer timer.Stop()
		timerChan = timer.C
	case timeout > 0:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerChan = timer.C
	}
	// or else leave chan nil, which will never receive

	select {
	case <-done:
	case <-timerChan:
		if closeErr := c.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing websocket")
		}
		return "", "", ErrRequestTimeout
	case <-ctx.Done():
		if closeErr := c.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing websocket")
		}
		return "", "", ErrRequestCancelled
	}

	if notif == nil {
		return "", "", ErrRequestTimeout
	}

	return notif.Method, string(notif.Params), nil
}

// IsServiceRunning reports whether a local service instance answers a
// version call.
func IsServiceRunning(cfg *config.Instance) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := LocalClient(ctx, cfg, models.MethodVersion, "")
	return err == nil
}

// WaitForAPI polls until the local service answers or the timeout passes.
func WaitForAPI(cfg *config.Instance, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if IsServiceRunning(cfg) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
