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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/api/validation"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/GlowclockProject/glowclock-core/pkg/service/state"
	"github.com/GlowclockProject/glowclock-core/pkg/testing/helpers"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMethodMap returns a registry with simple test methods, so request
// plumbing can be exercised without real handler dependencies.
func newTestMethodMap(t *testing.T) *MethodMap {
	t.Helper()

	methodMap := NewMethodMap()

	err := methodMap.AddMethod("test.echo", func(_ requests.RequestEnv) (any, error) {
		return map[string]string{"echo": "success"}, nil
	})
	require.NoError(t, err)

	err = methodMap.AddMethod("test.error", func(_ requests.RequestEnv) (any, error) {
		return nil, errors.New("test error")
	})
	require.NoError(t, err)

	return methodMap
}

func newTestServerDeps(t *testing.T) (*config.Instance, *state.State, *database.Database) {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	st, _ := state.NewState("test-boot-uuid", resources.UserState{
		Mode:  resources.ModeClock,
		Color: resources.Color{R: 0xff, G: 0x88, B: 0x00},
	})
	t.Cleanup(st.StopService)

	db := &database.Database{UserDB: helpers.NewMockUserDBI()}
	return cfg, st, db
}

func TestMethodMap_AddAndGet(t *testing.T) {
	t.Parallel()

	methodMap := NewMethodMap()
	handler := func(_ requests.RequestEnv) (any, error) { return nil, nil }

	require.NoError(t, methodMap.AddMethod("state.get", handler))

	_, ok := methodMap.GetMethod("state.get")
	assert.True(t, ok)

	// lookups are case-insensitive
	_, ok = methodMap.GetMethod("State.Get")
	assert.True(t, ok)

	_, ok = methodMap.GetMethod("state.unknown")
	assert.False(t, ok)
}

func TestMethodMap_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	methodMap := NewMethodMap()
	handler := func(_ requests.RequestEnv) (any, error) { return nil, nil }

	require.NoError(t, methodMap.AddMethod("version", handler))
	err := methodMap.AddMethod("VERSION", handler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestMethodMap_RejectsEmptyNameAndNilHandler(t *testing.T) {
	t.Parallel()

	methodMap := NewMethodMap()

	err := methodMap.AddMethod("", func(_ requests.RequestEnv) (any, error) { return nil, nil })
	require.Error(t, err)

	err = methodMap.AddMethod("version", nil)
	require.Error(t, err)
}

func TestDefaultMethodMap_ExposesAllMethods(t *testing.T) {
	t.Parallel()

	methodMap := DefaultMethodMap()

	for _, name := range []string{
		models.MethodVersion,
		models.MethodStatus,
		models.MethodStateGet,
		models.MethodStateSet,
		models.MethodHistoryRead,
		models.MethodSettingsGet,
		models.MethodSettingsSet,
		models.MethodSettingsReload,
		models.MethodWeatherGet,
	} {
		_, ok := methodMap.GetMethod(name)
		assert.True(t, ok, "method %s should be registered", name)
	}
}

func TestErrorObjectFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		name     string
		wantCode int
	}{
		{
			name:     "method not found",
			err:      fmt.Errorf("%w: state.unknown", ErrMethodNotFound),
			wantCode: -32601,
		},
		{
			name:     "missing params",
			err:      fmt.Errorf("invalid params: %w", validation.ErrMissingParams),
			wantCode: -32602,
		},
		{
			name:     "invalid params",
			err:      fmt.Errorf("invalid params: %w", validation.ErrInvalidParams),
			wantCode: -32602,
		},
		{
			name:     "handler failure",
			err:      errors.New("error getting history"),
			wantCode: -32000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errObj := errorObjectFor(tt.err)
			assert.Equal(t, tt.wantCode, errObj.Code)
			assert.NotEmpty(t, errObj.Message)
		})
	}
}

// newWSTestClient wires handleWSMessage into a test WebSocket server and
// returns a connected client.
func newWSTestClient(t *testing.T, methodMap *MethodMap) *websocket.Conn {
	t.Helper()

	cfg, st, db := newTestServerDeps(t)

	wsts := helpers.NewWebSocketTestServer(t, handleWSMessage(methodMap, cfg, st, db, nil))
	t.Cleanup(wsts.Close)

	conn, err := wsts.CreateWebSocketClient()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWSMessage_PingPong(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(msg))
}

func TestWSMessage_MethodCall(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	resp, err := helpers.SendJSONRPCRequest(conn, "test.echo", nil)
	require.NoError(t, err)
	helpers.AssertJSONRPCSuccess(t, resp)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok, "result should be an object")
	assert.Equal(t, "success", result["echo"])
}

func TestWSMessage_StateGet(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, DefaultMethodMap())

	resp, err := helpers.SendJSONRPCRequest(conn, models.MethodStateGet, nil)
	require.NoError(t, err)
	helpers.AssertJSONRPCSuccess(t, resp)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok, "result should be an object")
	assert.Equal(t, "clock", result["mode"])
	assert.Equal(t, "#ff8800", result["color"])
}

func TestWSMessage_MethodNotFound(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	resp, err := helpers.SendJSONRPCRequest(conn, "no.such.method", nil)
	require.NoError(t, err)
	helpers.AssertJSONRPCError(t, resp, -32601)
}

func TestWSMessage_InvalidParams(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, DefaultMethodMap())

	resp, err := helpers.SendJSONRPCRequest(conn, models.MethodStateSet,
		map[string]string{"mode": "disco"})
	require.NoError(t, err)
	helpers.AssertJSONRPCError(t, resp, -32602)
}

func TestWSMessage_HandlerError(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	resp, err := helpers.SendJSONRPCRequest(conn, "test.error", nil)
	require.NoError(t, err)
	helpers.AssertJSONRPCError(t, resp, -32000)
	assert.Contains(t, resp.Error.Message, "test error")
}

func TestWSMessage_ParseError(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{invalid json`)))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(msg, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32700, resp.Error.Code)
	assert.True(t, resp.ID.IsNull(), "parse errors have a null id")
}

func TestWSMessage_WrongVersion(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	payload := `{"jsonrpc":"1.0","id":"abc","method":"test.echo"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp models.ResponseErrorObject
	require.NoError(t, json.Unmarshal(msg, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32600, resp.Error.Code)
	assert.Equal(t, `"abc"`, resp.ID.String(), "error echoes the request id")
}

// A request without an id is a notification and must not get a reply. The
// next message read after sending one should be the response to the
// follow-up request, not a stray reply to the notification.
func TestWSMessage_NotificationGetsNoReply(t *testing.T) {
	t.Parallel()

	conn := newWSTestClient(t, newTestMethodMap(t))

	notification := `{"jsonrpc":"2.0","method":"test.echo"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notification)))

	resp, err := helpers.SendJSONRPCRequest(conn, "test.echo", nil)
	require.NoError(t, err)
	helpers.AssertJSONRPCSuccess(t, resp)
	assert.False(t, resp.ID.IsAbsent(), "reply should correlate to the identified request")
}
