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

package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/require"
)

// WebSocketTestServer provides utilities for testing WebSocket connections
type WebSocketTestServer struct {
	Server   *httptest.Server
	Melody   *melody.Melody
	t        *testing.T
	Messages []WebSocketMessage
	mu       sync.RWMutex
}

// WebSocketMessage captures a message sent or received during testing
type WebSocketMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Error     error     `json:"error,omitempty"`
	Type      string    `json:"type"`
	Data      []byte    `json:"data"`
}

// JSONRPCResponse represents a JSON-RPC response for testing
type JSONRPCResponse struct {
	Result any                 `json:"result,omitempty"`
	Error  *models.ErrorObject `json:"error,omitempty"`
	ID     models.RPCID        `json:"id"`
}

// NewWebSocketTestServer creates a WebSocket test server serving /api with
// the given melody message handler.
func NewWebSocketTestServer(t *testing.T, handler func(*melody.Session, []byte)) *WebSocketTestServer {
	m := melody.New()

	wsts := &WebSocketTestServer{
		Melody:   m,
		Messages: make([]WebSocketMessage, 0),
		t:        t,
	}

	if handler != nil {
		m.HandleMessage(func(session *melody.Session, msg []byte) {
			wsts.recordMessage("received", msg, nil)
			handler(session, msg)
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		err := m.HandleRequest(w, r)
		if err != nil {
			wsts.recordMessage("error", nil, err)
		}
	})

	wsts.Server = httptest.NewServer(mux)

	// Brief wait to ensure server is fully ready for WebSocket connections
	// This prevents "bad handshake" errors in CI environments with high load
	time.Sleep(5 * time.Millisecond)

	return wsts
}

// recordMessage safely records a message for testing verification
func (wsts *WebSocketTestServer) recordMessage(msgType string, data []byte, err error) {
	wsts.mu.Lock()
	defer wsts.mu.Unlock()

	wsts.Messages = append(wsts.Messages, WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
		Error:     err,
	})
}

// Close shuts down the test server
func (wsts *WebSocketTestServer) Close() {
	wsts.Server.Close()
	_ = wsts.Melody.Close()
}

// GetMessages returns all recorded messages (thread-safe)
func (wsts *WebSocketTestServer) GetMessages() []WebSocketMessage {
	wsts.mu.RLock()
	defer wsts.mu.RUnlock()

	msgs := make([]WebSocketMessage, len(wsts.Messages))
	copy(msgs, wsts.Messages)
	return msgs
}

// ClearMessages clears all recorded messages (thread-safe)
func (wsts *WebSocketTestServer) ClearMessages() {
	wsts.mu.Lock()
	defer wsts.mu.Unlock()

	wsts.Messages = wsts.Messages[:0]
}

// CreateWebSocketClient creates a WebSocket client connected to the test server
func (wsts *WebSocketTestServer) CreateWebSocketClient() (*websocket.Conn, error) {
	u, err := url.Parse(wsts.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL: %w", err)
	}

	u.Scheme = "ws"
	u.Path = "/api"

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial WebSocket: %w", err)
	}
	if resp != nil && resp.Body != nil {
		// Close the response body to avoid resource leak
		_ = resp.Body.Close()
	}

	return conn, nil
}

// WaitForMessages waits for a specific number of messages with timeout
func (wsts *WebSocketTestServer) WaitForMessages(count int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %d messages, got %d", count, len(wsts.GetMessages()))
		case <-ticker.C:
			if len(wsts.GetMessages()) >= count {
				return nil
			}
		}
	}
}

// SendJSONRPCRequest sends a JSON-RPC request and returns the response
func SendJSONRPCRequest(conn *websocket.Conn, method string, params any) (*JSONRPCResponse, error) {
	id := models.NewStringID(uuid.New().String())
	request := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		request.Params = data
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	err = conn.WriteMessage(websocket.TextMessage, requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	_, responseData, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response JSONRPCResponse
	err = json.Unmarshal(responseData, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &response, nil
}

// AssertJSONRPCSuccess verifies a JSON-RPC response was successful
func AssertJSONRPCSuccess(t *testing.T, response *JSONRPCResponse) {
	require.NotNil(t, response, "response should not be nil")
	require.Nil(t, response.Error, "response should not contain an error")
	require.NotNil(t, response.Result, "response should contain a result")
}

// AssertJSONRPCError verifies a JSON-RPC response contains an error
func AssertJSONRPCError(t *testing.T, response *JSONRPCResponse, expectedCode int) {
	require.NotNil(t, response, "response should not be nil")
	require.NotNil(t, response.Error, "response should contain an error")
	require.Equal(t, expectedCode, response.Error.Code, "error code should match")
}

// HTTPTestHelper provides utilities for testing HTTP API endpoints
type HTTPTestHelper struct {
	Server *httptest.Server
	Client *http.Client
}

// NewHTTPTestHelper creates a new HTTP test helper with the given handler
func NewHTTPTestHelper(handler http.Handler) *HTTPTestHelper {
	server := httptest.NewServer(handler)
	client := server.Client()

	return &HTTPTestHelper{
		Server: server,
		Client: client,
	}
}

// Close shuts down the test server
func (h *HTTPTestHelper) Close() {
	h.Server.Close()
}

// PostJSONRPC sends a JSON-RPC request via HTTP POST
func (h *HTTPTestHelper) PostJSONRPC(method string, params any) (*http.Response, error) {
	id := models.NewStringID(uuid.New().String())
	request := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		request.Params = data
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := h.Server.URL + "/api"
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, apiURL,
		strings.NewReader(string(requestData)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send POST request: %w", err)
	}

	return resp, nil
}

// GetFreePort asks the kernel for a free TCP port. There is a small window
// between closing the probe listener and the caller binding the port, so
// tests using it should tolerate the rare collision by retrying.
func GetFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "finding free port")
	defer func() { _ = listener.Close() }()

	addr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok, "listener address is not TCP")
	return addr.Port
}
