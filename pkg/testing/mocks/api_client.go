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

package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of client.APIClient for testing.
type MockAPIClient struct {
	mock.Mock
}

// NewMockAPIClient creates a new mock API client.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Call mocks the API call method.
func (m *MockAPIClient) Call(ctx context.Context, method, params string) (string, error) {
	args := m.Called(ctx, method, params)
	return args.String(0), args.Error(1)
}

// WaitNotification mocks waiting for a notification.
func (m *MockAPIClient) WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	notificationType string,
) (string, error) {
	args := m.Called(ctx, timeout, notificationType)
	return args.String(0), args.Error(1)
}

// SetupSettingsResponse configures the mock to return a settings response.
func (m *MockAPIClient) SetupSettingsResponse(settings *models.SettingsResponse) {
	data, _ := json.Marshal(settings)
	m.On("Call", mock.Anything, models.MethodSettingsGet, "").Return(string(data), nil)
}

// SetupSettingsError configures the mock to return an error for settings.
func (m *MockAPIClient) SetupSettingsError(err error) {
	m.On("Call", mock.Anything, models.MethodSettingsGet, "").Return("", err)
}

// SetupUpdateSettingsSuccess configures the mock to accept settings updates.
func (m *MockAPIClient) SetupUpdateSettingsSuccess() {
	m.On("Call", mock.Anything, models.MethodSettingsSet, mock.Anything).Return("{}", nil)
}

// SetupUpdateSettingsError configures the mock to return an error on update.
func (m *MockAPIClient) SetupUpdateSettingsError(err error) {
	m.On("Call", mock.Anything, models.MethodSettingsSet, mock.Anything).Return("", err)
}

// SetupStateResponse configures the mock to return a state response.
func (m *MockAPIClient) SetupStateResponse(state *models.StateResponse) {
	data, _ := json.Marshal(state)
	m.On("Call", mock.Anything, models.MethodStateGet, "").Return(string(data), nil)
}

// SetupStateError configures the mock to return an error for state.
func (m *MockAPIClient) SetupStateError(err error) {
	m.On("Call", mock.Anything, models.MethodStateGet, "").Return("", err)
}

// SetupSetStateSuccess configures the mock to accept state changes.
func (m *MockAPIClient) SetupSetStateSuccess() {
	m.On("Call", mock.Anything, models.MethodStateSet, mock.Anything).Return("{}", nil)
}

// SetupStateChangedNotification configures the mock to return a state.changed
// notification.
func (m *MockAPIClient) SetupStateChangedNotification(params *models.StateChangedParams) {
	data, _ := json.Marshal(params)
	m.On("WaitNotification", mock.Anything, mock.Anything, models.NotificationStateChanged).
		Return(string(data), nil)
}
