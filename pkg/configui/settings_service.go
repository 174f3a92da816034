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

package configui

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GlowclockProject/glowclock-core/pkg/api/client"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
)

// SettingsService handles settings and display state API operations.
type SettingsService interface {
	// GetSettings fetches current settings from the API.
	GetSettings(ctx context.Context) (*models.SettingsResponse, error)

	// UpdateSettings sends a settings update to the API.
	UpdateSettings(ctx context.Context, params models.UpdateSettingsParams) error

	// GetState fetches the current display state from the API.
	GetState(ctx context.Context) (*models.StateResponse, error)

	// SetState sends a display state change to the API.
	SetState(ctx context.Context, params models.SetStateParams) error
}

// DefaultSettingsService implements SettingsService using an APIClient.
type DefaultSettingsService struct {
	apiClient client.APIClient
}

// NewSettingsService creates a SettingsService that uses the given APIClient.
func NewSettingsService(apiClient client.APIClient) *DefaultSettingsService {
	return &DefaultSettingsService{apiClient: apiClient}
}

// GetSettings fetches current settings from the API.
func (s *DefaultSettingsService) GetSettings(ctx context.Context) (*models.SettingsResponse, error) {
	resp, err := s.apiClient.Call(ctx, models.MethodSettingsGet, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	var settings models.SettingsResponse
	if err := json.Unmarshal([]byte(resp), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &settings, nil
}

// UpdateSettings sends a settings update to the API.
func (s *DefaultSettingsService) UpdateSettings(ctx context.Context, params models.UpdateSettingsParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	_, err = s.apiClient.Call(ctx, models.MethodSettingsSet, string(data))
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// GetState fetches the current display state from the API.
func (s *DefaultSettingsService) GetState(ctx context.Context) (*models.StateResponse, error) {
	resp, err := s.apiClient.Call(ctx, models.MethodStateGet, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	var state models.StateResponse
	if err := json.Unmarshal([]byte(resp), &state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &state, nil
}

// SetState sends a display state change to the API.
func (s *DefaultSettingsService) SetState(ctx context.Context, params models.SetStateParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	_, err = s.apiClient.Call(ctx, models.MethodStateSet, string(data))
	if err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	return nil
}
