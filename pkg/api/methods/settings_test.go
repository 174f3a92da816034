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
	"testing"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSettings(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	result, err := HandleSettings(requests.RequestEnv{Config: cfg})
	require.NoError(t, err)

	resp, ok := result.(models.SettingsResponse)
	require.True(t, ok)
	assert.Equal(t, "/dev/ttyACM0", resp.DevicePath)
	assert.Equal(t, config.DefaultBrightness, resp.Brightness)
	assert.Equal(t, config.DefaultContrast, resp.Contrast)
	assert.True(t, resp.Use24h)
	assert.True(t, resp.HourlyChime)
	assert.False(t, resp.DebugLogging)
	assert.False(t, resp.Telemetry)
}

func TestHandleSettingsUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		check     func(t *testing.T, cfg *config.Instance)
		name      string
		params    string
		wantError bool
	}{
		{
			name:   "update display fields",
			params: `{"brightness": 64, "contrast": 32, "use24h": false}`,
			check: func(t *testing.T, cfg *config.Instance) {
				assert.Equal(t, byte(64), cfg.DisplayBrightness())
				assert.Equal(t, byte(32), cfg.DisplayContrast())
				assert.False(t, cfg.DisplayUse24h())
			},
		},
		{
			name:   "update device path",
			params: `{"devicePath": "/dev/ttyUSB1"}`,
			check: func(t *testing.T, cfg *config.Instance) {
				assert.Equal(t, "/dev/ttyUSB1", cfg.DisplayDevice())
			},
		},
		{
			name:   "update toggles",
			params: `{"debugLogging": true, "hourlyChime": false, "telemetry": true}`,
			check: func(t *testing.T, cfg *config.Instance) {
				assert.True(t, cfg.DebugLogging())
				assert.False(t, cfg.HourlyChime())
				assert.True(t, cfg.TelemetryEnabled())
			},
		},
		{
			name:   "empty object changes nothing",
			params: `{}`,
			check: func(t *testing.T, cfg *config.Instance) {
				assert.Equal(t, byte(config.DefaultBrightness), cfg.DisplayBrightness())
				assert.True(t, cfg.DisplayUse24h())
			},
		},
		{
			name:      "brightness out of range",
			params:    `{"brightness": 300}`,
			wantError: true,
		},
		{
			name:      "missing params",
			params:    "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
			require.NoError(t, err)

			env := requests.RequestEnv{
				Config: cfg,
				Params: []byte(tt.params),
			}

			result, err := HandleSettingsUpdate(env)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.NoContent{}, result)
			tt.check(t, cfg)
		})
	}
}

func TestHandleSettingsUpdatePersists(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfg, err := config.NewConfig(tmpDir, config.BaseDefaults)
	require.NoError(t, err)

	env := requests.RequestEnv{
		Config: cfg,
		Params: []byte(`{"brightness": 42}`),
	}
	_, err = HandleSettingsUpdate(env)
	require.NoError(t, err)

	// A fresh instance reading the same directory sees the saved value.
	reloaded, err := config.NewConfig(tmpDir, config.BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, byte(42), reloaded.DisplayBrightness())
}

func TestHandleSettingsReload(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	cfg.SetDisplayBrightness(10)
	require.NoError(t, cfg.Save())

	// Unsaved in-memory change should be discarded by the reload.
	cfg.SetDisplayBrightness(99)

	result, err := HandleSettingsReload(requests.RequestEnv{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, models.NoContent{}, result)
	assert.Equal(t, byte(10), cfg.DisplayBrightness())
}
