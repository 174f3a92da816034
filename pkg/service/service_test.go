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

package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/GlowclockProject/glowclock-core/pkg/service/broker"
	"github.com/GlowclockProject/glowclock-core/pkg/service/state"
	testhelpers "github.com/GlowclockProject/glowclock-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSetupEnvironment(t *testing.T) {
	t.Parallel()

	dataDir := filepath.Join(t.TempDir(), "nested", "glowclock")

	err := setupEnvironment(dataDir)
	require.NoError(t, err)

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Calling again on an existing directory must be a no-op
	err = setupEnvironment(dataDir)
	assert.NoError(t, err)
}

func TestMakeDatabase_CreatesAndMigrates(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	db, err := makeDatabase(context.Background(), dataDir)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.UserDB.Close())
	}()

	// All migrated tables should be usable straight away
	err = db.UserDB.AddHistory(&database.HistoryEntry{
		ID:    "test-entry",
		Time:  time.Now(),
		Mode:  "clock",
		Color: "#ffffff",
	})
	require.NoError(t, err)

	resourceErrors, err := db.UserDB.GetResourceErrors(10)
	require.NoError(t, err)
	assert.Empty(t, resourceErrors)
}

func TestCleanupDatabaseOnStartup(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	mockUserDB.On("CleanupHistory", historyRetentionDays).Return(int64(3), nil)
	mockUserDB.On("CleanupResourceErrors", resourceErrorRetentionDays).Return(int64(0), nil)

	cleanupDatabaseOnStartup(db)

	mockUserDB.AssertExpectations(t)
}

func TestCleanupDatabaseOnStartup_DatabaseError(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	// Cleanup failures are logged, never fatal
	mockUserDB.On("CleanupHistory", historyRetentionDays).Return(int64(0), assert.AnError)
	mockUserDB.On("CleanupResourceErrors", resourceErrorRetentionDays).Return(int64(0), assert.AnError)

	cleanupDatabaseOnStartup(db)

	mockUserDB.AssertExpectations(t)
}

func TestRestoreUserState_NoSavedState(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	mockUserDB.On("SavedUserState").Return("", "", nil)

	restored := restoreUserState(db)

	assert.Equal(t, defaultUserState, restored)
	mockUserDB.AssertExpectations(t)
}

func TestRestoreUserState_RestoresSavedState(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	mockUserDB.On("SavedUserState").Return("weather", "#00ff80", nil)

	restored := restoreUserState(db)

	assert.Equal(t, resources.ModeWeather, restored.Mode)
	assert.Equal(t, resources.Color{R: 0x00, G: 0xFF, B: 0x80}, restored.Color)
	mockUserDB.AssertExpectations(t)
}

func TestRestoreUserState_InvalidModeFallsBack(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	// Unknown mode falls back, valid color is still kept
	mockUserDB.On("SavedUserState").Return("disco", "#112233", nil)

	restored := restoreUserState(db)

	assert.Equal(t, defaultUserState.Mode, restored.Mode)
	assert.Equal(t, resources.Color{R: 0x11, G: 0x22, B: 0x33}, restored.Color)
}

func TestRestoreUserState_InvalidColorFallsBack(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	mockUserDB.On("SavedUserState").Return("off", "not-a-color", nil)

	restored := restoreUserState(db)

	assert.Equal(t, resources.ModeOff, restored.Mode)
	assert.Equal(t, defaultUserState.Color, restored.Color)
}

func TestRestoreUserState_ReadError(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	mockUserDB.On("SavedUserState").Return("", "", assert.AnError)

	restored := restoreUserState(db)

	assert.Equal(t, defaultUserState, restored)
}

func TestPersistStateChanges(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	st, ns := state.NewState("test-boot-uuid", defaultUserState)
	defer st.StopService()
	persistStateChanges(st, db)

	// The hook runs on its own goroutine; signal through the mock
	historySaved := make(chan struct{})
	mockUserDB.On("SaveUserState", "weather", "#00ff00").Return(nil)
	mockUserDB.On("AddHistory", testhelpers.HistoryEntryMatcher()).
		Run(func(_ mock.Arguments) { close(historySaved) }).
		Return(nil)

	st.SetUserState(resources.UserState{
		Mode:  resources.ModeWeather,
		Color: resources.Color{G: 0xFF},
	})

	select {
	case <-historySaved:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for history entry to be persisted")
	}

	// A state change also emits a notification on the source channel
	select {
	case notif := <-ns:
		assert.Equal(t, models.NotificationStateChanged, notif.Method)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state change notification")
	}

	mockUserDB.AssertExpectations(t)
}

func TestPersistStateChanges_SaveErrorStillAddsHistory(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	st, _ := state.NewState("test-boot-uuid", defaultUserState)
	defer st.StopService()
	persistStateChanges(st, db)

	historySaved := make(chan struct{})
	mockUserDB.On("SaveUserState", "off", "#ffffff").Return(assert.AnError)
	mockUserDB.On("AddHistory", testhelpers.HistoryEntryMatcher()).
		Run(func(_ mock.Arguments) { close(historySaved) }).
		Return(nil)

	st.SetUserState(resources.UserState{
		Mode:  resources.ModeOff,
		Color: defaultUserState.Color,
	})

	select {
	case <-historySaved:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for history entry to be persisted")
	}

	mockUserDB.AssertExpectations(t)
}

func TestNewResourceErrorSink_ReportsAndRecords(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	st, ns := state.NewState("test-boot-uuid", defaultUserState)
	defer st.StopService()

	mockUserDB.On("LogResourceError", mock.MatchedBy(func(entry *database.ResourceError) bool {
		return entry.Resource == "lcd" && entry.Message == assert.AnError.Error()
	})).Return(nil).Once()

	sink := newResourceErrorSink(st, db)
	sink("lcd", assert.AnError)

	select {
	case notif := <-ns:
		assert.Equal(t, models.NotificationResourceError, notif.Method)
		assert.Contains(t, string(notif.Params), "lcd")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for resource error notification")
	}

	mockUserDB.AssertExpectations(t)
}

func TestNewResourceErrorSink_RateLimitsRepeatedFailures(t *testing.T) {
	t.Parallel()

	mockUserDB := testhelpers.NewMockUserDBI()
	db := &database.Database{UserDB: mockUserDB}

	st, ns := state.NewState("test-boot-uuid", defaultUserState)
	defer st.StopService()

	// A dead resource fails every tick but only the first report in the
	// window goes through. A different resource is not affected.
	mockUserDB.On("LogResourceError", mock.Anything).Return(nil).Twice()

	sink := newResourceErrorSink(st, db)
	for range 5 {
		sink("lcd", assert.AnError)
	}
	sink("chime", assert.AnError)

	received := 0
	for {
		select {
		case <-ns:
			received++
		case <-time.After(200 * time.Millisecond):
			assert.Equal(t, 2, received, "expected one report per resource")
			mockUserDB.AssertExpectations(t)
			return
		}
	}
}

func TestDisplayLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{
			name:     "empty timezone uses system local",
			timezone: "",
			want:     time.Local.String(),
		},
		{
			name:     "valid timezone is loaded",
			timezone: "UTC",
			want:     "UTC",
		},
		{
			name:     "invalid timezone falls back to system local",
			timezone: "Not/AZone",
			want:     time.Local.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			configDir := t.TempDir()
			if tt.timezone != "" {
				configContent := "config_schema = 1\n\n[display]\ndevice = \"/dev/ttyACM0\"\ntimezone = \"" + tt.timezone + "\"\n"
				err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(configContent), 0o600)
				require.NoError(t, err)
			}

			cfg, err := testhelpers.NewTestConfig(testhelpers.NewMemoryFS(), configDir)
			require.NoError(t, err)

			loc := displayLocation(cfg)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestStartPublishers_NoPublishers(t *testing.T) {
	t.Parallel()

	cfg, err := testhelpers.NewTestConfig(testhelpers.NewMemoryFS(), t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan models.Notification)
	notifBroker := broker.NewBroker(ctx, source)

	active := startPublishers(cfg, notifBroker)

	assert.Empty(t, active, "should return empty slice when no publishers configured")
}

func TestStartPublishers_DisabledPublisher(t *testing.T) {
	t.Parallel()

	configDir := t.TempDir()
	configContent := `
config_schema = 1

[[service.publishers.mqtt]]
enabled = false
broker = "localhost:1883"
topic = "glowclock/events"
`
	err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(configContent), 0o600)
	require.NoError(t, err)

	cfg, err := testhelpers.NewTestConfig(testhelpers.NewMemoryFS(), configDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan models.Notification)
	notifBroker := broker.NewBroker(ctx, source)

	active := startPublishers(cfg, notifBroker)

	assert.Empty(t, active, "should skip disabled publishers")
}

// resourceManager tests run against a real LCD driver pointed at a device
// path that does not exist. The runner fails fast on the absent device and
// reports through the sink, but the manager itself must keep running until
// cancelled: the next config reload is the retry.

func TestResourceManager_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	configDir := t.TempDir()
	configContent := `
config_schema = 1

[display]
device = "` + filepath.Join(configDir, "no-such-tty") + `"

[audio]
hourly_chime = false
`
	err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(configContent), 0o600)
	require.NoError(t, err)

	cfg, err := testhelpers.NewTestConfig(testhelpers.NewMemoryFS(), configDir)
	require.NoError(t, err)

	st, _ := state.NewState("test-boot-uuid", defaultUserState)
	ctx, cancel := context.WithCancel(context.Background())

	noopSink := func(string, error) {}
	reload := make(chan struct{}, 1)
	done := resourceManager(ctx, cfg, st, nil, nil, noopSink, t.TempDir(), reload)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("resource manager did not stop after context cancellation")
	}
}

func TestResourceManager_RebuildsOnReload(t *testing.T) {
	t.Parallel()

	configDir := t.TempDir()
	configContent := `
config_schema = 1

[display]
device = "` + filepath.Join(configDir, "no-such-tty") + `"

[audio]
hourly_chime = false
`
	err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(configContent), 0o600)
	require.NoError(t, err)

	cfg, err := testhelpers.NewTestConfig(testhelpers.NewMemoryFS(), configDir)
	require.NoError(t, err)

	st, _ := state.NewState("test-boot-uuid", defaultUserState)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	noopSink := func(string, error) {}
	reload := make(chan struct{}, 1)
	done := resourceManager(ctx, cfg, st, nil, nil, noopSink, t.TempDir(), reload)

	// Signal a reload; the manager must survive the rebuild and still
	// shut down cleanly afterwards
	reload <- struct{}{}
	time.Sleep(100 * time.Millisecond)

	select {
	case <-done:
		t.Fatal("resource manager stopped on reload instead of rebuilding")
	default:
	}

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("resource manager did not stop after context cancellation")
	}
}
