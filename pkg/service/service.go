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

// Package service wires together the running daemon: database, shared state,
// hardware resources, weather, API server, MQTT publishers and mDNS.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/api/notifications"
	"github.com/GlowclockProject/glowclock-core/pkg/audio"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/GlowclockProject/glowclock-core/pkg/database/userdb"
	"github.com/GlowclockProject/glowclock-core/pkg/database/userdb/boltmigration"
	"github.com/GlowclockProject/glowclock-core/pkg/helpers"
	"github.com/GlowclockProject/glowclock-core/pkg/helpers/syncutil"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/GlowclockProject/glowclock-core/pkg/resources/chime"
	"github.com/GlowclockProject/glowclock-core/pkg/resources/lcd"
	"github.com/GlowclockProject/glowclock-core/pkg/service/broker"
	"github.com/GlowclockProject/glowclock-core/pkg/service/discovery"
	"github.com/GlowclockProject/glowclock-core/pkg/service/publishers"
	"github.com/GlowclockProject/glowclock-core/pkg/service/state"
	"github.com/GlowclockProject/glowclock-core/pkg/weather"
	"github.com/google/uuid"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	historyRetentionDays       = 90
	resourceErrorRetentionDays = 30

	// weatherCacheFile keeps the last fetched forecast under the data dir so
	// weather mode has something to show right after boot.
	weatherCacheFile = "forecast.json"

	// resourceErrorReportEvery limits how often a failing resource is
	// reported. A dead resource fails every tick; one report a minute is
	// enough for clients and the diagnostics log.
	resourceErrorReportEvery = time.Minute
)

// defaultUserState is what a factory-fresh clock shows before anyone has
// touched it.
var defaultUserState = resources.UserState{
	Mode:  resources.ModeClock,
	Color: resources.Color{R: 0xFF, G: 0xFF, B: 0xFF},
}

// setupEnvironment creates the data directory holding the database, logs and
// cached forecasts.
func setupEnvironment(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return nil
}

func makeDatabase(ctx context.Context, dataDir string) (*database.Database, error) {
	log.Debug().Msg("opening user database")
	userDB, err := userdb.OpenUserDB(ctx, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open user database: %w", err)
	}

	log.Debug().Msg("running user database migrations")
	err = userDB.MigrateUp()
	if err != nil {
		return nil, fmt.Errorf("error migrating userdb: %w", err)
	}

	// migrate mode/color out of the legacy bolt state file if one exists
	log.Debug().Msg("checking for boltdb migration")
	err = boltmigration.MaybeMigrate(dataDir, userDB)
	if err != nil {
		log.Error().Err(err).Msg("error migrating legacy bolt state")
	}

	return &database.Database{UserDB: userDB}, nil
}

// cleanupDatabaseOnStartup trims old history and resource error entries.
func cleanupDatabaseOnStartup(db *database.Database) {
	log.Info().Msgf("cleaning up history older than %d days", historyRetentionDays)
	rowsDeleted, cleanupErr := db.UserDB.CleanupHistory(historyRetentionDays)
	switch {
	case cleanupErr != nil:
		log.Error().Err(cleanupErr).Msg("error cleaning up history")
	case rowsDeleted > 0:
		log.Info().Msgf("deleted %d old history entries", rowsDeleted)
	default:
		log.Debug().Msg("no old history entries to clean up")
	}

	rowsDeleted, cleanupErr = db.UserDB.CleanupResourceErrors(resourceErrorRetentionDays)
	switch {
	case cleanupErr != nil:
		log.Error().Err(cleanupErr).Msg("error cleaning up resource errors")
	case rowsDeleted > 0:
		log.Info().Msgf("deleted %d old resource error entries", rowsDeleted)
	default:
		log.Debug().Msg("no old resource error entries to clean up")
	}
}

// restoreUserState reads the persisted mode and color so the clock resumes
// its last look after a restart. Anything missing or unparseable falls back
// to the defaults, field by field.
func restoreUserState(db *database.Database) resources.UserState {
	mode, color, err := db.UserDB.SavedUserState()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read saved user state, using defaults")
		return defaultUserState
	}
	if mode == "" && color == "" {
		log.Debug().Msg("no saved user state, using defaults")
		return defaultUserState
	}

	restored := defaultUserState
	if m := resources.Mode(mode); m.IsValid() {
		restored.Mode = m
	} else {
		log.Warn().Str("mode", mode).Msg("saved mode not recognized, using default")
	}
	if parsed, parseErr := resources.ParseColor(color); parseErr == nil {
		restored.Color = parsed
	} else {
		log.Warn().Err(parseErr).Msg("saved color not parseable, using default")
	}

	log.Info().
		Str("mode", string(restored.Mode)).
		Str("color", restored.Color.String()).
		Msg("restored user state")
	return restored
}

// persistStateChanges hooks the state store so every accepted change is
// written back to the settings snapshot and appended to history. Entries
// recorded before NTP sync carry the boot session and uptime offset so
// monitorClockAndHealTimestamps can rewrite them later.
func persistStateChanges(st *state.State, db *database.Database) {
	st.SetOnChangeHook(func(user resources.UserState) {
		now := time.Now()

		if err := db.UserDB.SaveUserState(string(user.Mode), user.Color.String()); err != nil {
			log.Error().Err(err).Msg("failed to save user state")
		}

		var monotonicStart int64
		systemUptime, uptimeErr := uptime.Get()
		if uptimeErr != nil {
			log.Warn().Err(uptimeErr).Msg("failed to get system uptime, using 0")
		} else {
			monotonicStart = int64(systemUptime.Seconds())
		}

		entry := &database.HistoryEntry{
			ID:             uuid.New().String(),
			Time:           now,
			Mode:           string(user.Mode),
			Color:          user.Color.String(),
			ClockReliable:  helpers.IsClockReliable(now),
			BootUUID:       st.BootUUID(),
			MonotonicStart: monotonicStart,
			CreatedAt:      now,
		}
		if err := db.UserDB.AddHistory(entry); err != nil {
			log.Error().Err(err).Msg("failed to add history entry")
		}
	})
}

// displayLocation resolves the configured display timezone, falling back to
// the system's local zone.
func displayLocation(cfg *config.Instance) *time.Location {
	tz := cfg.DisplayTimezone()
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn().Err(err).Str("timezone", tz).Msg("invalid display timezone, using system local")
		return time.Local
	}
	return loc
}

func newWeatherService(cfg *config.Instance, dataDir string) *weather.Service {
	gridX, gridY := cfg.WeatherGrid()
	cache := weather.NewDiskCache(afero.NewOsFs(), filepath.Join(dataDir, weatherCacheFile))
	return weather.NewService(weather.Options{
		Endpoint: cfg.WeatherEndpoint(),
		Office:   cfg.WeatherOffice(),
		GridX:    gridX,
		GridY:    gridY,
		TTL:      cfg.WeatherRefresh(),
	}, weather.WithDiskCache(cache))
}

// newResourceErrorSink builds the runner failure callback: each report is
// broadcast as a resource.error notification and recorded for diagnostics.
// Reports are limited to one per resource per resourceErrorReportEvery.
func newResourceErrorSink(st *state.State, db *database.Database) resources.ErrorSink {
	var mu syncutil.Mutex
	lastReport := make(map[string]time.Time)

	return func(resource string, tickErr error) {
		now := time.Now()

		mu.Lock()
		if last, ok := lastReport[resource]; ok && now.Sub(last) < resourceErrorReportEvery {
			mu.Unlock()
			return
		}
		lastReport[resource] = now
		mu.Unlock()

		notifications.ResourceError(st.Notifications, models.ResourceErrorParams{
			Time:     now,
			Resource: resource,
			Error:    tickErr.Error(),
		})

		entry := &database.ResourceError{
			Time:     now,
			Resource: resource,
			Message:  tickErr.Error(),
		}
		if err := db.UserDB.LogResourceError(entry); err != nil {
			log.Warn().Err(err).Msg("failed to log resource error")
		}
	}
}

// resourceSet tracks the runner goroutines built from one config snapshot.
type resourceSet struct {
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

// stop cancels the set's runners and waits for them to release their
// devices. The LCD runner blanks the display in its Close on the way out.
func (s *resourceSet) stop() {
	s.cancel()
	s.wg.Wait()
}

func runResource(
	ctx context.Context,
	wg *sync.WaitGroup,
	res resources.Resource,
	st *state.State,
	sink resources.ErrorSink,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		runner := resources.NewRunner(res, st.UserState, resources.WithErrorSink(sink))
		if err := runner.Run(ctx); err != nil {
			// OnStart failed; the next config reload or restart is the retry.
			log.Error().Err(err).Str("resource", res.Name()).Msg("resource failed to start")
			sink(res.Name(), err)
		}
	}()
}

// startResources builds the LCD driver and, when enabled, the hourly chime
// from the current config and starts a runner for each. Resources take their
// settings at construction; changing them means building a new set.
func startResources(
	ctx context.Context,
	cfg *config.Instance,
	st *state.State,
	wx *weather.Service,
	player audio.Player,
	sink resources.ErrorSink,
	dataDir string,
) *resourceSet {
	rctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	loc := displayLocation(cfg)

	var forecasts lcd.ForecastSource
	if wx != nil {
		forecasts = wx
	}
	driver := lcd.NewDriver(lcd.Options{
		Forecasts:  forecasts,
		Location:   loc,
		Device:     cfg.DisplayDevice(),
		Baud:       cfg.DisplayBaud(),
		Brightness: cfg.DisplayBrightness(),
		Contrast:   cfg.DisplayContrast(),
		Use24h:     cfg.DisplayUse24h(),
	})
	runResource(rctx, &wg, driver, st, sink)

	if cfg.HourlyChime() {
		startHour, endHour := cfg.ChimeHours()
		soundPath, _ := cfg.ChimeSoundPath(dataDir)
		striker := chime.NewStriker(chime.Options{
			Player:    player,
			Location:  loc,
			SoundPath: soundPath,
			StartHour: startHour,
			EndHour:   endHour,
		})
		runResource(rctx, &wg, striker, st, sink)
	}

	return &resourceSet{cancel: cancel, wg: &wg}
}

// resourceManager owns the hardware resource runners. Each reload signal
// tears the current set down and builds a fresh one from config, so settings
// changes reach the display without a service restart. The returned channel
// closes once the manager has exited and all runners have released their
// devices.
func resourceManager(
	ctx context.Context,
	cfg *config.Instance,
	st *state.State,
	wx *weather.Service,
	player audio.Player,
	sink resources.ErrorSink,
	dataDir string,
	reload <-chan struct{},
) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			set := startResources(ctx, cfg, st, wx, player, sink, dataDir)
			select {
			case <-ctx.Done():
				set.stop()
				return
			case <-reload:
				log.Info().Msg("config changed, rebuilding resources")
				set.stop()
			}
		}
	}()
	return done
}

// startPublishers starts one MQTT publisher per enabled config entry, each
// on its own broker subscription so a slow MQTT broker never backs up the
// notification stream.
func startPublishers(cfg *config.Instance, notifBroker *broker.Broker) []*publishers.MQTTPublisher {
	activePublishers := make([]*publishers.MQTTPublisher, 0)

	for _, mqttCfg := range cfg.GetMQTTPublishers() {
		// Skip if explicitly disabled (nil = enabled by default)
		if mqttCfg.Enabled != nil && !*mqttCfg.Enabled {
			continue
		}

		log.Info().Msgf("starting MQTT publisher: %s (topic prefix: %s)", mqttCfg.Broker, mqttCfg.Topic)

		publisher := publishers.NewMQTTPublisher(mqttCfg.Broker, mqttCfg.Topic, mqttCfg.Filter)
		if mqttCfg.Username != "" {
			publisher.SetAuth(mqttCfg.Username, mqttCfg.Password)
		}
		notifCh, subID := notifBroker.Subscribe(100)
		if err := publisher.Start(notifCh); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", mqttCfg.Broker)
			notifBroker.Unsubscribe(subID)
			continue
		}

		activePublishers = append(activePublishers, publisher)
	}

	if len(activePublishers) > 0 {
		log.Info().Msgf("started %d MQTT publisher(s)", len(activePublishers))
	}

	return activePublishers
}

// monitorClockAndHealTimestamps watches for the system clock becoming
// reliable. Boards without an RTC boot showing 1970 epoch time; once NTP
// syncs, the true boot time is reconstructed from monotonic uptime and
// history rows from this boot session are rewritten against it.
func monitorClockAndHealTimestamps(ctx context.Context, db *database.Database, bootUUID string) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	healed := false
	wasReliable := helpers.IsClockReliable(time.Now())

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			isReliable := helpers.IsClockReliable(now)

			// Detect transition from unreliable to reliable (NTP sync event)
			if !wasReliable && isReliable && !healed {
				log.Info().Msg("clock became reliable (NTP sync detected), healing timestamps")

				systemUptime, err := uptime.Get()
				if err != nil {
					log.Error().Err(err).Msg("failed to get system uptime for timestamp healing")
					wasReliable = isReliable
					continue
				}

				trueBootTime := now.Add(-systemUptime)
				log.Info().
					Time("true_boot_time", trueBootTime).
					Dur("uptime", systemUptime).
					Msg("calculated true boot time")

				rowsHealed, healErr := db.UserDB.HealTimestamps(bootUUID, trueBootTime)
				if healErr != nil {
					log.Error().Err(healErr).Msg("failed to heal timestamps")
				} else if rowsHealed > 0 {
					log.Info().Int64("rows", rowsHealed).Msg("successfully healed timestamps")
				}

				healed = true
			}

			wasReliable = isReliable

		case <-ctx.Done():
			return
		}
	}
}

// Start brings the whole service up: user database, shared state, hardware
// resources, weather, API server, MQTT publishers and mDNS advertisement.
// The returned stop function shuts everything down in reverse order and
// blocks until cleanup is complete.
func Start(cfg *config.Instance, dataDir string) (stop func() error, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)
	if systemUptime, uptimeErr := uptime.Get(); uptimeErr == nil {
		log.Info().Dur("system_uptime", systemUptime).Msg("service starting")
	}

	// Boot UUID identifies this session's history rows for timestamp healing
	bootUUID := uuid.New().String()
	log.Info().Msgf("boot session UUID: %s", bootUUID)

	err = setupEnvironment(dataDir)
	if err != nil {
		log.Error().Err(err).Msg("error setting up environment")
		return nil, err
	}

	log.Info().Msg("opening database")
	db, err := makeDatabase(context.Background(), dataDir)
	if err != nil {
		log.Error().Err(err).Msg("error opening database")
		return nil, err
	}

	cleanupDatabaseOnStartup(db)

	// global state, notification queue (source)
	st, ns := state.NewState(bootUUID, restoreUserState(db))
	persistStateChanges(st, db)

	// Broadcast notifications to all consumers
	notifBroker := broker.NewBroker(st.GetContext(), ns)
	notifBroker.Start()

	var wx *weather.Service
	if cfg.WeatherEnabled() {
		log.Info().Msg("starting weather service")
		wx = newWeatherService(cfg, dataDir)
	}

	log.Info().Msg("starting resource runners")
	player := audio.NewMalgoPlayer()
	sink := newResourceErrorSink(st, db)
	reloadCh := make(chan struct{}, 1)
	resourcesDone := resourceManager(st.GetContext(), cfg, st, wx, player, sink, dataDir, reloadCh)

	closeWatcher, watchErr := cfg.Watch(func() {
		if cfg.DebugLogging() {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
		select {
		case reloadCh <- struct{}{}:
		default:
		}
	})
	if watchErr != nil {
		log.Warn().Err(watchErr).Msg("config watcher failed to start, settings changes need a restart")
	}

	log.Info().Msg("starting mDNS discovery service")
	discoveryService := discovery.New(cfg)
	if discoveryErr := discoveryService.Start(); discoveryErr != nil {
		log.Error().Err(discoveryErr).Msg("mDNS discovery failed to start (continuing without discovery)")
	}

	log.Info().Msg("starting API service")
	apiNotifications, _ := notifBroker.Subscribe(100)
	var forecastSource requests.ForecastSource
	if wx != nil {
		forecastSource = wx
	}
	err = api.Start(cfg, st, db, forecastSource, apiNotifications)
	if err != nil {
		log.Error().Err(err).Msg("error starting API service")
		return nil, err
	}

	log.Info().Msg("starting publishers")
	activePublishers := startPublishers(cfg, notifBroker)

	// Clock reliability monitor for timestamp healing (RTC-less boards)
	log.Info().Msg("starting clock reliability monitor")
	go monitorClockAndHealTimestamps(st.GetContext(), db, bootUUID)

	notifications.Running(st.Notifications)
	log.Info().Msg("service fully initialized")

	doneCh := make(chan struct{})
	go func() {
		<-st.GetContext().Done()
		log.Info().Msg("service context cancelled, running cleanup")

		if closeWatcher != nil {
			if watcherErr := closeWatcher(); watcherErr != nil {
				log.Warn().Err(watcherErr).Msg("error closing config watcher")
			}
		}
		for _, publisher := range activePublishers {
			publisher.Stop()
		}
		discoveryService.Stop()
		// Runners blank the LCD via Close on the way out
		<-resourcesDone
		notifBroker.Stop()
		if closeErr := db.UserDB.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing user database")
		}

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		st.StopService()
		<-doneCh
		return nil
	}
	return stop, nil
}
