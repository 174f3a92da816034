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

// Package configui implements the interactive settings editor. It talks to a
// running service over the local API for everything the settings methods
// cover and falls back to the config file for the fields they do not, which
// the service then picks up through its config watcher.
package configui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/client"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

// tuiRequestTimeout bounds API calls made from the form. Calls are to
// localhost so this is much shorter than the general API timeout.
const tuiRequestTimeout = 5 * time.Second

const (
	pageForm  = "settings"
	pageModal = "modal"
)

// defaultBaud matches the LCD driver's fallback rate when the config leaves
// baud unset.
const defaultBaud = 9600

var baudRates = []int{2400, 4800, 9600, 19200, 38400, 57600, 115200}

var modeOptions = []string{
	string(resources.ModeOff),
	string(resources.ModeClock),
	string(resources.ModeWeather),
}

func tuiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), tuiRequestTimeout)
}

func setTheme(theme *tview.Theme) {
	theme.BorderColor = tcell.ColorLightYellow
	theme.PrimaryTextColor = tcell.ColorWhite
	theme.PrimitiveBackgroundColor = tcell.ColorDarkBlue
	theme.ContrastBackgroundColor = tcell.ColorBlue
	theme.InverseTextColor = tcell.ColorDarkBlue
}

// snapshot holds the values the form was loaded with, so saving can send
// only the fields the user actually changed.
type snapshot struct {
	settings models.SettingsResponse
	state    models.StateResponse
}

// formState mirrors the editable widgets. Numeric inputs stay as text until
// validation so partial edits never panic the form.
type formState struct {
	devicePath string
	color      string
	brightness string
	contrast   string
	mode       string
	baud       int
	use24h     bool
	chime      bool
	weather    bool
}

// levels holds the validated numeric form fields.
type levels struct {
	brightness int
	contrast   int
}

// loadSnapshot fetches current settings and state from the API. When the
// service is unreachable the settings fall back to the local config file and
// the state to the startup defaults, so the form still opens.
func loadSnapshot(ctx context.Context, cfg *config.Instance, svc SettingsService) snapshot {
	var snap snapshot

	settings, err := svc.GetSettings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error fetching settings, falling back to config file")
		snap.settings = models.SettingsResponse{
			DevicePath:   cfg.DisplayDevice(),
			Brightness:   int(cfg.DisplayBrightness()),
			Contrast:     int(cfg.DisplayContrast()),
			Use24h:       cfg.DisplayUse24h(),
			HourlyChime:  cfg.HourlyChime(),
			DebugLogging: cfg.DebugLogging(),
			Telemetry:    cfg.TelemetryEnabled(),
		}
	} else {
		snap.settings = *settings
	}

	state, err := svc.GetState(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error fetching display state")
		snap.state = models.StateResponse{
			Mode:  string(resources.ModeClock),
			Color: resources.Color{R: 0xFF, G: 0xFF, B: 0xFF}.String(),
		}
	} else {
		snap.state = *state
	}

	return snap
}

func newFormState(cfg *config.Instance, snap snapshot) formState {
	return formState{
		devicePath: snap.settings.DevicePath,
		color:      snap.state.Color,
		brightness: strconv.Itoa(snap.settings.Brightness),
		contrast:   strconv.Itoa(snap.settings.Contrast),
		mode:       snap.state.Mode,
		baud:       displayBaud(cfg),
		use24h:     snap.settings.Use24h,
		chime:      snap.settings.HourlyChime,
		weather:    cfg.WeatherEnabled(),
	}
}

func displayBaud(cfg *config.Instance) int {
	if baud := cfg.DisplayBaud(); baud != 0 {
		return baud
	}
	return defaultBaud
}

func baudOptions() []string {
	labels := make([]string, len(baudRates))
	for i, rate := range baudRates {
		labels[i] = strconv.Itoa(rate)
	}
	return labels
}

// baudIndex returns the dropdown index for a rate. Unknown rates snap to the
// driver default.
func baudIndex(baud int) int {
	fallback := 0
	for i, rate := range baudRates {
		if rate == baud {
			return i
		}
		if rate == defaultBaud {
			fallback = i
		}
	}
	return fallback
}

func modeIndex(mode string) int {
	for i, option := range modeOptions {
		if option == mode {
			return i
		}
	}
	return 1 // clock
}

// parseLevel validates a brightness or contrast input as a device byte.
func parseLevel(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%s must be between 0 and 255", name)
	}
	return n, nil
}

func parseLevels(fs formState) (levels, error) {
	brightness, err := parseLevel("brightness", fs.brightness)
	if err != nil {
		return levels{}, err
	}
	contrast, err := parseLevel("contrast", fs.contrast)
	if err != nil {
		return levels{}, err
	}
	return levels{brightness: brightness, contrast: contrast}, nil
}

// settingsDiff builds partial update params from the fields that differ from
// the loaded snapshot.
func settingsDiff(before models.SettingsResponse, fs formState, lv levels) (models.UpdateSettingsParams, bool) {
	var params models.UpdateSettingsParams
	changed := false
	if fs.devicePath != before.DevicePath {
		params.DevicePath = &fs.devicePath
		changed = true
	}
	if lv.brightness != before.Brightness {
		params.Brightness = &lv.brightness
		changed = true
	}
	if lv.contrast != before.Contrast {
		params.Contrast = &lv.contrast
		changed = true
	}
	if fs.use24h != before.Use24h {
		params.Use24h = &fs.use24h
		changed = true
	}
	if fs.chime != before.HourlyChime {
		params.HourlyChime = &fs.chime
		changed = true
	}
	return params, changed
}

func stateDiff(before models.StateResponse, fs formState) (models.SetStateParams, bool) {
	var params models.SetStateParams
	changed := false
	if fs.mode != before.Mode {
		params.Mode = &fs.mode
		changed = true
	}
	if !strings.EqualFold(fs.color, before.Color) {
		params.Color = &fs.color
		changed = true
	}
	return params, changed
}

// saveFileSettings persists the fields the settings API does not cover. The
// running service rewrote the config file during UpdateSettings, so reload
// before layering the file-only fields on top.
func saveFileSettings(cfg *config.Instance, fs formState) error {
	if fs.baud == displayBaud(cfg) && fs.weather == cfg.WeatherEnabled() {
		return nil
	}
	if err := cfg.Load(); err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	cfg.SetDisplayBaud(fs.baud)
	cfg.SetWeatherEnabled(fs.weather)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// saveAll pushes the form out in order: settings through the API so the
// service saves its own config, then the live display state, then the
// file-only fields last so the local write cannot clobber the service's.
func saveAll(ctx context.Context, cfg *config.Instance, svc SettingsService, before snapshot, fs formState) error {
	if strings.TrimSpace(fs.devicePath) == "" {
		return errors.New("device path cannot be empty")
	}
	lv, err := parseLevels(fs)
	if err != nil {
		return err
	}
	if _, err := resources.ParseColor(fs.color); err != nil {
		return fmt.Errorf("invalid color: %w", err)
	}

	if params, changed := settingsDiff(before.settings, fs, lv); changed {
		if err := svc.UpdateSettings(ctx, params); err != nil {
			return err
		}
	}
	if params, changed := stateDiff(before.state, fs); changed {
		if err := svc.SetState(ctx, params); err != nil {
			return err
		}
	}
	return saveFileSettings(cfg, fs)
}

// snapshotFromForm rebases the loaded snapshot after a successful save so
// the next save diffs against what is now on the device.
func snapshotFromForm(fs formState, lv levels) snapshot {
	return snapshot{
		settings: models.SettingsResponse{
			DevicePath:  fs.devicePath,
			Brightness:  lv.brightness,
			Contrast:    lv.contrast,
			Use24h:      fs.use24h,
			HourlyChime: fs.chime,
		},
		state: models.StateResponse{Mode: fs.mode, Color: fs.color},
	}
}

func showModal(pages *tview.Pages, message string) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(_ int, _ string) {
			pages.RemovePage(pageModal)
		})
	pages.AddPage(pageModal, modal, true, true)
}

func buildSettingsForm(
	cfg *config.Instance,
	svc SettingsService,
	snap snapshot,
	pages *tview.Pages,
	app *tview.Application,
) *tview.Form {
	fs := newFormState(cfg, snap)
	before := snap

	form := tview.NewForm()
	form.AddInputField("Device path", fs.devicePath, 30, nil, func(text string) {
		fs.devicePath = text
	})
	form.AddDropDown("Baud rate", baudOptions(), baudIndex(fs.baud), func(_ string, index int) {
		fs.baud = baudRates[index]
	})
	form.AddDropDown("Mode", modeOptions, modeIndex(fs.mode), func(option string, _ int) {
		fs.mode = option
	})
	form.AddInputField("Color", fs.color, 12, nil, func(text string) {
		fs.color = text
	})
	form.AddInputField("Brightness", fs.brightness, 5, tview.InputFieldInteger, func(text string) {
		fs.brightness = text
	})
	form.AddInputField("Contrast", fs.contrast, 5, tview.InputFieldInteger, func(text string) {
		fs.contrast = text
	})
	form.AddCheckbox("24-hour clock", fs.use24h, func(checked bool) {
		fs.use24h = checked
	})
	form.AddCheckbox("Hourly chime", fs.chime, func(checked bool) {
		fs.chime = checked
	})
	form.AddCheckbox("Weather display", fs.weather, func(checked bool) {
		fs.weather = checked
	})

	form.AddButton("Save", func() {
		ctx, cancel := tuiContext()
		defer cancel()
		if err := saveAll(ctx, cfg, svc, before, fs); err != nil {
			log.Error().Err(err).Msg("error saving settings")
			showModal(pages, "Save failed: "+err.Error())
			return
		}
		lv, _ := parseLevels(fs)
		before = snapshotFromForm(fs, lv)
		showModal(pages, "Settings saved")
	})
	form.AddButton("Quit", func() {
		app.Stop()
	})

	form.SetBorder(true)
	form.SetTitle(" Glowclock settings ")
	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})
	return form
}

// ConfigUI runs the interactive settings editor against a running service.
func ConfigUI(cfg *config.Instance, apiClient client.APIClient) error {
	app := tview.NewApplication()
	setTheme(&tview.Styles)

	pages := tview.NewPages()
	svc := NewSettingsService(apiClient)

	ctx, cancel := tuiContext()
	snap := loadSnapshot(ctx, cfg, svc)
	cancel()

	form := buildSettingsForm(cfg, svc, snap, pages, app)
	pages.AddAndSwitchToPage(pageForm, form, true)

	if err := app.SetRoot(pages, true).EnableMouse(true).Run(); err != nil {
		return fmt.Errorf("running settings ui: %w", err)
	}
	return nil
}
