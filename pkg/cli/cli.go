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

// Package cli implements the command line flag surface shared by the
// entrypoints: one-shot API calls against a running service plus setup of
// logging, config and telemetry for the daemon itself.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/GlowclockProject/glowclock-core/internal/telemetry"
	"github.com/GlowclockProject/glowclock-core/pkg/api/client"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/helpers"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Set     *string
	API     *string
	Service *string
	Version *bool
	Config  *bool
	Reload  *bool
}

// SetupFlags defines the common CLI flags. Add any custom flags before
// calling Pre.
func SetupFlags() *Flags {
	return &Flags{
		Set: flag.String(
			"set",
			"",
			"set display state, e.g. \"mode=clock,color=#00ff00\"",
		),
		API: flag.String(
			"api",
			"",
			"send method and params to API and print response",
		),
		Service: flag.String(
			"service",
			"",
			"manage the service daemon (start|stop|restart|status)",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Config: flag.Bool(
			"config",
			false,
			"start the text ui to manage Glowclock settings",
		),
		Reload: flag.Bool(
			"reload",
			false,
			"reload settings from disk",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Glowclock v%s (%s/%s)\n", config.AppVersion, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}
}

// parseSetArgs parses "key=value,key=value" assignments into state params.
func parseSetArgs(value string) (models.SetStateParams, error) {
	var params models.SetStateParams

	assignments := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			return params, fmt.Errorf("invalid assignment %q, expected key=value", pair)
		}
		assignments[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &params,
		TagName:     "json",
		ErrorUnused: true, // catches typos like "colour"
	})
	if err != nil {
		return params, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(assignments); err != nil {
		return params, fmt.Errorf("failed to decode assignments: %w", err)
	}

	return params, nil
}

// setFlag sends the parsed -set assignments to the running service as a
// state.set request and prints the effective state.
func setFlag(cfg *config.Instance, value string) {
	params, err := parseSetArgs(value)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := json.Marshal(&params)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error encoding params: %v\n", err)
		os.Exit(1)
	}

	resp, err := client.LocalClient(context.Background(), cfg, models.MethodStateSet, string(data))
	if err != nil {
		log.Error().Err(err).Msg("error setting state")
		_, _ = fmt.Fprintf(os.Stderr, "Error setting state: %v\n", err)
		os.Exit(1)
	}

	_, _ = fmt.Println(resp)
	os.Exit(0)
}

// Post actions all remaining common flags that require the environment to be
// set up. Logging is allowed.
func (f *Flags) Post(cfg *config.Instance) {
	switch {
	case isFlagPassed("set"):
		if *f.Set == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: set flag requires a value\n")
			os.Exit(1)
		}
		setFlag(cfg, *f.Set)
	case isFlagPassed("api"):
		if *f.API == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: api flag requires a value\n")
			os.Exit(1)
		}

		ps := strings.SplitN(*f.API, ":", 2)
		method := ps[0]
		params := ""
		if len(ps) > 1 {
			params = ps[1]
		}

		resp, err := client.LocalClient(context.Background(), cfg, method, params)
		if err != nil {
			log.Error().Err(err).Msg("error calling API")
			_, _ = fmt.Fprintf(os.Stderr, "Error calling API: %v\n", err)
			os.Exit(1)
		}

		_, _ = fmt.Println(resp)
		os.Exit(0)
	case *f.Reload:
		_, err := client.LocalClient(context.Background(), cfg, models.MethodSettingsReload, "")
		if err != nil {
			log.Error().Err(err).Msg("error reloading settings")
			_, _ = fmt.Fprintf(os.Stderr, "Error reloading: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
}

// Setup initializes logging, the user config and telemetry. Returns the
// loaded config instance.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	err := helpers.InitLogging(config.DefaultDataDir(), writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(config.DefaultConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(
		cfg.TelemetryEnabled(),
		cfg.DeviceID(),
		config.AppVersion,
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
