//go:build linux

/*
Glowclock Core
Copyright (c) 2026 The Glowclock Project Contributors.

This file is part of Glowclock Core.

Glowclock Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Glowclock Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/GlowclockProject/glowclock-core/internal/telemetry"
	"github.com/GlowclockProject/glowclock-core/pkg/api/client"
	"github.com/GlowclockProject/glowclock-core/pkg/cli"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/configui"
	"github.com/GlowclockProject/glowclock-core/pkg/service"
	"github.com/GlowclockProject/glowclock-core/pkg/service/daemon"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	defer telemetry.Close()
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n%s\n", r, stack)
			log.Error().
				Interface("panic", r).
				Bytes("stack", stack).
				Msg("recovered from panic")
			telemetry.Flush()
			os.Exit(1)
		}
	}()

	flags := cli.SetupFlags()
	flags.Pre()

	// Running the service in the foreground is the default; every flag
	// below routes elsewhere.
	foreground := *flags.Service == "" &&
		*flags.Set == "" &&
		*flags.API == "" &&
		!*flags.Config &&
		!*flags.Reload

	var logWriters []io.Writer
	if foreground {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
		} else {
			// journald and friends get the raw JSON stream
			logWriters = []io.Writer{os.Stderr}
		}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)

	flags.Post(cfg)

	if *flags.Service != "" {
		svc, err := daemon.NewService(func() (func() error, error) {
			return service.Start(cfg, config.DefaultDataDir())
		})
		if err != nil {
			return fmt.Errorf("error creating service manager: %w", err)
		}
		return svc.ServiceHandler(flags.Service)
	}

	if *flags.Config {
		if !client.IsServiceRunning(cfg) {
			cleanup, err := daemon.SpawnDaemon(cfg)
			if err != nil {
				return fmt.Errorf("error starting temporary service: %w", err)
			}
			defer cleanup()
		}
		if err := configui.ConfigUI(cfg, client.NewLocalAPIClient(cfg)); err != nil {
			return fmt.Errorf("error running settings ui: %w", err)
		}
		return nil
	}

	sigs := make(chan os.Signal, 1)
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	stop, err := service.Start(cfg, config.DefaultDataDir())
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}

	<-sigs
	err = stop()
	if err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return fmt.Errorf("error stopping service: %w", err)
	}

	return nil
}
