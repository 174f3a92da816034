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

// Package lcd drives a 20x4 RGB character display over a USB serial
// backpack. Full redraws are visibly slow at serial speeds, so the driver
// tracks the physical screen content in a buffer and transmits only the
// cell runs that changed each tick, each prefixed by a cursor move.
package lcd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/helpers"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/GlowclockProject/glowclock-core/pkg/weather"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// PortOpener opens the serial channel. Injected so tests can drive the
// driver against a captured fake port.
type PortOpener func(path string, mode *serial.Mode) (serial.Port, error)

func defaultPortOpener(path string, mode *serial.Mode) (serial.Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

// ForecastSource supplies the latest cached forecast for weather mode. It is
// read on the tick path and must return immediately, never blocking on the
// network.
type ForecastSource interface {
	Current() (weather.Forecast, bool)
}

// Options carry the device and rendering settings the bootstrap layer
// resolved from config. The driver treats them as opaque constructor
// parameters.
type Options struct {
	Forecasts  ForecastSource
	Location   *time.Location
	Device     string
	Baud       int
	TickEvery  time.Duration
	Brightness byte
	Contrast   byte
	Use24h     bool
}

// Driver owns the serial channel, the screen buffer and the last-applied
// backlight color. It is driven by a single resource runner and is never
// called concurrently with itself, so it carries no locks.
type Driver struct {
	port      serial.Port
	opener    PortOpener
	clock     clockwork.Clock
	buf       *Buffer
	lastColor *resources.Color
	opts      Options
	dark      bool
}

type DriverOption func(*Driver)

// WithPortOpener replaces the serial port factory, for tests.
func WithPortOpener(opener PortOpener) DriverOption {
	return func(d *Driver) {
		d.opener = opener
	}
}

// WithDriverClock replaces the wall clock used to render frames, for tests.
func WithDriverClock(clock clockwork.Clock) DriverOption {
	return func(d *Driver) {
		d.clock = clock
	}
}

func NewDriver(opts Options, driverOpts ...DriverOption) *Driver {
	if opts.Baud == 0 {
		opts.Baud = 9600
	}
	if opts.TickEvery == 0 {
		opts.TickEvery = time.Second
	}
	driver := &Driver{
		opts:   opts,
		opener: defaultPortOpener,
		clock:  clockwork.NewRealClock(),
		buf:    NewBuffer(),
	}
	for _, opt := range driverOpts {
		opt(driver)
	}
	return driver
}

// Name returns the resource identifier used in logs.
func (*Driver) Name() string {
	return "lcd"
}

// Interval returns the fixed tick period.
func (d *Driver) Interval() time.Duration {
	return d.opts.TickEvery
}

// OnStart opens the serial channel and runs the one-time device setup:
// clear, backlight on, geometry, contrast, brightness, the five custom tile
// uploads into bank 0 and the bank activation. The whole sequence must
// complete before the first tick; any failure is fatal for this resource.
func (d *Driver) OnStart() error {
	if err := d.openPort(); err != nil {
		return err
	}
	if err := d.initDevice(); err != nil {
		if closeErr := d.closePort(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close lcd port after init error")
		}
		return err
	}
	log.Info().
		Str("device", d.opts.Device).
		Int("baud", d.opts.Baud).
		Msg("lcd display initialized")
	return nil
}

// OnTick renders one update for the given user state. A serial failure
// aborts the tick early and is reported to the runner; the next scheduled
// tick is the retry. If the device disconnected, the port is reopened and
// reinitialized before rendering.
func (d *Driver) OnTick(state resources.UserState) error {
	if d.port == nil {
		if err := d.openPort(); err != nil {
			return err
		}
		if err := d.initDevice(); err != nil {
			// Drop the half-initialized port so the next tick restarts the
			// whole setup sequence instead of drawing with missing tiles.
			if closeErr := d.closePort(); closeErr != nil {
				log.Debug().Err(closeErr).Msg("error closing lcd port after reinit failure")
			}
			return err
		}
		log.Info().Str("device", d.opts.Device).Msg("lcd display reconnected")
	}
	if state.Mode == resources.ModeOff {
		return d.tickOff()
	}
	return d.tickShow(state)
}

// Close blanks and releases the display. Errors are logged, not propagated:
// shutdown must never hang on a dead device.
func (d *Driver) Close() error {
	if d.port == nil {
		return nil
	}
	if err := d.send(Clear()); err != nil {
		log.Warn().Err(err).Msg("failed to clear lcd on shutdown")
	}
	if err := d.send(BacklightOff()); err != nil {
		log.Warn().Err(err).Msg("failed to blank lcd backlight on shutdown")
	}
	return d.closePort()
}

func (d *Driver) openPort() error {
	mode := &serial.Mode{
		BaudRate: d.opts.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := d.opener(d.opts.Device, mode)
	if err != nil {
		if candidates, listErr := helpers.GetSerialDeviceList(); listErr == nil && len(candidates) > 0 {
			log.Debug().
				Strs("present", candidates).
				Msg("serial devices found on system")
		}
		return fmt.Errorf("opening %s: %w", d.opts.Device, err)
	}
	d.port = port
	if topology := helpers.USBTopologyPath(d.opts.Device); topology != "" {
		log.Debug().
			Str("device", d.opts.Device).
			Str("usb_path", topology).
			Msg("lcd serial port opened")
	}
	return nil
}

func (d *Driver) closePort() error {
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	if err != nil {
		return fmt.Errorf("closing serial port: %w", err)
	}
	return nil
}

func (d *Driver) initDevice() error {
	setup := []Command{
		Clear(),
		BacklightOn(),
		SetSize(Width, Height),
		SetContrast(d.opts.Contrast),
		SetBrightness(d.opts.Brightness),
	}
	for slot, bitmap := range tileBitmaps {
		setup = append(setup, SaveCustomCharacter(0, byte(slot), bitmap))
	}
	setup = append(setup, LoadCharacterBank(0))
	for _, cmd := range setup {
		if err := d.send(cmd); err != nil {
			return err
		}
	}
	// Device memory is now in a known-cleared state; track it.
	d.buf.Reset()
	d.lastColor = nil
	d.dark = false
	return nil
}

// tickOff blanks the device once per off period. Clearing the device does
// not implicitly clear the tracked buffer; it is reset here so the first
// tick after leaving off mode repaints every cell.
func (d *Driver) tickOff() error {
	if d.dark {
		return nil
	}
	if err := d.send(BacklightOff()); err != nil {
		return err
	}
	if err := d.send(Clear()); err != nil {
		return err
	}
	d.buf.Reset()
	d.dark = true
	return nil
}

func (d *Driver) tickShow(state resources.UserState) error {
	if d.dark {
		if err := d.send(BacklightOn()); err != nil {
			return err
		}
		d.dark = false
	}

	if d.lastColor == nil || *d.lastColor != state.Color {
		rgb := state.Color.Bytes()
		if err := d.send(SetColor(rgb[0], rgb[1], rgb[2])); err != nil {
			return err
		}
		applied := state.Color
		d.lastColor = &applied
	}

	now := d.clock.Now()
	if d.opts.Location != nil {
		now = now.In(d.opts.Location)
	}

	var frame Frame
	var err error
	if state.Mode == resources.ModeWeather {
		var forecast weather.Forecast
		var ok bool
		if d.opts.Forecasts != nil {
			forecast, ok = d.opts.Forecasts.Current()
		}
		frame, err = weatherFrame(now, forecast, ok)
	} else {
		frame, err = clockFrame(now, d.opts.Use24h)
	}
	if err != nil {
		return err
	}

	for _, group := range d.buf.DiffAndApply(frame) {
		if err := d.writeGroup(group); err != nil {
			// The buffer already tracks the full new frame, so the device
			// may lag it until the affected cells next change.
			log.Warn().
				Int("row", group.Row).
				Int("col", group.Col).
				Msg("lcd write failed mid-frame, display may be stale")
			return err
		}
	}
	return nil
}

// writeGroup transmits one changed run: a cursor move to the group origin
// followed by the raw cell bytes. The device cursor is 1-indexed while the
// buffer is 0-indexed, so both coordinates are shifted by one.
func (d *Driver) writeGroup(group DiffGroup) error {
	if err := d.send(SetCursor(byte(group.Col+1), byte(group.Row+1))); err != nil {
		return err
	}
	label := fmt.Sprintf("text row %d col %d len %d", group.Row, group.Col, len(group.Data))
	return d.write(label, group.Data)
}

func (d *Driver) send(cmd Command) error {
	return d.write(cmd.Name(), cmd.Encode())
}

func (d *Driver) write(label string, data []byte) error {
	if d.port == nil {
		return errors.New("port not open")
	}
	if _, err := d.port.Write(data); err != nil {
		if isDisconnectionError(err) {
			log.Info().
				Str("device", d.opts.Device).
				Err(err).
				Msg("lcd device disconnected - write error")
			if closeErr := d.closePort(); closeErr != nil {
				log.Debug().Err(closeErr).Msg("error closing disconnected lcd port")
			}
		}
		return fmt.Errorf("sending %s: %w", label, err)
	}
	return nil
}

// isDisconnectionError checks if an error indicates device disconnection
// rather than a configuration or permission problem.
func isDisconnectionError(err error) bool {
	if err == nil {
		return false
	}

	var portErr serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
			return true
		case serial.PortBusy, serial.PermissionDenied, serial.InvalidSpeed,
			serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits,
			serial.InvalidTimeoutValue, serial.ErrorEnumeratingPorts, serial.FunctionNotImplemented:
			return false
		default:
			return false
		}
	}

	// Fallback to string matching for OS-level errors that aren't wrapped.
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "device not configured") ||
		strings.Contains(errStr, "input/output error") ||
		strings.Contains(errStr, "no such device") ||
		strings.Contains(errStr, "broken pipe")
}
