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

// Package chime strikes an audible tone at the top of each hour. It runs as
// a second resource under the same runner shell that drives the LCD.
package chime

import (
	"fmt"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/audio"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	strikeFreq     = 880
	strikeDuration = 500 * time.Millisecond

	// lateStrikeWindow bounds how far past the top of the hour a strike may
	// still fire. Ticks missed beyond it (suspend, large clock jump) skip
	// that hour instead of chiming minutes late.
	lateStrikeWindow = time.Minute
)

// Options carry the chime settings the bootstrap layer resolved from config.
type Options struct {
	Player    audio.Player
	Location  *time.Location
	SoundPath string // optional custom sound file; empty uses the synthesized tone
	StartHour int    // inclusive hour bounds; outside them the chime is silent
	EndHour   int
	TickEvery time.Duration
}

// Striker is the hourly chime resource. It is driven by a single resource
// runner and is never called concurrently with itself, so it carries no
// locks.
type Striker struct {
	clock    clockwork.Clock
	lastHour time.Time
	opts     Options
	primed   bool
}

type StrikerOption func(*Striker)

// WithStrikerClock replaces the wall clock, for tests.
func WithStrikerClock(clock clockwork.Clock) StrikerOption {
	return func(s *Striker) {
		s.clock = clock
	}
}

func NewStriker(opts Options, strikerOpts ...StrikerOption) *Striker {
	if opts.TickEvery == 0 {
		opts.TickEvery = time.Second
	}
	striker := &Striker{
		opts:  opts,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range strikerOpts {
		opt(striker)
	}
	return striker
}

// Name returns the resource identifier used in logs.
func (*Striker) Name() string {
	return "chime"
}

// Interval returns the fixed tick period.
func (s *Striker) Interval() time.Duration {
	return s.opts.TickEvery
}

// OnStart has no device to initialize; the player owns the audio hardware.
func (*Striker) OnStart() error {
	return nil
}

// OnTick strikes once when the local hour rolls over, unless the display is
// off, the hour falls outside the configured bounds, or the rollover was
// noticed too late. The hour is consumed either way: a strike suppressed at
// 10:00 does not fire when the mode flips back on at 10:05.
func (s *Striker) OnTick(state resources.UserState) error {
	now := s.clock.Now()
	if s.opts.Location != nil {
		now = now.In(s.opts.Location)
	}
	// Local wall-clock hour, not time.Truncate: zones with non-whole-hour
	// offsets put Truncate's boundaries mid-hour.
	hour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())

	if !s.primed {
		// Never strike for the hour the service started in.
		s.lastHour = hour
		s.primed = true
		return nil
	}
	if hour.Equal(s.lastHour) {
		return nil
	}
	s.lastHour = hour

	if now.Sub(hour) >= lateStrikeWindow {
		log.Debug().
			Time("hour", hour).
			Time("now", now).
			Msg("hour rollover noticed late, skipping chime")
		return nil
	}
	if state.Mode == resources.ModeOff {
		return nil
	}
	if !hourInRange(now.Hour(), s.opts.StartHour, s.opts.EndHour) {
		return nil
	}

	return s.strike(now.Hour())
}

// Close has nothing to release; playback is fire-and-forget.
func (*Striker) Close() error {
	return nil
}

func (s *Striker) strike(hour int) error {
	if s.opts.SoundPath != "" {
		if err := s.opts.Player.PlayFile(s.opts.SoundPath); err != nil {
			return fmt.Errorf("playing chime sound: %w", err)
		}
		log.Debug().Int("hour", hour).Str("sound", s.opts.SoundPath).Msg("hourly chime struck")
		return nil
	}

	if err := s.opts.Player.PlayTone(strikeFreq, strikeDuration); err != nil {
		return fmt.Errorf("playing chime tone: %w", err)
	}
	log.Debug().Int("hour", hour).Msg("hourly chime struck")
	return nil
}

// hourInRange reports whether h falls in the inclusive [start, end] range.
// A start after end wraps past midnight (e.g. 22..6).
func hourInRange(h, start, end int) bool {
	if start <= end {
		return h >= start && h <= end
	}
	return h >= start || h <= end
}
