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

// Package resources defines the periodic hardware resource abstraction and
// the runner that drives it. Each physical peripheral (LCD, chime speaker)
// implements Resource; one runner owns one resource and is its only caller,
// so resource implementations never need internal locking against their own
// tick path.
package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Resource interface {
	// Name returns a short identifier for the resource, used in logs.
	Name() string
	// OnStart runs one-time device initialization. It must complete before
	// the first tick; an error here is fatal for the resource's loop.
	OnStart() error
	// OnTick runs one scheduled update with a snapshot of the user state.
	// Errors are logged and isolated; the next tick is the retry.
	OnTick(state UserState) error
	// Interval returns the fixed delay between ticks.
	Interval() time.Duration
	// Close releases the device, best-effort. Called exactly once after the
	// loop exits.
	Close() error
}

// StateFunc returns a fresh snapshot of the shared user state. It is called
// once per tick, before the resource's tick body, and must not block on I/O.
type StateFunc func() UserState

// ErrorSink receives tick failures for out-of-band reporting (diagnostics
// log, API notifications). It runs on the runner goroutine and must return
// promptly.
type ErrorSink func(resource string, err error)

// Runner drives a single Resource on its fixed interval.
type Runner struct {
	clock   clockwork.Clock
	res     Resource
	state   StateFunc
	onError ErrorSink
}

type RunnerOption func(*Runner)

// WithClock replaces the wall clock, for tests.
func WithClock(clock clockwork.Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithErrorSink registers a callback for tick failures.
func WithErrorSink(sink ErrorSink) RunnerOption {
	return func(r *Runner) {
		r.onError = sink
	}
}

func NewRunner(res Resource, state StateFunc, opts ...RunnerOption) *Runner {
	runner := &Runner{
		clock: clockwork.NewRealClock(),
		res:   res,
		state: state,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run initializes the resource and ticks it until ctx is canceled. A tick
// body is synchronous: it always completes before the next tick fires, and
// the interval wait absorbs whatever time the tick left over. OnStart
// failure is returned immediately without ticking. The resource is closed on
// every exit path.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.res.OnStart(); err != nil {
		r.close()
		return fmt.Errorf("starting resource %s: %w", r.res.Name(), err)
	}
	log.Info().
		Str("resource", r.res.Name()).
		Dur("interval", r.res.Interval()).
		Msg("resource started")

	defer r.close()
	ticker := r.clock.NewTicker(r.res.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			snapshot := r.state()
			if err := r.res.OnTick(snapshot); err != nil {
				log.Error().
					Err(err).
					Str("resource", r.res.Name()).
					Str("mode", string(snapshot.Mode)).
					Msg("resource tick failed")
				if r.onError != nil {
					r.onError(r.res.Name(), err)
				}
			}
		}
	}
}

func (r *Runner) close() {
	if err := r.res.Close(); err != nil {
		log.Warn().
			Err(err).
			Str("resource", r.res.Name()).
			Msg("error closing resource")
	}
}
