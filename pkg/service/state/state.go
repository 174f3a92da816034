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

package state

import (
	"context"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/notifications"
	"github.com/GlowclockProject/glowclock-core/pkg/helpers/syncutil"
	"github.com/GlowclockProject/glowclock-core/pkg/resources"
)

// State holds the runtime state of the Glowclock service.
//
// LOCKING RULES: The mu mutex protects all mutable fields. To prevent deadlocks:
//   - Never send to channels while holding the lock (notifications, hooks)
//   - Never call external methods (persistence hooks) while holding the lock
//   - Pattern: lock → modify state → copy needed data → unlock → send notifications
//
// See SetUserState for the reference implementation.
type State struct {
	ctx           context.Context
	ctxCancelFunc context.CancelFunc
	onChangeHook  func(resources.UserState)
	Notifications chan<- models.Notification
	bootUUID      string
	user          resources.UserState
	mu            syncutil.RWMutex
}

// NewState creates the service state store, seeded with the user state
// restored from the database. The returned channel carries every
// notification the service emits and is consumed by the API broadcaster.
func NewState(bootUUID string, initial resources.UserState) (state *State, notificationCh <-chan models.Notification) {
	// Buffer size of 100 gives the broadcaster headroom while a client
	// connection stalls without blocking state setters
	ns := make(chan models.Notification, 100)
	ctx, ctxCancelFunc := context.WithCancel(context.Background())
	return &State{
		user:          initial,
		Notifications: ns,
		ctx:           ctx,
		ctxCancelFunc: ctxCancelFunc,
		bootUUID:      bootUUID,
	}, ns
}

// UserState returns a snapshot of the current user state. Resources call
// this once per tick, so it must never block on anything but the lock.
func (s *State) UserState() resources.UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUserState replaces the user state. Duplicate updates are dropped
// without notifying, so callers can set unconditionally.
func (s *State) SetUserState(user resources.UserState) {
	s.mu.Lock()

	if s.user == user {
		// ignore no-op updates
		s.mu.Unlock()
		return
	}

	s.user = user

	// Capture hook reference and prepare payload inside lock, send outside
	hook := s.onChangeHook
	payload := models.StateChangedParams{
		Mode:  string(user.Mode),
		Color: user.Color.String(),
	}

	s.mu.Unlock()

	// Send notification outside lock to prevent deadlock
	notifications.StateChanged(s.Notifications, payload)

	// Persistence runs async so a slow database write can't stall the caller
	if hook != nil {
		go hook(user)
	}
}

// SetOnChangeHook registers a callback invoked on every accepted state
// change, used to persist state to the user database. The hook runs on
// its own goroutine and must not call back into setters.
func (s *State) SetOnChangeHook(hook func(resources.UserState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChangeHook = hook
}

func (s *State) StopService() {
	s.ctxCancelFunc()
}

func (s *State) GetContext() context.Context {
	return s.ctx
}

func (s *State) BootUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bootUUID
}
