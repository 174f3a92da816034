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

package notifications

import (
	"testing"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunning_NoPayload verifies the running notification is sent without params.
func TestRunning_NoPayload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)

	Running(ns)

	select {
	case notification := <-ns:
		assert.Equal(t, models.NotificationRunning, notification.Method)
		assert.Nil(t, notification.Params)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected notification was not sent")
	}
}

// TestStateChanged_Payload verifies StateChanged marshals the new state.
func TestStateChanged_Payload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)

	StateChanged(ns, models.StateChangedParams{
		Mode:  "clock",
		Color: "#ff8800",
	})

	select {
	case notification := <-ns:
		assert.Equal(t, models.NotificationStateChanged, notification.Method)
		require.NotNil(t, notification.Params)
		assert.Contains(t, string(notification.Params), `"mode":"clock"`)
		assert.Contains(t, string(notification.Params), "#ff8800")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected notification was not sent")
	}
}

// TestResourceError_Payload verifies ResourceError marshals the failing
// resource and its error text.
func TestResourceError_Payload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)

	ResourceError(ns, models.ResourceErrorParams{
		Time:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Resource: "lcd",
		Error:    "opening /dev/ttyACM0: no such file or directory",
	})

	select {
	case notification := <-ns:
		assert.Equal(t, models.NotificationResourceError, notification.Method)
		require.NotNil(t, notification.Params)
		assert.Contains(t, string(notification.Params), `"resource":"lcd"`)
		assert.Contains(t, string(notification.Params), "/dev/ttyACM0")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected notification was not sent")
	}
}

// TestSend_UnmarshalablePayloadDropped verifies a payload that fails to
// marshal is dropped before it reaches the channel, so clients never see a
// half-encoded notification.
func TestSend_UnmarshalablePayloadDropped(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)

	send(ns, models.NotificationStateChanged, make(chan int))

	assert.Empty(t, ns)
}

// TestNotificationOrder verifies notifications arrive in the order they were
// sent, which the state.changed stream relies on.
func TestNotificationOrder(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 2)

	StateChanged(ns, models.StateChangedParams{Mode: "clock", Color: "#ffffff"})
	StateChanged(ns, models.StateChangedParams{Mode: "off", Color: "#000000"})

	first := <-ns
	second := <-ns
	assert.Contains(t, string(first.Params), `"mode":"clock"`)
	assert.Contains(t, string(second.Params), `"mode":"off"`)
}
