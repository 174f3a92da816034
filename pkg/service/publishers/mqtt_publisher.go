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

package publishers

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTopicPrefix is used when a publisher is configured without a topic.
const DefaultTopicPrefix = "glowclock"

// MQTTPublisher mirrors service notifications to an MQTT broker. State
// changes go to <prefix>/state, everything else to <prefix>/event.
type MQTTPublisher struct {
	client      mqtt.Client
	stopCh      chan struct{}
	broker      string
	topicPrefix string
	username    string
	password    string
	filter      []string
	wg          sync.WaitGroup
}

// NewMQTTPublisher creates a new MQTT publisher for the given broker, topic
// prefix, and optional filter. If filter is empty, all notifications are
// published. Otherwise, only notifications matching the filter list are
// published.
func NewMQTTPublisher(broker, topicPrefix string, filter []string) *MQTTPublisher {
	if topicPrefix == "" {
		topicPrefix = DefaultTopicPrefix
	}
	return &MQTTPublisher{
		broker:      broker,
		topicPrefix: topicPrefix,
		filter:      filter,
		stopCh:      make(chan struct{}),
	}
}

// SetAuth configures broker credentials. Must be called before Start.
func (p *MQTTPublisher) SetAuth(username, password string) {
	p.username = username
	p.password = password
}

// Start connects to the MQTT broker and begins publishing notifications.
func (p *MQTTPublisher) Start(notifications <-chan models.Notification) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", p.broker))
	opts.SetClientID("glowclock-publisher-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if p.username != "" {
		opts.SetUsername(p.username)
		opts.SetPassword(p.password)
		log.Debug().Msgf("mqtt publisher: using authentication for %s", p.broker)
	}

	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Msgf("mqtt publisher: connected to %s", p.broker)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt publisher: connection lost")
	}

	p.client = mqtt.NewClient(opts)

	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Msgf("mqtt publisher: connected to %s (topic prefix: %s)", p.broker, p.topicPrefix)

	p.wg.Add(1)
	go p.publishNotifications(notifications)

	return nil
}

// Stop disconnects from the MQTT broker and stops publishing. It blocks
// until the publish goroutine has drained.
func (p *MQTTPublisher) Stop() {
	close(p.stopCh)
	p.wg.Wait()

	if p.client != nil && p.client.IsConnected() {
		log.Debug().Msg("mqtt publisher: disconnecting")
		p.client.Disconnect(250)
	}
}

// publishNotifications is the main loop that forwards notifications to MQTT.
func (p *MQTTPublisher) publishNotifications(notifications <-chan models.Notification) {
	defer p.wg.Done()
	log.Debug().Msg("mqtt publisher: starting notification publisher goroutine")

	for {
		select {
		case <-p.stopCh:
			log.Debug().Msg("mqtt publisher: stopping notification publisher")
			return
		case notif, ok := <-notifications:
			if !ok {
				log.Debug().Msg("mqtt publisher: notification channel closed")
				return
			}

			if !p.matchesFilter(notif.Method) {
				continue
			}

			// Direct payload, no JSON-RPC wrapper
			payload, err := json.Marshal(notif.Params)
			if err != nil {
				log.Error().Err(err).Msgf("mqtt publisher: failed to marshal notification")
				continue
			}

			// State is retained so a new subscriber immediately sees the
			// current mode and color.
			retained := notif.Method == models.NotificationStateChanged

			token := p.client.Publish(p.topicFor(notif.Method), 0, retained, payload)
			if token.Wait() && token.Error() != nil {
				log.Error().Err(token.Error()).Msgf("mqtt publisher: failed to publish message")
				continue
			}

			log.Debug().Msgf("mqtt publisher: published %s notification", notif.Method)
		}
	}
}

// topicFor maps a notification method to its MQTT topic. State changes go
// to the state topic, everything else to the event topic.
func (p *MQTTPublisher) topicFor(method string) string {
	if method == models.NotificationStateChanged {
		return p.topicPrefix + "/state"
	}
	return p.topicPrefix + "/event"
}

// matchesFilter checks if a notification method matches the configured filter.
// If filter is empty, all notifications pass. Otherwise, only notifications
// in the filter list are published.
func (p *MQTTPublisher) matchesFilter(method string) bool {
	if len(p.filter) == 0 {
		return true
	}

	for _, f := range p.filter {
		if f == method {
			return true
		}
	}

	return false
}
