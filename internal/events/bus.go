// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package events provides the in-process publish/subscribe bus the core uses
// to notify collaborators about mutations. The presentation layer subscribes
// instead of holding live store subscriptions; the core itself only exposes
// synchronous queries plus this notification hook.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Topics published by the core.
const (
	// TopicHistoryRecorded fires after a view history append.
	TopicHistoryRecorded = "history.recorded"

	// TopicProgressCompleted fires once per false-to-true completion
	// transition of a progress record.
	TopicProgressCompleted = "progress.completed"

	// TopicFavoritesChanged fires after a favorite add or remove.
	TopicFavoritesChanged = "favorites.changed"

	// TopicRecommendationsRefreshed fires after a recommendation refresh.
	TopicRecommendationsRefreshed = "recommendations.refreshed"
)

// Bus wraps a Watermill in-process pub/sub channel with JSON payloads.
// It is safe for concurrent use.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
}

// NewBus creates an in-process event bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(logger zerolog.Logger) *Bus {
	l := logger.With().Str("component", "events").Logger()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, newLoggerAdapter(l)),
		logger: l,
	}
}

// Publish marshals the payload as JSON and publishes it on the topic.
// Publishing never blocks mutation paths beyond the channel buffer.
func (b *Bus) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages for the topic. The subscription
// ends when ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return ch, nil
}

// Close shuts the bus down and terminates all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode unmarshals a message payload into v.
func Decode(msg *message.Message, v interface{}) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode event payload: %w", err)
	}
	return nil
}

// loggerAdapter bridges watermill's logging interface to zerolog.
type loggerAdapter struct {
	logger zerolog.Logger
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newLoggerAdapter(logger zerolog.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{logger: logger}
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.logger.Error().Err(err), fields).Msg(msg)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.logger.Info(), fields).Msg(msg)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.logger.Debug(), fields).Msg(msg)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.logger.Trace(), fields).Msg(msg)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	logger := a.logger
	for k, v := range fields {
		logger = logger.With().Interface(k, v).Logger()
	}
	return &loggerAdapter{logger: logger}
}

func (a *loggerAdapter) event(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}
