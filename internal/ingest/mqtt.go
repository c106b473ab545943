// internal/ingest/mqtt.go
package ingest

import (
	"context"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
	"github.com/Sethnnections/solar-monitoring-system/internal/pipeline"
)

// MQTTSource subscribes to device telemetry topics and feeds every payload
// through the same pipeline as the HTTP ingest endpoint. Topics follow
// telemetry/<deviceID>/readings; the device id in the topic is the fallback
// when the payload carries none.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	pipe   *pipeline.Pipeline
	logger *zap.Logger
}

func NewMQTTSource(cfg config.MQTTConfig, pipe *pipeline.Pipeline, logger *zap.Logger) *MQTTSource {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)

	return &MQTTSource{
		client: mqtt.NewClient(opts),
		topic:  cfg.Topic,
		pipe:   pipe,
		logger: logger,
	}
}

// Start connects to the broker and subscribes. Messages are handled on
// paho's callback goroutines; the pipeline is safe for concurrent calls.
func (s *MQTTSource) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", token.Error())
	}
	if token := s.client.Subscribe(s.topic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", s.topic, token.Error())
	}
	s.logger.Info("mqtt ingest started", zap.String("topic", s.topic))
	return nil
}

// Stop unsubscribes and disconnects.
func (s *MQTTSource) Stop() {
	s.client.Unsubscribe(s.topic)
	s.client.Disconnect(250)
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	reading, err := data.Parse(msg.Payload(), deviceIDFromTopic(msg.Topic()))
	if err != nil {
		s.logger.Warn("rejecting mqtt payload",
			zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	if _, err := s.pipe.Ingest(context.Background(), reading); err != nil {
		s.logger.Error("mqtt ingest failed",
			zap.String("device", reading.DeviceID), zap.Error(err))
	}
}

// deviceIDFromTopic extracts the middle segment of telemetry/<id>/readings.
func deviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
