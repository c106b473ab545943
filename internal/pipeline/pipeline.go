// internal/pipeline/pipeline.go
//
// Package pipeline wires one ingested reading through the evaluation core:
// derive → classify → detect anomalies → evaluate thresholds → deduplicate →
// alert → persist → broadcast. Both the HTTP endpoint and the MQTT subscriber
// hand readings to the same Pipeline.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sethnnections/solar-monitoring-system/internal/alerting"
	"github.com/Sethnnections/solar-monitoring-system/internal/anomaly"
	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
	"github.com/Sethnnections/solar-monitoring-system/internal/processor"
	"github.com/Sethnnections/solar-monitoring-system/internal/storage"
	"github.com/Sethnnections/solar-monitoring-system/internal/websocket"
)

type Pipeline struct {
	readings   storage.ReadingRepository
	detector   *anomaly.Detector
	alerter    *alerting.Alerter
	hub        *websocket.Hub
	thresholds config.ThresholdConfig
	logger     *zap.Logger
}

func New(readings storage.ReadingRepository, detector *anomaly.Detector, alerter *alerting.Alerter,
	hub *websocket.Hub, thresholds config.ThresholdConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		readings:   readings,
		detector:   detector,
		alerter:    alerter,
		hub:        hub,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Ingest runs one reading through the full evaluation chain. The reading's
// derived fields (power, status, isAnomaly) are filled here, once, before it
// is persisted. A failed previous-reading lookup degrades to "no history";
// only a failed insert is an error.
func (p *Pipeline) Ingest(ctx context.Context, r *data.Reading) ([]data.Alert, error) {
	prev, err := p.readings.GetLatest(ctx, r.DeviceID)
	if err != nil {
		p.logger.Warn("fetching previous reading, continuing without history",
			zap.String("device", r.DeviceID), zap.Error(err))
		prev = nil
	}

	processor.Enrich(r)

	anomalies := p.detector.Check(prev, *r)
	r.IsAnomaly = len(anomalies) > 0
	for _, an := range anomalies {
		p.logger.Info("anomaly detected",
			zap.String("device", r.DeviceID),
			zap.String("type", string(an.Type)),
			zap.String("severity", string(an.Severity)),
			zap.String("message", an.Message))
	}

	candidates := alerting.Evaluate(*r, prev, p.thresholds)

	if err := p.readings.Insert(ctx, *r); err != nil {
		return nil, fmt.Errorf("storing reading: %w", err)
	}

	alerts := p.alerter.Process(ctx, r.DeviceID, r.Timestamp, candidates)

	if p.hub != nil {
		p.hub.BroadcastReading(r)
	}
	return alerts, nil
}
