// internal/alerting/alerter.go
package alerting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
	"github.com/Sethnnections/solar-monitoring-system/internal/storage"
	"github.com/Sethnnections/solar-monitoring-system/internal/websocket"
)

// Notifier delivers an alert to an external channel (email, SMS, pager). The
// alerter only decides which alerts qualify, never how they are delivered.
type Notifier interface {
	Notify(ctx context.Context, alert data.Alert) error
}

// LogNotifier is the default delivery channel: it just logs. Deployments
// plug in a real sink.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(_ context.Context, alert data.Alert) error {
	n.Logger.Warn("alert notification",
		zap.String("device", alert.DeviceID),
		zap.String("type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
		zap.String("message", alert.Message),
		zap.Float64("value", alert.Value))
	return nil
}

// suppressionWindow is how far back the alerter looks for an unresolved alert
// of the same type before raising another one.
const suppressionWindow = time.Hour

// Alerter turns deduplicated candidate alerts into persisted alerts, forwards
// the critical and high ones to the notifier, and broadcasts everything on
// the hub for live dashboards.
type Alerter struct {
	hub      *websocket.Hub
	notifier Notifier
	alerts   storage.AlertRepository // nil disables persistence and cross-batch suppression
	logger   *zap.Logger
}

func NewAlerter(hub *websocket.Hub, notifier Notifier, alerts storage.AlertRepository, logger *zap.Logger) *Alerter {
	return &Alerter{hub: hub, notifier: notifier, alerts: alerts, logger: logger}
}

// Process deduplicates a batch of candidates from one evaluation call and
// raises the survivors. All raised alerts are returned for the caller; only
// severities high and critical reach the notifier. With an alert repository
// configured, candidates matching an unresolved alert of the same type raised
// within the last hour are suppressed as well.
func (a *Alerter) Process(ctx context.Context, deviceID string, at time.Time, candidates []data.CandidateAlert) []data.Alert {
	deduped := Deduplicate(candidates)
	if len(deduped) == 0 {
		return nil
	}

	var raised []data.Alert
	for _, c := range deduped {
		if a.alerts != nil {
			dup, err := a.alerts.HasRecentUnresolved(ctx, deviceID, c.Type, suppressionWindow)
			if err != nil {
				a.logger.Error("checking recent alerts", zap.Error(err))
			} else if dup {
				continue
			}
		}

		alert := data.Alert{
			ID:             uuid.New(),
			DeviceID:       deviceID,
			Timestamp:      at,
			CandidateAlert: c,
		}

		if a.alerts != nil {
			if err := a.alerts.InsertAlert(ctx, alert); err != nil {
				a.logger.Error("persisting alert", zap.Error(err))
			}
		}

		if alert.Severity.AtLeast(data.SeverityHigh) {
			if err := a.notifier.Notify(ctx, alert); err != nil {
				a.logger.Error("notifying alert", zap.Error(err))
			}
		}

		if a.hub != nil {
			a.hub.BroadcastAlert(alert)
		}
		raised = append(raised, alert)
	}
	return raised
}
