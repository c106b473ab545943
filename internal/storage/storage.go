// internal/storage/storage.go
//
// Package storage defines the repository ports the pipeline and dashboard
// depend on, plus the in-memory and Postgres adapters. The core evaluation
// packages never touch these; they are handed reading collections by callers.
package storage

import (
	"context"
	"time"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// ReadingRepository stores and retrieves telemetry readings.
type ReadingRepository interface {
	// Insert persists one reading.
	Insert(ctx context.Context, r data.Reading) error

	// InsertBatch persists many readings; implementations chunk writes to
	// bound memory and transaction size.
	InsertBatch(ctx context.Context, readings []data.Reading) error

	// GetLatest returns the newest reading for a device, or nil when the
	// device has no history.
	GetLatest(ctx context.Context, deviceID string) (*data.Reading, error)

	// GetRange returns readings in [start, end] ascending by timestamp.
	GetRange(ctx context.Context, deviceID string, start, end time.Time) ([]data.Reading, error)

	// DeviceIDs lists every device with at least one stored reading.
	DeviceIDs(ctx context.Context) ([]string, error)
}

// AlertRepository stores raised alerts and answers historical-suppression
// queries.
type AlertRepository interface {
	// InsertAlert persists one alert.
	InsertAlert(ctx context.Context, a data.Alert) error

	// Recent returns up to limit alerts, newest first.
	Recent(ctx context.Context, limit int) ([]data.Alert, error)

	// HasRecentUnresolved reports whether an unresolved alert of the same
	// type was raised for the device within the window. Used for cross-batch
	// suppression on top of the same-batch deduplicator.
	HasRecentUnresolved(ctx context.Context, deviceID string, t data.AlertType, window time.Duration) (bool, error)
}
