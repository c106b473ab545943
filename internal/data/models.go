// internal/data/models.go
package data

import (
	"time"

	"github.com/google/uuid"
)

// Status is the discrete health classification of a single reading.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusOffline  Status = "offline"
)

// Reading is one telemetry sample from a device. Sensor fields are pointers:
// an absent value stays absent through the pipeline and is never coerced to
// zero. Readings are immutable after creation; Status and IsAnomaly are
// derived once at ingest.
type Reading struct {
	DeviceID     string    `json:"deviceId"`
	Timestamp    time.Time `json:"timestamp"`
	Voltage      *float64  `json:"voltage,omitempty"`      // V, expected 0-50
	Current      *float64  `json:"current,omitempty"`      // A, expected 0-30
	Temperature  *float64  `json:"temperature,omitempty"`  // °C, expected -20-100
	Power        *float64  `json:"power,omitempty"`        // W, derived V×I when not supplied
	BatteryLevel *float64  `json:"batteryLevel,omitempty"` // %, 0-100
	Status       Status    `json:"status"`
	IsAnomaly    bool      `json:"isAnomaly"`
}

// Float returns a pointer to v. Convenience for building readings.
func Float(v float64) *float64 { return &v }

// AlertType identifies the condition a candidate alert reports.
type AlertType string

const (
	AlertVoltageDrop     AlertType = "voltage_drop"
	AlertCurrentAnomaly  AlertType = "current_anomaly"
	AlertTemperatureHigh AlertType = "temperature_high"
	AlertSystemOffline   AlertType = "system_offline"
	AlertBatteryLow      AlertType = "battery_low"
	AlertPanelFault      AlertType = "panel_fault"
)

// alertUnits is the fixed display unit per alert type. A lookup table rather
// than a switch on strings so a missing entry is a visible gap, not a silent
// default branch.
var alertUnits = map[AlertType]string{
	AlertVoltageDrop:     "V",
	AlertCurrentAnomaly:  "A",
	AlertTemperatureHigh: "°C",
	AlertSystemOffline:   "",
	AlertBatteryLow:      "%",
	AlertPanelFault:      "",
}

// Unit returns the display unit for the alert type's value.
func (t AlertType) Unit() string { return alertUnits[t] }

// Severity orders alert severities: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the numeric order of a severity, -1 for unknown values.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// CandidateAlert is the ephemeral output of one evaluation call, pending
// deduplication and persistence.
type CandidateAlert struct {
	Type           AlertType `json:"type"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	Value          float64   `json:"value"`
	PreviousValue  *float64  `json:"previousValue,omitempty"`
	Threshold      string    `json:"threshold,omitempty"`
	ActionRequired bool      `json:"actionRequired"`
}

// Alert is a candidate alert bound to a device and instant, the shape handed
// to the alert repository and the notification sink.
type Alert struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Timestamp time.Time `json:"timestamp"`
	CandidateAlert
	Resolved bool `json:"resolved"`
}

// AnomalyType identifies a sudden-change condition between two consecutive
// readings.
type AnomalyType string

const (
	AnomalyVoltageDrop     AnomalyType = "voltage_drop"
	AnomalyZeroCurrent     AnomalyType = "zero_current"
	AnomalyHighTemperature AnomalyType = "high_temperature"
)

// AnomalySeverity grades an anomaly. Anomalies only distinguish warning from
// critical; the four-level Severity scale belongs to alerts.
type AnomalySeverity string

const (
	AnomalyWarning  AnomalySeverity = "warning"
	AnomalyCritical AnomalySeverity = "critical"
)

// Anomaly is one flagged sudden change, produced by the anomaly detector.
type Anomaly struct {
	Type          AnomalyType     `json:"type"`
	Severity      AnomalySeverity `json:"severity"`
	Message       string          `json:"message"`
	Value         float64         `json:"value"`
	PreviousValue *float64        `json:"previousValue,omitempty"`
}

// DailyStatistics aggregates a bounded reading set. Recomputed fully from the
// set each call, never mutated incrementally.
type DailyStatistics struct {
	TotalEnergy    float64 `json:"totalEnergy"` // kWh
	AvgVoltage     float64 `json:"avgVoltage"`
	AvgCurrent     float64 `json:"avgCurrent"`
	MaxTemperature float64 `json:"maxTemperature"`
	MinVoltage     float64 `json:"minVoltage"`
	PeakPower      float64 `json:"peakPower"`
	Efficiency     float64 `json:"efficiency"` // %, may exceed 100
	DataPoints     int     `json:"dataPoints"`
}

// TimeBucket is one aggregation interval with per-field averages. Timestamp
// is the bucket key; its format sorts lexically in chronological order.
type TimeBucket struct {
	Timestamp   string  `json:"timestamp"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Temperature float64 `json:"temperature"`
	Power       float64 `json:"power"`
	Readings    int     `json:"readings"` // voltage samples contributing, completeness proxy
}

// TrendResult is an ordinary least-squares fit over a numeric series indexed
// 0..n-1. The index, not wall-clock time, is the independent variable.
type TrendResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

// PeakDay is the calendar day with the highest integrated energy in a period.
type PeakDay struct {
	Date   string  `json:"date"`
	Energy float64 `json:"energy"` // kWh
}

// Recommendation is one operator action suggested by the summary rules.
type Recommendation struct {
	Priority Severity `json:"priority"`
	Message  string   `json:"message"`
}

// PeriodSummaryReport is the top-level aggregate handed to dashboards and the
// report sink.
type PeriodSummaryReport struct {
	ID              uuid.UUID        `json:"id"`
	DeviceID        string           `json:"deviceId"`
	PeriodStart     time.Time        `json:"periodStart"`
	PeriodEnd       time.Time        `json:"periodEnd"`
	Summary         DailyStatistics  `json:"summary"`
	TimeSeries      []TimeBucket     `json:"timeSeries"`
	PeakHour        *TimeBucket      `json:"peakHour,omitempty"`
	PeakDay         *PeakDay         `json:"peakDay,omitempty"`
	PowerTrend      TrendResult      `json:"powerTrend"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}
