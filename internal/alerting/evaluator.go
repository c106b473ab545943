// internal/alerting/evaluator.go
package alerting

import (
	"fmt"

	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// Fixed evaluation constants. The 80% voltage soft floor and the daylight
// window are not operator-configurable; the rest of the thresholds arrive in
// the ThresholdConfig.
const (
	voltageSoftFloorPct = 0.8
	daylightStartHour   = 8
	daylightEndHour     = 16
	tempCriticalC       = 70.0
	crossVoltageDropV   = 3.0
	crossTempRiseC      = 10.0
	batteryLowPct       = 20.0
	batteryCriticalPct  = 10.0
)

// Evaluate checks one reading against the supplied thresholds and returns all
// matching candidate alerts. Sensor categories are independent: no rule short
// circuits another, and the result order is fixed (voltage, current,
// temperature, battery, cross-reading checks). The daylight window for the
// zero-current rule is taken from the reading's own timestamp, not the wall
// clock.
func Evaluate(curr data.Reading, prev *data.Reading, th config.ThresholdConfig) []data.CandidateAlert {
	var alerts []data.CandidateAlert

	if curr.Voltage != nil {
		alerts = append(alerts, evaluateVoltage(*curr.Voltage, th)...)
	}
	if curr.Current != nil {
		alerts = append(alerts, evaluateCurrent(*curr.Current, curr.Timestamp.Hour(), th)...)
	}
	if curr.Temperature != nil {
		alerts = append(alerts, evaluateTemperature(*curr.Temperature, th)...)
	}
	if curr.BatteryLevel != nil {
		alerts = append(alerts, evaluateBattery(*curr.BatteryLevel)...)
	}
	if prev != nil {
		alerts = append(alerts, evaluateCrossReading(curr, *prev)...)
	}

	return alerts
}

func evaluateVoltage(v float64, th config.ThresholdConfig) []data.CandidateAlert {
	critical := th.NominalVoltage * th.VoltageCriticalPct / 100
	low := th.NominalVoltage * th.VoltageLowPct / 100
	soft := th.NominalVoltage * voltageSoftFloorPct

	switch {
	case v < critical:
		return []data.CandidateAlert{{
			Type:           data.AlertVoltageDrop,
			Severity:       data.SeverityCritical,
			Message:        fmt.Sprintf("Voltage %.2fV below critical threshold %.2fV", v, critical),
			Value:          v,
			Threshold:      fmt.Sprintf("%.2fV (%.0f%% of nominal)", critical, th.VoltageCriticalPct),
			ActionRequired: true,
		}}
	case v < low:
		return []data.CandidateAlert{{
			Type:           data.AlertVoltageDrop,
			Severity:       data.SeverityHigh,
			Message:        fmt.Sprintf("Voltage %.2fV below low threshold %.2fV", v, low),
			Value:          v,
			Threshold:      fmt.Sprintf("%.2fV (%.0f%% of nominal)", low, th.VoltageLowPct),
			ActionRequired: true,
		}}
	case v < soft:
		return []data.CandidateAlert{{
			Type:      data.AlertVoltageDrop,
			Severity:  data.SeverityMedium,
			Message:   fmt.Sprintf("Voltage %.2fV below 80%% of nominal", v),
			Value:     v,
			Threshold: fmt.Sprintf("%.2fV (80%% of nominal)", soft),
		}}
	}
	return nil
}

func evaluateCurrent(c float64, hour int, th config.ThresholdConfig) []data.CandidateAlert {
	var alerts []data.CandidateAlert

	low := th.NominalCurrent * th.CurrentLowPct / 100
	if c < low {
		alerts = append(alerts, data.CandidateAlert{
			Type:           data.AlertCurrentAnomaly,
			Severity:       data.SeverityHigh,
			Message:        fmt.Sprintf("Current %.3fA below low threshold %.3fA", c, low),
			Value:          c,
			Threshold:      fmt.Sprintf("%.3fA (%.0f%% of nominal)", low, th.CurrentLowPct),
			ActionRequired: true,
		})
	}

	// Independent of the low-current rule; both may fire for the same reading.
	if c == 0 && hour >= daylightStartHour && hour <= daylightEndHour {
		alerts = append(alerts, data.CandidateAlert{
			Type:     data.AlertPanelFault,
			Severity: data.SeverityMedium,
			Message:  "No current during daylight hours: possible panel fault or disconnection",
			Value:    c,
		})
	}
	return alerts
}

func evaluateTemperature(t float64, th config.ThresholdConfig) []data.CandidateAlert {
	if t <= th.TemperatureHighC {
		return nil
	}
	severity := data.SeverityHigh
	if t > tempCriticalC {
		severity = data.SeverityCritical
	}
	return []data.CandidateAlert{{
		Type:           data.AlertTemperatureHigh,
		Severity:       severity,
		Message:        fmt.Sprintf("Temperature %.1f°C above threshold %.1f°C", t, th.TemperatureHighC),
		Value:          t,
		Threshold:      fmt.Sprintf("%.1f°C", th.TemperatureHighC),
		ActionRequired: severity == data.SeverityCritical,
	}}
}

func evaluateBattery(level float64) []data.CandidateAlert {
	if level >= batteryLowPct {
		return nil
	}
	severity := data.SeverityMedium
	if level < batteryCriticalPct {
		severity = data.SeverityHigh
	}
	return []data.CandidateAlert{{
		Type:           data.AlertBatteryLow,
		Severity:       severity,
		Message:        fmt.Sprintf("Battery level %.0f%% is low", level),
		Value:          level,
		Threshold:      fmt.Sprintf("%.0f%%", batteryLowPct),
		ActionRequired: severity == data.SeverityHigh,
	}}
}

// evaluateCrossReading flags sudden changes between consecutive readings,
// phrased as alerts rather than anomalies.
func evaluateCrossReading(curr, prev data.Reading) []data.CandidateAlert {
	var alerts []data.CandidateAlert

	if curr.Voltage != nil && prev.Voltage != nil {
		if drop := *prev.Voltage - *curr.Voltage; drop > crossVoltageDropV {
			alerts = append(alerts, data.CandidateAlert{
				Type:           data.AlertVoltageDrop,
				Severity:       data.SeverityCritical,
				Message:        fmt.Sprintf("Sudden voltage drop of %.2fV since previous reading", drop),
				Value:          *curr.Voltage,
				PreviousValue:  prev.Voltage,
				ActionRequired: true,
			})
		}
	}

	if curr.Temperature != nil && prev.Temperature != nil {
		if rise := *curr.Temperature - *prev.Temperature; rise > crossTempRiseC {
			alerts = append(alerts, data.CandidateAlert{
				Type:          data.AlertTemperatureHigh,
				Severity:      data.SeverityHigh,
				Message:       fmt.Sprintf("Temperature rose %.1f°C since previous reading", rise),
				Value:         *curr.Temperature,
				PreviousValue: prev.Temperature,
			})
		}
	}
	return alerts
}
