// internal/anomaly/detector.go
package anomaly

import (
	"fmt"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// Sudden-change limits between consecutive readings. These are distinct from
// the configurable alert thresholds: they describe physical plausibility, not
// operator policy.
const (
	voltageDropWarn     = 2.0 // V
	voltageDropCritical = 5.0 // V
	zeroCurrentVoltage  = 12.0
	zeroCurrentAmps     = 0.1
	highTempWarn        = 50.0 // °C
	highTempCritical    = 60.0
)

// Detector flags sudden changes between a reading and its predecessor.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Check compares the current reading against the previous one (nil when the
// device has no history) and returns zero or more anomalies. All rules are
// evaluated independently; the result order is fixed: voltage drop, zero
// current, high temperature.
func (d *Detector) Check(prev *data.Reading, curr data.Reading) []data.Anomaly {
	var anomalies []data.Anomaly

	if prev != nil && prev.Voltage != nil && curr.Voltage != nil {
		drop := *prev.Voltage - *curr.Voltage
		if drop > voltageDropWarn {
			severity := data.AnomalyWarning
			if drop > voltageDropCritical {
				severity = data.AnomalyCritical
			}
			anomalies = append(anomalies, data.Anomaly{
				Type:          data.AnomalyVoltageDrop,
				Severity:      severity,
				Message:       fmt.Sprintf("Voltage dropped %.2fV since previous reading", drop),
				Value:         *curr.Voltage,
				PreviousValue: prev.Voltage,
			})
		}
	}

	// Voltage present but no current flowing: a panel or wiring fault in
	// daylight rather than normal night-time behavior.
	if curr.Voltage != nil && curr.Current != nil &&
		*curr.Voltage > zeroCurrentVoltage && *curr.Current < zeroCurrentAmps {
		anomalies = append(anomalies, data.Anomaly{
			Type:     data.AnomalyZeroCurrent,
			Severity: data.AnomalyWarning,
			Message:  fmt.Sprintf("No current at %.2fV: possible panel or wiring fault", *curr.Voltage),
			Value:    *curr.Current,
		})
	}

	if curr.Temperature != nil && *curr.Temperature > highTempWarn {
		severity := data.AnomalyWarning
		if *curr.Temperature > highTempCritical {
			severity = data.AnomalyCritical
		}
		anomalies = append(anomalies, data.Anomaly{
			Type:     data.AnomalyHighTemperature,
			Severity: severity,
			Message:  fmt.Sprintf("Temperature %.1f°C exceeds safe operating range", *curr.Temperature),
			Value:    *curr.Temperature,
		})
	}

	return anomalies
}
