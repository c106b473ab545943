// internal/processor/processor.go
//
// Package processor holds the pure evaluation and aggregation core: every
// function here is a synchronous transformation of in-memory readings with no
// I/O, no shared state and no clock access (except where a timestamp is part
// of the input). Degenerate input yields defined zero-valued results, never
// errors.
package processor

import (
	"math"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// DerivePower returns voltage×current in Watts, or nil when either input is
// absent. Absence is never assumed to be zero.
func DerivePower(voltage, current *float64) *float64 {
	if voltage == nil || current == nil {
		return nil
	}
	p := *voltage * *current
	return &p
}

// ClassifyStatus maps a reading's sensor values to a health status. Rules are
// checked in fixed precedence; the first match wins.
func ClassifyStatus(voltage, current, temperature *float64) data.Status {
	if voltage == nil || *voltage < 10 {
		return data.StatusCritical
	}
	if current == nil || *current < 0.1 {
		return data.StatusWarning
	}
	if temperature != nil && *temperature > 60 {
		return data.StatusWarning
	}
	return data.StatusNormal
}

// Enrich fills the derived fields of a freshly ingested reading: power (when
// not independently supplied) and status. Called once at creation; readings
// are immutable afterwards.
func Enrich(r *data.Reading) {
	if r.Power == nil {
		r.Power = DerivePower(r.Voltage, r.Current)
	}
	r.Status = ClassifyStatus(r.Voltage, r.Current, r.Temperature)
}

// effectivePower is the power value used by aggregation: the supplied power
// if present, otherwise derived from voltage and current when both exist.
func effectivePower(r data.Reading) (float64, bool) {
	if r.Power != nil {
		return *r.Power, true
	}
	if p := DerivePower(r.Voltage, r.Current); p != nil {
		return *p, true
	}
	return 0, false
}

// roundTo rounds half away from zero to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
