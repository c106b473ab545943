// internal/processor/energy.go
package processor

import (
	"sort"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// IntegrateEnergy computes the energy in kWh produced over a reading set by
// trapezoidal integration of power over time. Readings are stably sorted by
// timestamp first; a reading without a power value contributes 0 W at its
// endpoint. Fewer than 2 readings integrates to 0. The result is rounded to
// 3 decimal places.
func IntegrateEnergy(readings []data.Reading) float64 {
	if len(readings) < 2 {
		return 0
	}

	sorted := make([]data.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var wh float64
	for i := 1; i < len(sorted); i++ {
		dt := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Hours()
		p0, _ := effectivePower(sorted[i-1])
		p1, _ := effectivePower(sorted[i])
		wh += (p0 + p1) / 2 * dt
	}

	return roundTo(wh/1000, 3)
}
