// internal/processor/trend.go
package processor

import "github.com/Sethnnections/solar-monitoring-system/internal/data"

// AnalyzeTrend fits an ordinary least-squares line over the series with the
// 0-based sample index as the independent variable. Slope, intercept and R²
// are rounded to 4 decimal places.
//
// Fitting against the index silently assumes uniform sampling intervals.
// Dashboard trend arrows were calibrated against exactly this behavior, so it
// must not be changed to a time-weighted fit without a product decision.
//
// Fewer than 2 values is a defined degenerate result {0, 0, 0}, not an error,
// so callers can run this unconditionally on arbitrary-length history.
func AnalyzeTrend(values []float64) data.TrendResult {
	n := len(values)
	if n < 2 {
		return data.TrendResult{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return data.TrendResult{}
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	// Coefficient of determination against the mean.
	mean := sumY / fn
	var ssRes, ssTot float64
	for i, y := range values {
		fitted := slope*float64(i) + intercept
		ssRes += (y - fitted) * (y - fitted)
		ssTot += (y - mean) * (y - mean)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return data.TrendResult{
		Slope:     roundTo(slope, 4),
		Intercept: roundTo(intercept, 4),
		R2:        roundTo(r2, 4),
	}
}
