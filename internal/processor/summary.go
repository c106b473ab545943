// internal/processor/summary.go
package processor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// BuildDailyStatistics computes full-period aggregate statistics over a
// reading set. It is a pure function returning a fresh value each call;
// nothing is accumulated across invocations. Peak memory is O(len(readings)),
// so callers working over long histories should hand in bounded windows.
//
// Efficiency compares integrated energy against a fixed rated-capacity
// expectation (ratedPower × peakSunHours / 1000 kWh). The rated power is a
// configured assumption, never derived from the data, so efficiency can
// exceed 100 when a panel outperforms it.
func BuildDailyStatistics(readings []data.Reading, th config.ThresholdConfig) data.DailyStatistics {
	stats := data.DailyStatistics{DataPoints: len(readings)}
	if len(readings) == 0 {
		return stats
	}

	var (
		voltageSum float64
		voltageN   int
		currentSum float64
		currentN   int
		minVoltage float64
		maxTemp    float64
		peakPower  float64
		haveV      bool
		haveT      bool
	)
	for _, r := range readings {
		if r.Voltage != nil {
			voltageSum += *r.Voltage
			voltageN++
			if !haveV || *r.Voltage < minVoltage {
				minVoltage = *r.Voltage
				haveV = true
			}
		}
		if r.Current != nil {
			currentSum += *r.Current
			currentN++
		}
		if r.Temperature != nil {
			if !haveT || *r.Temperature > maxTemp {
				maxTemp = *r.Temperature
				haveT = true
			}
		}
		if p, ok := effectivePower(r); ok && p > peakPower {
			peakPower = p
		}
	}

	stats.AvgVoltage = mean(voltageSum, voltageN, 2)
	stats.AvgCurrent = mean(currentSum, currentN, 3)
	stats.MinVoltage = roundTo(minVoltage, 2)
	stats.MaxTemperature = roundTo(maxTemp, 1)
	stats.PeakPower = roundTo(peakPower, 2)
	stats.TotalEnergy = IntegrateEnergy(readings)

	expected := th.RatedPowerW * th.PeakSunHours / 1000
	if expected > 0 {
		stats.Efficiency = roundTo(stats.TotalEnergy/expected*100, 2)
	}
	return stats
}

// BuildRecommendations derives operator recommendations from aggregate
// statistics using fixed rules.
func BuildRecommendations(stats data.DailyStatistics) []data.Recommendation {
	var recs []data.Recommendation
	if stats.Efficiency < 70 {
		recs = append(recs, data.Recommendation{
			Priority: data.SeverityHigh,
			Message:  "Efficiency below 70%: inspect panels for soiling and check wiring connections",
		})
	}
	if stats.MinVoltage < 11.5 {
		recs = append(recs, data.Recommendation{
			Priority: data.SeverityCritical,
			Message:  "Minimum voltage below 11.5V: check battery health and charge controller",
		})
	}
	if stats.MaxTemperature > 55 {
		recs = append(recs, data.Recommendation{
			Priority: data.SeverityMedium,
			Message:  "Temperature peaked above 55°C: improve ventilation around the installation",
		})
	}
	if stats.DataPoints < 100 {
		recs = append(recs, data.Recommendation{
			Priority: data.SeverityLow,
			Message:  "Fewer than 100 readings in period: increase sampling frequency for reliable statistics",
		})
	}
	return recs
}

// BuildPeriodSummary is the single entry point composing everything the
// dashboard and report rendering consume for one device and period: the
// full-period statistics, an hourly time series, peak hour and peak day, a
// power trend, and recommendations.
func BuildPeriodSummary(deviceID string, readings []data.Reading, start, end time.Time, th config.ThresholdConfig) *data.PeriodSummaryReport {
	report := &data.PeriodSummaryReport{
		ID:          uuid.New(),
		DeviceID:    deviceID,
		PeriodStart: start,
		PeriodEnd:   end,
		GeneratedAt: time.Now().UTC(),
	}

	report.Summary = BuildDailyStatistics(readings, th)
	report.TimeSeries = AggregateBuckets(readings, IntervalHour)
	report.PeakHour = peakHour(report.TimeSeries)
	report.PeakDay = peakDay(readings)

	powers := make([]float64, len(report.TimeSeries))
	for i, b := range report.TimeSeries {
		powers[i] = b.Power
	}
	report.PowerTrend = AnalyzeTrend(powers)

	report.Recommendations = BuildRecommendations(report.Summary)
	return report
}

// peakHour returns the hourly bucket with the highest average power.
func peakHour(buckets []data.TimeBucket) *data.TimeBucket {
	var peak *data.TimeBucket
	for i := range buckets {
		if peak == nil || buckets[i].Power > peak.Power {
			peak = &buckets[i]
		}
	}
	if peak == nil {
		return nil
	}
	b := *peak
	return &b
}

// peakDay returns the calendar day with the highest integrated energy,
// applying the trapezoidal integrator per day group.
func peakDay(readings []data.Reading) *data.PeakDay {
	if len(readings) == 0 {
		return nil
	}
	byDay := make(map[string][]data.Reading)
	for _, r := range readings {
		key := BucketKey(r.Timestamp, IntervalDay)
		byDay[key] = append(byDay[key], r)
	}

	var peak *data.PeakDay
	for day, group := range byDay {
		energy := IntegrateEnergy(group)
		if peak == nil || energy > peak.Energy || (energy == peak.Energy && day < peak.Date) {
			peak = &data.PeakDay{Date: day, Energy: energy}
		}
	}
	return peak
}

// SummaryLabel renders a period's human label, used by the report scheduler
// for sink metadata.
func SummaryLabel(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
