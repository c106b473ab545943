// internal/processor/buckets.go
package processor

import (
	"fmt"
	"sort"
	"time"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

// Interval selects the width of an aggregation bucket.
type Interval string

const (
	IntervalHour Interval = "hour"
	IntervalDay  Interval = "day"
	IntervalWeek Interval = "week"
)

// ParseInterval maps a query-string value to an Interval, defaulting to hour.
func ParseInterval(s string) Interval {
	switch Interval(s) {
	case IntervalDay:
		return IntervalDay
	case IntervalWeek:
		return IntervalWeek
	default:
		return IntervalHour
	}
}

// BucketKey derives the deterministic grouping key for a timestamp. Key
// formats sort lexically in chronological order.
func BucketKey(t time.Time, interval Interval) string {
	switch interval {
	case IntervalDay:
		return t.Format("2006-01-02")
	case IntervalWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01-02 15:00")
	}
}

// bucketAccumulator collects per-field sums for one bucket. Readings missing
// a field are excluded from that field's mean only, not from the bucket.
type bucketAccumulator struct {
	voltageSum, currentSum, temperatureSum, powerSum float64
	voltageN, currentN, temperatureN, powerN         int
}

// AggregateBuckets groups readings into fixed intervals and computes the
// arithmetic mean of each sensor field over the readings that have it. The
// result is sorted ascending by bucket key. The Readings count is the number
// of voltage samples in the bucket, used downstream as a completeness proxy.
func AggregateBuckets(readings []data.Reading, interval Interval) []data.TimeBucket {
	groups := make(map[string]*bucketAccumulator)
	for _, r := range readings {
		key := BucketKey(r.Timestamp, interval)
		acc := groups[key]
		if acc == nil {
			acc = &bucketAccumulator{}
			groups[key] = acc
		}
		if r.Voltage != nil {
			acc.voltageSum += *r.Voltage
			acc.voltageN++
		}
		if r.Current != nil {
			acc.currentSum += *r.Current
			acc.currentN++
		}
		if r.Temperature != nil {
			acc.temperatureSum += *r.Temperature
			acc.temperatureN++
		}
		if p, ok := effectivePower(r); ok {
			acc.powerSum += p
			acc.powerN++
		}
	}

	buckets := make([]data.TimeBucket, 0, len(groups))
	for key, acc := range groups {
		buckets = append(buckets, data.TimeBucket{
			Timestamp:   key,
			Voltage:     mean(acc.voltageSum, acc.voltageN, 2),
			Current:     mean(acc.currentSum, acc.currentN, 3),
			Temperature: mean(acc.temperatureSum, acc.temperatureN, 1),
			Power:       mean(acc.powerSum, acc.powerN, 2),
			Readings:    acc.voltageN,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp < buckets[j].Timestamp
	})
	return buckets
}

func mean(sum float64, n int, places int) float64 {
	if n == 0 {
		return 0
	}
	return roundTo(sum/float64(n), places)
}
