package processor

import (
	"testing"
	"time"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

func TestBucketKey(t *testing.T) {
	ts := time.Date(2026, 3, 9, 14, 37, 12, 0, time.UTC)

	tests := []struct {
		interval Interval
		expected string
	}{
		{IntervalHour, "2026-03-09 14:00"},
		{IntervalDay, "2026-03-09"},
		{IntervalWeek, "2026-W11"},
	}
	for _, tt := range tests {
		if got := BucketKey(ts, tt.interval); got != tt.expected {
			t.Errorf("Expected key %q for %s, got %q", tt.expected, tt.interval, got)
		}
	}
}

func TestParseInterval(t *testing.T) {
	if got := ParseInterval("day"); got != IntervalDay {
		t.Errorf("Expected day, got %q", got)
	}
	if got := ParseInterval(""); got != IntervalHour {
		t.Errorf("Expected hour default, got %q", got)
	}
	if got := ParseInterval("bogus"); got != IntervalHour {
		t.Errorf("Expected hour for unknown selector, got %q", got)
	}
}

func TestAggregateBuckets_SameHourAverage(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 5, 0, 0, time.UTC)
	readings := []data.Reading{
		{DeviceID: "panel-001", Timestamp: base, Voltage: data.Float(12.0)},
		{DeviceID: "panel-001", Timestamp: base.Add(20 * time.Minute), Voltage: data.Float(13.0)},
	}

	buckets := AggregateBuckets(readings, IntervalHour)
	if len(buckets) != 1 {
		t.Fatalf("Expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Voltage != 12.5 {
		t.Errorf("Expected average voltage 12.5, got %v", buckets[0].Voltage)
	}
	if buckets[0].Readings != 2 {
		t.Errorf("Expected readings count 2, got %d", buckets[0].Readings)
	}
}

func TestAggregateBuckets_SortedAscending(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	readings := []data.Reading{
		{DeviceID: "panel-001", Timestamp: base.Add(3 * time.Hour), Voltage: data.Float(13.0)},
		{DeviceID: "panel-001", Timestamp: base, Voltage: data.Float(12.0)},
		{DeviceID: "panel-001", Timestamp: base.Add(1 * time.Hour), Voltage: data.Float(12.5)},
	}

	buckets := AggregateBuckets(readings, IntervalHour)
	if len(buckets) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i-1].Timestamp >= buckets[i].Timestamp {
			t.Errorf("Expected ascending keys, got %q before %q", buckets[i-1].Timestamp, buckets[i].Timestamp)
		}
	}
}

func TestAggregateBuckets_MissingFieldExcludedFromMeanOnly(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	readings := []data.Reading{
		{DeviceID: "panel-001", Timestamp: base, Voltage: data.Float(12.0), Temperature: data.Float(30.0)},
		{DeviceID: "panel-001", Timestamp: base.Add(time.Minute), Voltage: data.Float(14.0)}, // no temperature
	}

	buckets := AggregateBuckets(readings, IntervalHour)
	if len(buckets) != 1 {
		t.Fatalf("Expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Voltage != 13.0 {
		t.Errorf("Expected voltage mean 13.0 over both, got %v", buckets[0].Voltage)
	}
	if buckets[0].Temperature != 30.0 {
		t.Errorf("Expected temperature mean 30.0 over the single sample, got %v", buckets[0].Temperature)
	}
}

func TestAggregateBuckets_ReadingsCountIsVoltageSamples(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	readings := []data.Reading{
		{DeviceID: "panel-001", Timestamp: base, Voltage: data.Float(12.0)},
		{DeviceID: "panel-001", Timestamp: base.Add(time.Minute), Temperature: data.Float(30.0)}, // no voltage
	}

	buckets := AggregateBuckets(readings, IntervalHour)
	if buckets[0].Readings != 1 {
		t.Errorf("Expected readings count 1 (voltage samples only), got %d", buckets[0].Readings)
	}
}

func TestAggregateBuckets_DayGrouping(t *testing.T) {
	readings := []data.Reading{
		{DeviceID: "panel-001", Timestamp: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), Voltage: data.Float(12.0)},
		{DeviceID: "panel-001", Timestamp: time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC), Voltage: data.Float(13.0)},
		{DeviceID: "panel-001", Timestamp: time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC), Voltage: data.Float(11.0)},
	}

	buckets := AggregateBuckets(readings, IntervalDay)
	if len(buckets) != 2 {
		t.Fatalf("Expected 2 day buckets, got %d", len(buckets))
	}
	if buckets[0].Timestamp != "2026-06-01" || buckets[0].Voltage != 12.5 {
		t.Errorf("Expected 2026-06-01 avg 12.5, got %q avg %v", buckets[0].Timestamp, buckets[0].Voltage)
	}
	if buckets[1].Timestamp != "2026-06-02" || buckets[1].Voltage != 11.0 {
		t.Errorf("Expected 2026-06-02 avg 11.0, got %q avg %v", buckets[1].Timestamp, buckets[1].Voltage)
	}
}

func TestAggregateBuckets_Empty(t *testing.T) {
	buckets := AggregateBuckets(nil, IntervalHour)
	if len(buckets) != 0 {
		t.Errorf("Expected no buckets, got %d", len(buckets))
	}
}
