package anomaly

import (
	"testing"
	"time"

	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

func reading(volts, amps, temp *float64) data.Reading {
	return data.Reading{
		DeviceID:    "panel-001",
		Timestamp:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Voltage:     volts,
		Current:     amps,
		Temperature: temp,
	}
}

func TestCheck_NoHistoryNoAnomalies(t *testing.T) {
	d := NewDetector()
	curr := reading(data.Float(12.5), data.Float(2.0), data.Float(35.0))

	if got := d.Check(nil, curr); len(got) != 0 {
		t.Errorf("Expected no anomalies for a healthy first reading, got %d", len(got))
	}
}

func TestCheck_VoltageDrop(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name     string
		prev     float64
		curr     float64
		count    int
		severity data.AnomalySeverity
	}{
		{"drop within limit", 12.5, 11.0, 0, ""},
		{"drop exactly at limit", 14.0, 12.0, 0, ""},
		{"warning drop", 14.5, 11.3, 1, data.AnomalyWarning},
		{"critical drop", 18.0, 12.0, 1, data.AnomalyCritical},
		{"voltage rise ignored", 11.0, 14.5, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := reading(data.Float(tt.prev), nil, nil)
			curr := reading(data.Float(tt.curr), nil, nil)

			got := d.Check(&prev, curr)
			if len(got) != tt.count {
				t.Fatalf("Expected %d anomalies, got %d", tt.count, len(got))
			}
			if tt.count == 0 {
				return
			}
			a := got[0]
			if a.Type != data.AnomalyVoltageDrop {
				t.Errorf("Expected voltage drop anomaly, got %s", a.Type)
			}
			if a.Severity != tt.severity {
				t.Errorf("Expected severity %s, got %s", tt.severity, a.Severity)
			}
			if a.Value != tt.curr {
				t.Errorf("Expected value %v, got %v", tt.curr, a.Value)
			}
			if a.PreviousValue == nil || *a.PreviousValue != tt.prev {
				t.Errorf("Expected previous value %v, got %v", tt.prev, a.PreviousValue)
			}
		})
	}
}

func TestCheck_VoltageDropSkippedWhenFieldMissing(t *testing.T) {
	d := NewDetector()
	prev := reading(nil, nil, nil)
	curr := reading(data.Float(8.0), nil, nil)

	if got := d.Check(&prev, curr); len(got) != 0 {
		t.Errorf("Expected no anomalies when previous voltage is absent, got %d", len(got))
	}
}

func TestCheck_ZeroCurrent(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name  string
		volts float64
		amps  float64
		count int
	}{
		{"voltage high and no current", 13.0, 0.0, 1},
		{"voltage high and trickle current", 13.0, 0.05, 1},
		{"voltage high and real current", 13.0, 1.5, 0},
		{"voltage low and no current", 11.0, 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := reading(data.Float(tt.volts), data.Float(tt.amps), nil)

			got := d.Check(nil, curr)
			if len(got) != tt.count {
				t.Fatalf("Expected %d anomalies, got %d", tt.count, len(got))
			}
			if tt.count == 1 {
				if got[0].Type != data.AnomalyZeroCurrent {
					t.Errorf("Expected zero current anomaly, got %s", got[0].Type)
				}
				if got[0].Severity != data.AnomalyWarning {
					t.Errorf("Expected warning severity, got %s", got[0].Severity)
				}
			}
		})
	}
}

func TestCheck_HighTemperature(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name     string
		temp     float64
		count    int
		severity data.AnomalySeverity
	}{
		{"normal temperature", 45.0, 0, ""},
		{"exactly at warning limit", 50.0, 0, ""},
		{"warning temperature", 55.0, 1, data.AnomalyWarning},
		{"critical temperature", 65.0, 1, data.AnomalyCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := reading(nil, nil, data.Float(tt.temp))

			got := d.Check(nil, curr)
			if len(got) != tt.count {
				t.Fatalf("Expected %d anomalies, got %d", tt.count, len(got))
			}
			if tt.count == 1 && got[0].Severity != tt.severity {
				t.Errorf("Expected severity %s, got %s", tt.severity, got[0].Severity)
			}
		})
	}
}

func TestCheck_MultipleAnomaliesInFixedOrder(t *testing.T) {
	d := NewDetector()
	prev := reading(data.Float(18.0), data.Float(2.0), nil)
	curr := reading(data.Float(12.5), data.Float(0.0), data.Float(62.0))

	got := d.Check(&prev, curr)
	if len(got) != 3 {
		t.Fatalf("Expected 3 anomalies, got %d", len(got))
	}
	expected := []data.AnomalyType{data.AnomalyVoltageDrop, data.AnomalyZeroCurrent, data.AnomalyHighTemperature}
	for i, want := range expected {
		if got[i].Type != want {
			t.Errorf("Expected %s at index %d, got %s", want, i, got[i].Type)
		}
	}
}
