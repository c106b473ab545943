package alerting

import (
	"testing"
	"time"

	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
)

func readingAt(hour int) data.Reading {
	return data.Reading{
		DeviceID:  "panel-001",
		Timestamp: time.Date(2026, 6, 1, hour, 30, 0, 0, time.UTC),
	}
}

func TestEvaluate_VoltageTiers(t *testing.T) {
	th := config.DefaultThresholds() // nominal 12V: critical <1.2V, low <2.4V, soft <9.6V

	tests := []struct {
		name     string
		volts    float64
		count    int
		severity data.Severity
	}{
		{"healthy voltage", 12.5, 0, ""},
		{"below soft floor", 9.0, 1, data.SeverityMedium},
		{"below low threshold", 2.0, 1, data.SeverityHigh},
		{"below critical threshold", 1.0, 1, data.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := readingAt(12)
			curr.Voltage = data.Float(tt.volts)

			alerts := Evaluate(curr, nil, th)
			if len(alerts) != tt.count {
				t.Fatalf("Expected %d alerts, got %d", tt.count, len(alerts))
			}
			if tt.count == 0 {
				return
			}
			a := alerts[0]
			if a.Type != data.AlertVoltageDrop {
				t.Errorf("Expected voltage drop alert, got %s", a.Type)
			}
			if a.Severity != tt.severity {
				t.Errorf("Expected severity %s, got %s", tt.severity, a.Severity)
			}
			if a.Severity.AtLeast(data.SeverityHigh) && !a.ActionRequired {
				t.Error("Expected action required on high and critical voltage alerts")
			}
		})
	}
}

func TestEvaluate_LowCurrentAndDaylightFaultBothFire(t *testing.T) {
	th := config.DefaultThresholds() // nominal 5A, low <0.75A
	curr := readingAt(12)
	curr.Current = data.Float(0.0)

	alerts := Evaluate(curr, nil, th)
	if len(alerts) != 2 {
		t.Fatalf("Expected both current alerts at noon, got %d", len(alerts))
	}
	if alerts[0].Type != data.AlertCurrentAnomaly || alerts[0].Severity != data.SeverityHigh {
		t.Errorf("Expected high current anomaly first, got %s/%s", alerts[0].Type, alerts[0].Severity)
	}
	if alerts[1].Type != data.AlertPanelFault || alerts[1].Severity != data.SeverityMedium {
		t.Errorf("Expected medium panel fault second, got %s/%s", alerts[1].Type, alerts[1].Severity)
	}
}

func TestEvaluate_ZeroCurrentAtNightOnlyLowCurrent(t *testing.T) {
	th := config.DefaultThresholds()
	curr := readingAt(22)
	curr.Current = data.Float(0.0)

	alerts := Evaluate(curr, nil, th)
	if len(alerts) != 1 {
		t.Fatalf("Expected only the low-current alert at night, got %d", len(alerts))
	}
	if alerts[0].Type != data.AlertCurrentAnomaly {
		t.Errorf("Expected current anomaly, got %s", alerts[0].Type)
	}
}

func TestEvaluate_DaylightWindowBounds(t *testing.T) {
	th := config.DefaultThresholds()

	tests := []struct {
		hour      int
		wantFault bool
	}{
		{7, false},
		{8, true},
		{16, true},
		{17, false},
	}
	for _, tt := range tests {
		curr := readingAt(tt.hour)
		curr.Current = data.Float(0.0)

		alerts := Evaluate(curr, nil, th)
		gotFault := false
		for _, a := range alerts {
			if a.Type == data.AlertPanelFault {
				gotFault = true
			}
		}
		if gotFault != tt.wantFault {
			t.Errorf("Expected panel fault=%v at hour %d, got %v", tt.wantFault, tt.hour, gotFault)
		}
	}
}

func TestEvaluate_TemperatureTiers(t *testing.T) {
	th := config.DefaultThresholds() // high >60, critical >70

	tests := []struct {
		name     string
		temp     float64
		count    int
		severity data.Severity
	}{
		{"normal temperature", 45.0, 0, ""},
		{"exactly at threshold", 60.0, 0, ""},
		{"high temperature", 65.0, 1, data.SeverityHigh},
		{"critical temperature", 75.0, 1, data.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := readingAt(12)
			curr.Temperature = data.Float(tt.temp)

			alerts := Evaluate(curr, nil, th)
			if len(alerts) != tt.count {
				t.Fatalf("Expected %d alerts, got %d", tt.count, len(alerts))
			}
			if tt.count == 1 && alerts[0].Severity != tt.severity {
				t.Errorf("Expected severity %s, got %s", tt.severity, alerts[0].Severity)
			}
		})
	}
}

func TestEvaluate_BatteryTiers(t *testing.T) {
	th := config.DefaultThresholds()

	tests := []struct {
		name     string
		level    float64
		count    int
		severity data.Severity
	}{
		{"healthy battery", 45.0, 0, ""},
		{"low battery", 15.0, 1, data.SeverityMedium},
		{"critical battery", 5.0, 1, data.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := readingAt(12)
			curr.BatteryLevel = data.Float(tt.level)

			alerts := Evaluate(curr, nil, th)
			if len(alerts) != tt.count {
				t.Fatalf("Expected %d alerts, got %d", tt.count, len(alerts))
			}
			if tt.count == 1 {
				if alerts[0].Type != data.AlertBatteryLow {
					t.Errorf("Expected battery low alert, got %s", alerts[0].Type)
				}
				if alerts[0].Severity != tt.severity {
					t.Errorf("Expected severity %s, got %s", tt.severity, alerts[0].Severity)
				}
			}
		})
	}
}

func TestEvaluate_CrossReading(t *testing.T) {
	th := config.DefaultThresholds()

	t.Run("sudden voltage drop", func(t *testing.T) {
		prev := readingAt(11)
		prev.Voltage = data.Float(14.0)
		curr := readingAt(12)
		curr.Voltage = data.Float(10.5)

		alerts := Evaluate(curr, &prev, th)
		// 10.5V is above the soft floor of 9.6V so only the cross check fires.
		if len(alerts) != 1 {
			t.Fatalf("Expected 1 alert, got %d", len(alerts))
		}
		if alerts[0].Type != data.AlertVoltageDrop || alerts[0].Severity != data.SeverityCritical {
			t.Errorf("Expected critical voltage drop, got %s/%s", alerts[0].Type, alerts[0].Severity)
		}
		if alerts[0].PreviousValue == nil || *alerts[0].PreviousValue != 14.0 {
			t.Errorf("Expected previous value 14.0, got %v", alerts[0].PreviousValue)
		}
	})

	t.Run("sudden temperature rise", func(t *testing.T) {
		prev := readingAt(11)
		prev.Temperature = data.Float(35.0)
		curr := readingAt(12)
		curr.Temperature = data.Float(48.0)

		alerts := Evaluate(curr, &prev, th)
		if len(alerts) != 1 {
			t.Fatalf("Expected 1 alert, got %d", len(alerts))
		}
		if alerts[0].Type != data.AlertTemperatureHigh || alerts[0].Severity != data.SeverityHigh {
			t.Errorf("Expected high temperature rise alert, got %s/%s", alerts[0].Type, alerts[0].Severity)
		}
	})

	t.Run("small changes stay quiet", func(t *testing.T) {
		prev := readingAt(11)
		prev.Voltage = data.Float(13.0)
		prev.Temperature = data.Float(35.0)
		curr := readingAt(12)
		curr.Voltage = data.Float(12.0)
		curr.Temperature = data.Float(40.0)

		if alerts := Evaluate(curr, &prev, th); len(alerts) != 0 {
			t.Errorf("Expected no alerts for gradual changes, got %d", len(alerts))
		}
	})
}

func TestEvaluate_MissingSensorsSkipped(t *testing.T) {
	th := config.DefaultThresholds()
	curr := readingAt(12)

	if alerts := Evaluate(curr, nil, th); len(alerts) != 0 {
		t.Errorf("Expected no alerts for a reading with no sensor fields, got %d", len(alerts))
	}
}

func TestEvaluate_CategoriesIndependent(t *testing.T) {
	th := config.DefaultThresholds()
	curr := readingAt(12)
	curr.Voltage = data.Float(1.0)
	curr.Current = data.Float(0.0)
	curr.Temperature = data.Float(75.0)
	curr.BatteryLevel = data.Float(5.0)

	alerts := Evaluate(curr, nil, th)
	if len(alerts) != 5 {
		t.Fatalf("Expected 5 alerts across all categories, got %d", len(alerts))
	}
	expected := []data.AlertType{
		data.AlertVoltageDrop,
		data.AlertCurrentAnomaly,
		data.AlertPanelFault,
		data.AlertTemperatureHigh,
		data.AlertBatteryLow,
	}
	for i, want := range expected {
		if alerts[i].Type != want {
			t.Errorf("Expected %s at index %d, got %s", want, i, alerts[i].Type)
		}
	}
}
