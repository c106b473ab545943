// internal/data/parser.go
package data

import (
	"encoding/json"
	"fmt"
	"time"
)

// Physical bounds accepted at the ingest boundary. Values outside these are
// rejected here so the core never sees them; missing or non-numeric fields
// are simply left absent.
const (
	minVoltage, maxVoltage         = 0, 50
	minCurrent, maxCurrent         = 0, 30
	minTemperature, maxTemperature = -20, 100
	minPower, maxPower             = 0, 1500
	minBattery, maxBattery         = 0, 100
)

// Parse turns a raw device payload into a Reading. Field names are accepted
// in both snake_case and camelCase since devices in the field send both.
// Status and IsAnomaly are left zero-valued; the pipeline derives them.
func Parse(raw []byte, fallbackDeviceID string) (*Reading, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshalling payload: %w", err)
	}

	r := &Reading{
		DeviceID:  fallbackDeviceID,
		Timestamp: time.Now().UTC(),
	}

	if id := stringField(payload, "deviceId", "device_id", "sensor_id"); id != "" {
		r.DeviceID = id
	}
	if r.DeviceID == "" {
		return nil, fmt.Errorf("payload has no device id")
	}

	if ts, ok := timestampField(payload); ok {
		r.Timestamp = ts
	}

	var err error
	if r.Voltage, err = numericField(payload, "voltage", minVoltage, maxVoltage); err != nil {
		return nil, err
	}
	if r.Current, err = numericField(payload, "current", minCurrent, maxCurrent); err != nil {
		return nil, err
	}
	if r.Temperature, err = numericField(payload, "temperature", minTemperature, maxTemperature); err != nil {
		return nil, err
	}
	if r.Power, err = numericField(payload, "power", minPower, maxPower); err != nil {
		return nil, err
	}
	if r.BatteryLevel, err = numericField(payload, "batteryLevel", minBattery, maxBattery); err != nil {
		return nil, err
	}
	if r.BatteryLevel == nil {
		if r.BatteryLevel, err = numericField(payload, "battery_level", minBattery, maxBattery); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func stringField(payload map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// numericField extracts an optional numeric field. Absent or non-numeric
// values yield nil; numeric values outside [min,max] are a boundary error.
func numericField(payload map[string]interface{}, key string, min, max float64) (*float64, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	v, ok := raw.(float64)
	if !ok {
		// Non-numeric junk degrades to absent rather than failing the sample.
		return nil, nil
	}
	if v < min || v > max {
		return nil, fmt.Errorf("%s %.2f out of range [%.0f, %.0f]", key, v, min, max)
	}
	return &v, nil
}

func timestampField(payload map[string]interface{}) (time.Time, bool) {
	switch ts := payload["timestamp"].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t, true
		}
	case float64:
		// Unix seconds, the other format devices send.
		if ts > 0 {
			return time.Unix(int64(ts), 0).UTC(), true
		}
	}
	return time.Time{}, false
}
