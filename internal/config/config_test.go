package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.DataPort != 8080 {
		t.Errorf("Expected data port 8080, got %d", cfg.Server.DataPort)
	}
	if cfg.Server.UIPort != 8081 {
		t.Errorf("Expected UI port 8081, got %d", cfg.Server.UIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %q", cfg.LogLevel)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Expected memory storage driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.BatchSize != 1000 {
		t.Errorf("Expected batch size 1000, got %d", cfg.Storage.BatchSize)
	}
	if cfg.MQTT.Enabled {
		t.Error("Expected MQTT disabled by default")
	}
	if cfg.MQTT.Topic != "telemetry/+/readings" {
		t.Errorf("Expected default MQTT topic, got %q", cfg.MQTT.Topic)
	}
	if cfg.Threshold != DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", cfg.Threshold)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  data_port: 9090
storage:
  driver: postgres
  postgres_dsn: "postgres://localhost/solar?sslmode=disable"
thresholds:
  temperature_high_c: 55
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.DataPort != 9090 {
		t.Errorf("Expected data port 9090, got %d", cfg.Server.DataPort)
	}
	if cfg.Server.UIPort != 8081 {
		t.Errorf("Expected default UI port 8081 to survive, got %d", cfg.Server.UIPort)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Threshold.TemperatureHighC != 55 {
		t.Errorf("Expected temperature threshold 55, got %v", cfg.Threshold.TemperatureHighC)
	}
	if cfg.Threshold.NominalVoltage != 12 {
		t.Errorf("Expected default nominal voltage 12, got %v", cfg.Threshold.NominalVoltage)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{{nope"), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Expected an error for a malformed config file")
	}
}
