// internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full application configuration, loaded once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Reports   ReportConfig    `mapstructure:"reports"`
	Threshold ThresholdConfig `mapstructure:"thresholds"`
	LogLevel  string          `mapstructure:"log_level"`
}

type ServerConfig struct {
	DataPort int `mapstructure:"data_port"`
	UIPort   int `mapstructure:"ui_port"`
}

type AuthConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	JWTExpiration int      `mapstructure:"jwt_expiration"` // minutes
	APIKeys       []string `mapstructure:"api_keys"`
	Users         []User   `mapstructure:"users"`
}

type User struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // "memory" or "postgres"
	PostgresDSN string `mapstructure:"postgres_dsn"`
	BatchSize   int    `mapstructure:"batch_size"`
	MemoryCap   int    `mapstructure:"memory_cap"` // readings kept per device by the memory store
}

type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Topic    string `mapstructure:"topic"`
}

type ReportConfig struct {
	DailySpec  string `mapstructure:"daily_spec"`  // cron spec for the daily summary
	WeeklySpec string `mapstructure:"weekly_spec"` // cron spec for the weekly summary
}

// ThresholdConfig carries the alert thresholds and nominal operating values
// for one evaluation call. It is always passed by value; evaluators never
// read thresholds from ambient state.
type ThresholdConfig struct {
	VoltageLowPct      float64 `mapstructure:"voltage_low_pct"`      // % of nominal voltage
	VoltageCriticalPct float64 `mapstructure:"voltage_critical_pct"` // % of nominal voltage
	CurrentLowPct      float64 `mapstructure:"current_low_pct"`      // % of nominal current
	TemperatureHighC   float64 `mapstructure:"temperature_high_c"`   // absolute °C
	NominalVoltage     float64 `mapstructure:"nominal_voltage"`
	NominalCurrent     float64 `mapstructure:"nominal_current"`
	RatedPowerW        float64 `mapstructure:"rated_power_w"` // fixed capacity assumption for efficiency
	PeakSunHours       float64 `mapstructure:"peak_sun_hours"`
}

// DefaultThresholds returns the documented fallback thresholds, used whenever
// the config source does not supply a value.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		VoltageLowPct:      20,
		VoltageCriticalPct: 10,
		CurrentLowPct:      15,
		TemperatureHighC:   60,
		NominalVoltage:     12,
		NominalCurrent:     5,
		RatedPowerW:        100,
		PeakSunHours:       5,
	}
}

// Load reads config.yaml from the given directory, falling back to defaults
// for anything missing. A missing file is not an error; the defaults are a
// complete working configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("SOLARMON")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.data_port", 8080)
	v.SetDefault("server.ui_port", 8081)
	v.SetDefault("log_level", "info")

	v.SetDefault("auth.jwt_expiration", 60)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.batch_size", 1000)
	v.SetDefault("storage.memory_cap", 10000)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "solarmon-ingest")
	v.SetDefault("mqtt.topic", "telemetry/+/readings")

	v.SetDefault("reports.daily_spec", "5 0 * * *")
	v.SetDefault("reports.weekly_spec", "15 0 * * 1")

	def := DefaultThresholds()
	v.SetDefault("thresholds.voltage_low_pct", def.VoltageLowPct)
	v.SetDefault("thresholds.voltage_critical_pct", def.VoltageCriticalPct)
	v.SetDefault("thresholds.current_low_pct", def.CurrentLowPct)
	v.SetDefault("thresholds.temperature_high_c", def.TemperatureHighC)
	v.SetDefault("thresholds.nominal_voltage", def.NominalVoltage)
	v.SetDefault("thresholds.nominal_current", def.NominalCurrent)
	v.SetDefault("thresholds.rated_power_w", def.RatedPowerW)
	v.SetDefault("thresholds.peak_sun_hours", def.PeakSunHours)
}
