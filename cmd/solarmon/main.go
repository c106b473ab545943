// cmd/solarmon/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "solarmon",
	Short: "Solar Monitoring System - telemetry ingestion, alerting and reporting",
	Long: `solarmon ingests electrical telemetry from remote solar-monitoring devices,
evaluates it against configurable thresholds to raise alerts, and produces
aggregated reports for operators.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, logger, nil
}

// openStorage builds the configured repository backend. The returned close
// function is a no-op for the memory store.
func openStorage(cfg *config.Config, logger *zap.Logger) (storage.ReadingRepository, storage.AlertRepository, func() error, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := storage.NewPostgresStore(cfg.Storage.PostgresDSN, cfg.Storage.BatchSize)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("using postgres storage")
		return store, store, store.Close, nil
	default:
		store := storage.NewMemoryStore(cfg.Storage.MemoryCap)
		logger.Info("using in-memory storage", zap.Int("capacity", cfg.Storage.MemoryCap))
		return store, store, func() error { return nil }, nil
	}
}
