// cmd/solarmon/cmd_serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sethnnections/solar-monitoring-system/internal/alerting"
	"github.com/Sethnnections/solar-monitoring-system/internal/anomaly"
	"github.com/Sethnnections/solar-monitoring-system/internal/api"
	"github.com/Sethnnections/solar-monitoring-system/internal/auth"
	"github.com/Sethnnections/solar-monitoring-system/internal/ingest"
	"github.com/Sethnnections/solar-monitoring-system/internal/pipeline"
	"github.com/Sethnnections/solar-monitoring-system/internal/report"
	"github.com/Sethnnections/solar-monitoring-system/internal/storage"
	"github.com/Sethnnections/solar-monitoring-system/internal/websocket"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitoring server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	readings, alerts, closeStore, err := openStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer closeStore()

	if pg, ok := readings.(*storage.PostgresStore); ok {
		if err := pg.Init(cmd.Context()); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	notifier := &alerting.LogNotifier{Logger: logger}
	alerter := alerting.NewAlerter(hub, notifier, alerts, logger)
	detector := anomaly.NewDetector()
	pipe := pipeline.New(readings, detector, alerter, hub, cfg.Threshold, logger)

	authManager := auth.NewManager(cfg.Auth)
	handler := api.NewAPIHandler(pipe, readings, alerts, hub, authManager, cfg.Threshold, logger)

	dataServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.DataPort),
		Handler: api.SetupDataRouter(handler),
	}
	dashboardServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.UIPort),
		Handler: api.SetupDashboardRouter(handler),
	}

	go func() {
		logger.Info("data server listening", zap.Int("port", cfg.Server.DataPort))
		if err := dataServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("data server failed", zap.Error(err))
		}
	}()
	go func() {
		logger.Info("dashboard server listening", zap.Int("port", cfg.Server.UIPort))
		if err := dashboardServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("dashboard server failed", zap.Error(err))
		}
	}()

	var mqttSource *ingest.MQTTSource
	if cfg.MQTT.Enabled {
		mqttSource = ingest.NewMQTTSource(cfg.MQTT, pipe, logger)
		if err := mqttSource.Start(); err != nil {
			return fmt.Errorf("starting mqtt ingest: %w", err)
		}
	}

	scheduler := report.NewScheduler(readings, &report.LogSink{Logger: logger}, cfg.Threshold, logger)
	if err := scheduler.Start(cfg.Reports); err != nil {
		return fmt.Errorf("starting report scheduler: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))

	scheduler.Stop()
	if mqttSource != nil {
		mqttSource.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dataServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("data server shutdown", zap.Error(err))
	}
	if err := dashboardServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard server shutdown", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}
