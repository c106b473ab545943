// internal/report/scheduler.go
package report

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
	"github.com/Sethnnections/solar-monitoring-system/internal/processor"
	"github.com/Sethnnections/solar-monitoring-system/internal/storage"
)

// Sink renders a period summary into whatever operators consume (email, PDF,
// spreadsheet). The scheduler only builds the value object and hands it over.
type Sink interface {
	Deliver(ctx context.Context, report *data.PeriodSummaryReport) error
}

// LogSink is the default sink: it logs the headline numbers. Deployments
// plug in a real renderer.
type LogSink struct {
	Logger *zap.Logger
}

func (s *LogSink) Deliver(_ context.Context, report *data.PeriodSummaryReport) error {
	s.Logger.Info("period summary",
		zap.String("device", report.DeviceID),
		zap.String("period", processor.SummaryLabel(report.PeriodStart, report.PeriodEnd)),
		zap.Float64("totalEnergyKWh", report.Summary.TotalEnergy),
		zap.Float64("efficiencyPct", report.Summary.Efficiency),
		zap.Int("dataPoints", report.Summary.DataPoints),
		zap.Int("recommendations", len(report.Recommendations)))
	return nil
}

// Scheduler generates daily and weekly summaries for every known device on
// cron schedules. Generation failures are logged and never fatal.
type Scheduler struct {
	readings   storage.ReadingRepository
	sink       Sink
	thresholds config.ThresholdConfig
	cron       *cron.Cron
	logger     *zap.Logger
}

func NewScheduler(readings storage.ReadingRepository, sink Sink, thresholds config.ThresholdConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		readings:   readings,
		sink:       sink,
		thresholds: thresholds,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start registers the daily and weekly jobs and starts the cron loop.
func (s *Scheduler) Start(cfg config.ReportConfig) error {
	if _, err := s.cron.AddFunc(cfg.DailySpec, func() { s.runPeriod(24 * time.Hour) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cfg.WeeklySpec, func() { s.runPeriod(7 * 24 * time.Hour) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("report scheduler started",
		zap.String("daily", cfg.DailySpec), zap.String("weekly", cfg.WeeklySpec))
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runPeriod(span time.Duration) {
	end := time.Now().UTC()
	start := end.Add(-span)
	if err := s.Generate(context.Background(), start, end); err != nil {
		s.logger.Error("report generation failed", zap.Error(err))
	}
}

// Generate builds and delivers a summary for every device with readings in
// the period. Per-device failures are logged so one bad device cannot block
// the rest; only a failed device listing is an error.
func (s *Scheduler) Generate(ctx context.Context, start, end time.Time) error {
	devices, err := s.readings.DeviceIDs(ctx)
	if err != nil {
		return err
	}

	for _, deviceID := range devices {
		readings, err := s.readings.GetRange(ctx, deviceID, start, end)
		if err != nil {
			s.logger.Error("loading readings for report",
				zap.String("device", deviceID), zap.Error(err))
			continue
		}
		if len(readings) == 0 {
			continue
		}

		summary := processor.BuildPeriodSummary(deviceID, readings, start, end, s.thresholds)
		if err := s.sink.Deliver(ctx, summary); err != nil {
			s.logger.Error("delivering report",
				zap.String("device", deviceID), zap.Error(err))
		}
	}
	return nil
}
