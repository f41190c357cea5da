package processor

import (
	"context"
	"fmt"

	"homehero/pkg/logger"

	"github.com/robfig/cron/v3"
)

// KeyRefresher перечитывает сертификаты провайдера идентификации
type KeyRefresher interface {
	Refresh(ctx context.Context) error
}

// GaugeRefresher пересчитывает количество документов по коллекциям
type GaugeRefresher interface {
	RefreshDocumentGauges(ctx context.Context) error
}

type CronScheduler struct {
	cron  *cron.Cron
	keys  KeyRefresher
	stats GaugeRefresher
}

func NewCronScheduler(keys KeyRefresher, stats GaugeRefresher) *CronScheduler {
	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)

	return &CronScheduler{
		cron:  c,
		keys:  keys,
		stats: stats,
	}
}

// Start регистрирует задачи и сразу выполняет обе один раз.
// Ошибки первого запуска только логируются: сервис поднимается и без них.
func (s *CronScheduler) Start(ctx context.Context, keysSchedule, statsSchedule string) error {
	if _, err := s.cron.AddFunc(keysSchedule, func() { s.refreshKeys(ctx) }); err != nil {
		return fmt.Errorf("invalid keys schedule %q: %w", keysSchedule, err)
	}
	if _, err := s.cron.AddFunc(statsSchedule, func() { s.refreshGauges(ctx) }); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", statsSchedule, err)
	}

	s.cron.Start()
	logger.Info().
		Str("keys_schedule", keysSchedule).
		Str("stats_schedule", statsSchedule).
		Msg("Cron scheduler started")

	s.refreshKeys(ctx)
	s.refreshGauges(ctx)

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

func (s *CronScheduler) refreshKeys(ctx context.Context) {
	if err := s.keys.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to refresh identity certificates")
		return
	}
	logger.Debug().Msg("Identity certificates refreshed")
}

func (s *CronScheduler) refreshGauges(ctx context.Context) {
	if err := s.stats.RefreshDocumentGauges(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to refresh document gauges")
		return
	}
	logger.Debug().Msg("Document gauges refreshed")
}

// cronLogger направляет журнал robfig/cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
