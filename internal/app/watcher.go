package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unimeet/scheduler/internal/model"
	"github.com/unimeet/scheduler/internal/service"
)

// EventLister выборка событий по статусу для фонового воркера
type EventLister interface {
	GetByStatus(ctx context.Context, status model.EventStatus) ([]*model.Event, error)
}

// Watcher фоновый воркер: периодически подбирает события в статусе
// SCHEDULING с включённым автозапуском и прогоняет для них матчинг
type Watcher struct {
	events   EventLister
	matcher  *service.MatchingService
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewWatcher создаёт новый фоновый воркер
func NewWatcher(events EventLister, matcher *service.MatchingService, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		events:   events,
		matcher:  matcher,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает цикл воркера
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("Starting scheduling watcher", zap.Duration("interval", w.interval))
	go w.loop(ctx)
}

// Stop останавливает воркер
func (w *Watcher) Stop() {
	w.logger.Info("Stopping scheduling watcher")
	close(w.stopChan)
}

func (w *Watcher) loop(ctx context.Context) {
	// Первый проход сразу при старте
	w.runPending(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runPending(ctx)
		case <-w.stopChan:
			w.logger.Info("Scheduling watcher stopped")
			return
		case <-ctx.Done():
			w.logger.Info("Scheduling watcher cancelled")
			return
		}
	}
}

// runPending прогоняет матчинг для всех событий, ждущих автозапуска
func (w *Watcher) runPending(ctx context.Context) {
	events, err := w.events.GetByStatus(ctx, model.EventStatusScheduling)
	if err != nil {
		w.logger.Error("Failed to list scheduling events", zap.Error(err))
		return
	}

	for _, event := range events {
		if !event.AutoRun {
			continue
		}

		run, _, err := w.matcher.RunScheduler(ctx, event.ID)
		if err != nil {
			w.logger.Error("Automatic scheduler run failed",
				zap.Int64("event_id", event.ID),
				zap.Error(err))
			continue
		}

		w.logger.Info("Automatic scheduler run completed",
			zap.Int64("event_id", event.ID),
			zap.Int64("run_id", run.RunID),
			zap.Int("meetings", run.MeetingCount))
	}
}
