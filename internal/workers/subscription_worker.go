package workers

import (
	"context"
	"fmt"
	"sync"

	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/metrics"
	"contentgen_backend/internal/models"
	"contentgen_backend/internal/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const subscriptionStatsWorker = "subscription_stats"

// SubscriptionWorker периодически пересчитывает число пользователей
// по статусам подписки и публикует их в метриках.
type SubscriptionWorker struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	metrics  *metrics.Metrics
	spec     string

	cron     *cron.Cron
	stopOnce sync.Once
}

func NewSubscriptionWorker(db *gorm.DB, userRepo repositories.UserRepository, m *metrics.Metrics, spec string) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:       db,
		userRepo: userRepo,
		metrics:  m,
		spec:     spec,
		cron:     cron.New(),
	}
}

// Start выполняет первый пересчет сразу и ставит задачу в расписание.
// Остановка - по отмене ctx или через Stop.
func (w *SubscriptionWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.spec, func() {
		_ = w.RefreshStats(ctx)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", w.spec, err)
	}

	_ = w.RefreshStats(ctx)
	w.cron.Start()
	logger.Info("Subscription worker started", "schedule", w.spec)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop ждет завершения запущенной задачи
func (w *SubscriptionWorker) Stop() {
	w.stopOnce.Do(func() {
		<-w.cron.Stop().Done()
		logger.Info("Subscription worker stopped")
	})
}

// RefreshStats - один проход пересчета
func (w *SubscriptionWorker) RefreshStats(ctx context.Context) error {
	counts, err := w.userRepo.CountBySubscriptionStatus(w.db.WithContext(ctx))
	if err != nil {
		logger.WorkerLog(subscriptionStatsWorker, "count", err)
		return err
	}

	for _, status := range models.AllSubscriptionStatuses {
		w.metrics.SetSubscriptions(string(status), counts[status])
	}
	logger.WorkerLog(subscriptionStatsWorker, "count", nil)
	return nil
}
