package pushcleanupworker

import (
	baseworker "bpm-backend/lib/utils/base-worker"
	"bpm-backend/lib/utils/clock"
	"bpm-backend/lib/utils/helpers"
	pushdatastore "bpm-backend/lib/ws/push-store"
	"context"
	"time"
)

// StartWorker удаляет недоставленные ws-уведомления старше retention
func StartWorker(ctx context.Context, store pushdatastore.Provider, retention time.Duration) {
	i := newImpl(store, retention)
	go i.Run(ctx, i.handle)
}

func newImpl(store pushdatastore.Provider, retention time.Duration) *impl {
	return &impl{
		BaseImpl:  *baseworker.NewInstance("PushCleanupWorker", 30*time.Second, time.Hour),
		store:     store,
		retention: retention,
	}
}

type impl struct {
	baseworker.BaseImpl
	store     pushdatastore.Provider
	retention time.Duration
}

func (i impl) handle(ctx context.Context) {
	if helpers.IsContextDone(ctx) {
		return
	}
	logger := i.GetLogger()
	count, err := i.store.DeleteOlderThan(clock.Now().Add(-i.retention))
	if err != nil {
		logger.WithError(err).Error("Ошибка удаления устаревших уведомлений")
		return
	}
	if count > 0 {
		logger.WithField("count", count).Info("Удалены устаревшие уведомления")
	}
}
