// Package workers содержит фоновые горутины сервиса.
package workers

import (
	"context"
	"time"

	"github.com/aseptimu/shortlink/internal/app/service"
	"go.uber.org/zap"
)

// StartExpirySweeper запускает RunExpirySweeper в отдельной горутине.
// Возвращаемый канал закрывается после остановки воркера.
func StartExpirySweeper(ctx context.Context, interval time.Duration, purger service.ExpiredPurger, logger *zap.SugaredLogger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunExpirySweeper(ctx, interval, purger, logger)
	}()
	return done
}

// RunExpirySweeper раз в interval удаляет просроченные ссылки, пока ctx не отменён.
// Ошибка одного прохода не останавливает воркер.
func RunExpirySweeper(ctx context.Context, interval time.Duration, purger service.ExpiredPurger, logger *zap.SugaredLogger) {
	if interval <= 0 {
		logger.Warnw("Expiry sweeper disabled", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infow("Expiry sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			logger.Infow("Expiry sweeper stopping")
			return
		case <-ticker.C:
			removed, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Errorw("Failed to purge expired links", "error", err)
				continue
			}
			if removed > 0 {
				logger.Infow("Expired links purged", "removed", removed)
			}
		}
	}
}
