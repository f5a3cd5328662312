// Package dbhandlers содержит HTTP-хендлеры для проверки доступности базы данных.
package dbhandlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger описывает ресурс, который можно «пингануть» (например, базу данных).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHandler обрабатывает HTTP-запросы /ping, проверяя Pinger.
type PingHandler struct {
	db     Pinger
	logger *zap.SugaredLogger
}

// NewPingHandler создаёт PingHandler. db может быть nil, если сервис работает без базы.
func NewPingHandler(db Pinger, logger *zap.SugaredLogger) *PingHandler {
	return &PingHandler{db: db, logger: logger}
}

// Ping обрабатывает GET /ping.
// Без базы отвечает 503, при ошибке пинга 500, иначе 200.
func (h *PingHandler) Ping(c *gin.Context) {
	if h.db == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Server doesn't use database"})
		return
	}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Errorw("Database ping failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database is unavailable"})
		return
	}
	c.Status(http.StatusOK)
}
