// Package http собирает маршруты сервиса.
package http

import (
	"github.com/aseptimu/shortlink/internal/app/config"
	"github.com/aseptimu/shortlink/internal/app/handlers/http/dbhandlers"
	"github.com/aseptimu/shortlink/internal/app/handlers/http/shortenurlhandlers"
	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers interface {
	RegisterRoutes(r *gin.Engine)
}

type handlersImpl struct {
	cfg       *config.ConfigType
	shortener service.URLShortener
	resolver  shortenurlhandlers.URLResolver
	pinger    dbhandlers.Pinger
	logger    *zap.SugaredLogger
}

// New собирает хендлеры. pinger может быть nil.
func New(
	cfg *config.ConfigType,
	shortener service.URLShortener,
	resolver shortenurlhandlers.URLResolver,
	pinger dbhandlers.Pinger,
	logger *zap.SugaredLogger,
) Handlers {
	return &handlersImpl{
		cfg:       cfg,
		shortener: shortener,
		resolver:  resolver,
		pinger:    pinger,
		logger:    logger,
	}
}

func (h *handlersImpl) RegisterRoutes(r *gin.Engine) {
	shorten := shortenurlhandlers.NewShortenHandler(h.cfg, h.shortener, h.logger)

	r.GET("/ping", dbhandlers.NewPingHandler(h.pinger, h.logger).Ping)
	r.POST("/shorten", shorten.Shorten)
	r.POST("/api/shorten", shorten.Shorten)
	r.GET("/:shortCode", shortenurlhandlers.NewGetURLHandler(h.cfg, h.resolver, h.logger).GetURL)
}
