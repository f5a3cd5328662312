package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MiddlewareLogger пишет одну запись на каждый запрос: путь, метод, длительность, статус и размер ответа.
func MiddlewareLogger(sugar *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		sugar.Infow("Request",
			"uri", ctx.Request.URL.Path,
			"method", ctx.Request.Method,
			"duration", time.Since(start),
			"status", ctx.Writer.Status(),
			"size", max(ctx.Writer.Size(), 0),
		)
	}
}
