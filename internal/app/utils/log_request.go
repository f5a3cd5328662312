package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LogRequest пишет в debug, какой эндпоинт вызван.
func LogRequest(c *gin.Context, logger *zap.SugaredLogger) {
	logger.Debugw("Endpoint called",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
	)
}
