// Package middleware содержит Gin-middleware сервиса: логирование запросов,
// gzip и CORS.
package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// gzipWriter включает сжатие при первой записи тела.
// Ответы без тела и ответы с уже отправленными заголовками уходят как есть.
type gzipWriter struct {
	gin.ResponseWriter
	writer      *gzip.Writer
	passthrough bool
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	if g.writer == nil && !g.passthrough {
		if g.ResponseWriter.Written() {
			g.passthrough = true
		} else {
			g.Header().Del("Content-Length")
			g.Header().Set("Content-Encoding", "gzip")
			g.writer = gzip.NewWriter(g.ResponseWriter)
		}
	}
	if g.passthrough {
		return g.ResponseWriter.Write(data)
	}
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipWriter) close() error {
	if g.writer == nil {
		return nil
	}
	return g.writer.Close()
}

// GzipMiddleware возвращает Gin-middleware, который:
//  1. распаковывает тело запроса с заголовком Content-Encoding: gzip;
//  2. сжимает ответ, если клиент прислал Accept-Encoding: gzip.
func GzipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Content-Encoding") == "gzip" {
			reader, err := gzip.NewReader(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid gzip body"})
				return
			}
			defer reader.Close()
			c.Request.Body = io.NopCloser(reader)
			c.Request.Header.Del("Content-Encoding")
			c.Request.ContentLength = -1
		}

		if c.Request.Method == http.MethodHead || !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		original := c.Writer
		gw := &gzipWriter{ResponseWriter: original}
		c.Writer = gw
		c.Header("Vary", "Accept-Encoding")

		c.Next()

		gw.close()
		c.Writer = original
	}
}
