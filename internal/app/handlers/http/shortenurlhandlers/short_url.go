// Package shortenurlhandlers содержит HTTP-хендлеры для создания и открытия коротких ссылок.
package shortenurlhandlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const serverErrorMessage = "Server error"

// buildShortURL склеивает базовый адрес и код.
// Без baseAddress адрес берётся из запроса: схема (с учётом X-Forwarded-Proto) и Host.
func buildShortURL(c *gin.Context, baseAddress, code string) string {
	base := strings.TrimRight(baseAddress, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/" + code
}
