package shortenurlhandlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aseptimu/shortlink/internal/app/config"
	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/aseptimu/shortlink/internal/app/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// URLResolver возвращает исходный URL по короткому коду.
type URLResolver interface {
	Resolve(ctx context.Context, code string) (string, error)
}

// GetURLHandler перенаправляет на исходный URL.
type GetURLHandler struct {
	cfg     *config.ConfigType
	service URLResolver
	logger  *zap.SugaredLogger
}

func NewGetURLHandler(cfg *config.ConfigType, service URLResolver, logger *zap.SugaredLogger) *GetURLHandler {
	return &GetURLHandler{cfg: cfg, service: service, logger: logger}
}

// GetURL обрабатывает GET /:shortCode: 302 на исходный URL или 404.
func (h *GetURLHandler) GetURL(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	code := c.Param("shortCode")
	originalURL, err := h.service.Resolve(c.Request.Context(), code)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "URL not found"})
		return
	case err != nil:
		h.logger.Errorw("Failed to resolve short code", "code", code, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": serverErrorMessage})
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}
