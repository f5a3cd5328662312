package shortenurlhandlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aseptimu/shortlink/internal/app/config"
	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/aseptimu/shortlink/internal/app/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShortenRequest - тело POST /shorten.
// CustomWord - прежнее имя поля alias, принимается для совместимости со старым клиентом.
type ShortenRequest struct {
	URL         string `json:"url"`
	CustomAlias string `json:"customAlias"`
	CustomWord  string `json:"customWord"`
}

// ShortenResponse - ответ POST /shorten.
type ShortenResponse struct {
	ShortURL   string `json:"shortUrl"`
	IsExisting bool   `json:"isExisting"`
	Updated    bool   `json:"updated,omitempty"`
}

// ShortenHandler обрабатывает создание коротких ссылок.
type ShortenHandler struct {
	cfg     *config.ConfigType
	service service.URLShortener
	logger  *zap.SugaredLogger
}

func NewShortenHandler(cfg *config.ConfigType, service service.URLShortener, logger *zap.SugaredLogger) *ShortenHandler {
	return &ShortenHandler{cfg: cfg, service: service, logger: logger}
}

// Shorten обрабатывает POST /shorten и POST /api/shorten.
// Принимает JSON {"url": "...", "customAlias": "..."} и отвечает {"shortUrl", "isExisting", "updated"}.
// Ошибки валидации и занятый alias дают 400, сбои хранилища 500.
func (h *ShortenHandler) Shorten(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	var req ShortenRequest
	if err = json.Unmarshal(body, &req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	alias := req.CustomAlias
	if alias == "" {
		alias = req.CustomWord
	}

	out, err := h.service.Shorten(c.Request.Context(), req.URL, alias)
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidAlias):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Custom alias can only contain letters, numbers, hyphens and underscores"})
		return
	case errors.Is(err, service.ErrAliasTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Custom alias is already in use"})
		return
	case err != nil:
		h.logger.Errorw("Failed to shorten URL", "url", req.URL, "alias", alias, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": serverErrorMessage})
		return
	}

	c.JSON(http.StatusOK, ShortenResponse{
		ShortURL:   buildShortURL(c, h.cfg.BaseAddress, out.Link.ShortCode),
		IsExisting: out.Kind != service.KindCreated,
		Updated:    out.Kind == service.KindUpdatedExisting,
	})
}
