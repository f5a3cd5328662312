package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aseptimu/shortlink/internal/app/config"
	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/aseptimu/shortlink/internal/app/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type shortenResult struct {
	ShortURL   string `json:"shortUrl"`
	IsExisting bool   `json:"isExisting"`
	Updated    bool   `json:"updated"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop().Sugar()
	cfg := &config.ConfigType{BaseAddress: "https://sho.rt"}
	svc := service.NewShortLinkService(store.NewInMemoryStore(), service.Options{}, logger)

	r := gin.New()
	New(cfg, svc, svc, nil, logger).RegisterRoutes(r)
	return r
}

func postShorten(t *testing.T, r *gin.Engine, path, body string) (*httptest.ResponseRecorder, shortenResult) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var res shortenResult
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	}
	return w, res
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoutes_FullFlow(t *testing.T) {
	r := newTestRouter(t)

	w, first := postShorten(t, r, "/shorten", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, first.IsExisting)
	assert.True(t, strings.HasPrefix(first.ShortURL, "https://sho.rt/"))
	assert.NotContains(t, w.Body.String(), "updated")
	oldCode := strings.TrimPrefix(first.ShortURL, "https://sho.rt/")

	w, second := postShorten(t, r, "/shorten", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, second.IsExisting)
	assert.Equal(t, first.ShortURL, second.ShortURL)

	w, updated := postShorten(t, r, "/shorten", `{"url":"https://example.com","customAlias":"mysite"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, shortenResult{ShortURL: "https://sho.rt/mysite", IsExisting: true, Updated: true}, updated)

	w = get(r, "/mysite")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))

	w = get(r, "/"+oldCode)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"URL not found"}`, w.Body.String())
}

func TestRoutes_LegacyEndpointAndField(t *testing.T) {
	r := newTestRouter(t)

	w, res := postShorten(t, r, "/api/shorten", `{"url":"https://example.org","customWord":"legacy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://sho.rt/legacy", res.ShortURL)
	assert.False(t, res.IsExisting)

	w = get(r, "/legacy")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.org", w.Header().Get("Location"))
}

func TestRoutes_AliasTaken(t *testing.T) {
	r := newTestRouter(t)

	w, _ := postShorten(t, r, "/shorten", `{"url":"https://a.example","customAlias":"mine"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = postShorten(t, r, "/shorten", `{"url":"https://b.example","customAlias":"mine"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Custom alias is already in use"}`, w.Body.String())
}

func TestRoutes_Ping(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/ping")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
