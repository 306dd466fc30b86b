package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ads-board/internal/infrastructure/metrics"
	"ads-board/internal/repository"
	"ads-board/internal/service"
	"ads-board/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	reg := prometheus.NewRegistry()
	repo := repository.NewJSONFileAdRepository(afero.NewMemMapFs(), "/ads.json", metrics.NewRepositoryMetrics(reg))
	svc := service.NewAdService(repo, metrics.NewServiceMetrics(reg), 1<<20)

	r := chi.NewRouter()
	SetupAdRoutes(r, svc, logger.Discard(), metrics.NewHandlerMetrics(reg, reg), Options{
		MaxImageBytes:  1 << 20,
		AllowedOrigins: []string{"https://board.example.com"},
	})
	return r
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/api/ads", "", http.StatusOK},
		{http.MethodGet, "/api/categories", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodPost, "/api/ads", `{"title":"t","category":"Books","description":"d","contact":"c"}`, http.StatusCreated},
		{http.MethodDelete, "/api/ads", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRoutes_PostedAdIsListed(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ads",
		strings.NewReader(`{"title":"Road bike","category":"Sports","description":"Carbon","contact":"bob@example.com"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ads?category=Sports&q=bike", nil))
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "ads_submitted_total 1")
}

func TestRoutes_CORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/ads", nil)
	req.Header.Set("Origin", "https://board.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://board.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
