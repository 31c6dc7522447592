package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/analytics"
	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/handler"
	"github.com/actuallystonmai/course-recommender/internal/service"
)

type fakeService struct{}

func (fakeService) Recommend(_ context.Context, in domain.Intent) (*domain.Result, error) {
	return &domain.Result{Strategy: in.Type, Query: in.Query}, nil
}

func (fakeService) GetBatchRecommendations(_ context.Context, page, limit int) (*domain.BatchResponse, error) {
	return &domain.BatchResponse{Page: page, Limit: limit}, nil
}

func (fakeService) Preferences(_ context.Context, email string) (*service.PreferencesView, error) {
	return &service.PreferencesView{Email: email}, nil
}

func (fakeService) UpdatePreferences(_ context.Context, email string, _ service.PreferencesInput) (*service.PreferencesView, error) {
	return &service.PreferencesView{Email: email}, nil
}

func (fakeService) Favorites(context.Context, string) ([]domain.Course, error) { return nil, nil }

func (fakeService) SetFavorite(context.Context, string, int64, bool) error { return nil }

func (fakeService) AddInteraction(context.Context, domain.Interaction) error { return nil }

func (fakeService) Dashboard(context.Context) (*analytics.Dashboard, error) {
	return &analytics.Dashboard{}, nil
}

func (fakeService) ReloadCatalog(context.Context) (*service.ReloadResult, error) {
	return &service.ReloadResult{}, nil
}

func (fakeService) Health() service.Health { return service.Health{Status: "ok"} }

func newRouter(opts Options) http.Handler {
	return Setup(handler.NewHandler(fakeService{}), opts)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	r := newRouter(Options{})

	tests := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/", `{"query":"python"}`, http.StatusOK},
		{http.MethodGet, "/search?q=python", "", http.StatusOK},
		{http.MethodPost, "/search", `{"query":"python"}`, http.StatusOK},
		{http.MethodGet, "/courses/similar?title=Excel", "", http.StatusOK},
		{http.MethodGet, "/recommendations?user_id=u1", "", http.StatusOK},
		{http.MethodGet, "/recommendations/personalized?email=a@example.com", "", http.StatusOK},
		{http.MethodGet, "/recommendations/collaborative?user_id=u1&model=svd", "", http.StatusOK},
		{http.MethodGet, "/recommendations/hybrid?user_id=u1", "", http.StatusOK},
		{http.MethodGet, "/recommendations/trending", "", http.StatusOK},
		{http.MethodGet, "/recommendations/batch", "", http.StatusOK},
		{http.MethodGet, "/user/preferences?email=a@example.com", "", http.StatusOK},
		{http.MethodGet, "/user/favorites?email=a@example.com", "", http.StatusOK},
		{http.MethodPost, "/interactions", `{"user_id":"u1","course_id":1,"rating":5}`, http.StatusCreated},
		{http.MethodGet, "/dashboard", "", http.StatusOK},
		{http.MethodPost, "/admin/catalog/reload", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
		{http.MethodDelete, "/interactions", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := do(r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newRouter(Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = do(r, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	r := newRouter(Options{RateLimit: 2})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/recommendations/trending", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/recommendations/trending", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code, "health is not rate limited")
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(Options{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
