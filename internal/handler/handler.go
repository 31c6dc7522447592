// Package handler adapts HTTP requests to the recommendation service.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/course-recommender/internal/analytics"
	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/service"
)

const maxBodyBytes = 1 << 20

// Recommender is the part of *service.Service the HTTP layer depends on.
type Recommender interface {
	Recommend(ctx context.Context, in domain.Intent) (*domain.Result, error)
	GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error)
	Preferences(ctx context.Context, email string) (*service.PreferencesView, error)
	UpdatePreferences(ctx context.Context, email string, in service.PreferencesInput) (*service.PreferencesView, error)
	Favorites(ctx context.Context, email string) ([]domain.Course, error)
	SetFavorite(ctx context.Context, email string, courseID int64, favorite bool) error
	AddInteraction(ctx context.Context, in domain.Interaction) error
	Dashboard(ctx context.Context) (*analytics.Dashboard, error)
	ReloadCatalog(ctx context.Context) (*service.ReloadResult, error)
	Health() service.Health
}

type Handler struct {
	service Recommender
}

func NewHandler(svc Recommender) *Handler {
	return &Handler{service: svc}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("encode response")
	}
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "User does not exist")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	case errors.Is(err, domain.ErrDataUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("data unavailable")
		writeError(w, http.StatusServiceUnavailable, "data_unavailable", "A data store is temporarily unavailable")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// decodeJSON reads a single JSON object from the body into v and validates it.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("request body is not valid JSON")
	}
	return validateStruct(v)
}

// parseInt reads an optional integer query parameter within [lo, hi].
func parseInt(r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, false
	}
	return v, true
}
