package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

const (
	defaultRecLimit = 10
	maxRecLimit     = 50
)

type searchRequest struct {
	Query string `json:"query" validate:"required,max=200"`
	Limit int    `json:"limit" validate:"gte=0,lte=50"`
}

// GET|POST /search, POST /
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
			return
		}
	} else {
		req.Query = firstParam(r, "q", "query")
		limit, ok := parseInt(r, "limit", defaultRecLimit, 1, maxRecLimit)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		req.Limit = limit
	}

	h.recommend(w, r, domain.Intent{Type: domain.StrategySearch, Query: req.Query, Limit: req.Limit})
}

// GET /courses/similar?title=
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, domain.StrategySimilarity)
}

// GET /recommendations, /recommendations/personalized
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, domain.StrategyPersonalized)
}

// GET /recommendations/collaborative?user_id=&model=
func (h *Handler) Collaborative(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, domain.StrategyCollaborative)
}

// GET /recommendations/hybrid?user_id=
func (h *Handler) Hybrid(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, domain.StrategyHybrid)
}

// GET /recommendations/trending
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, domain.StrategyTrending)
}

// fromQuery builds an intent of the given type from query parameters.
func (h *Handler) fromQuery(w http.ResponseWriter, r *http.Request, typ domain.Strategy) {
	limit, ok := parseInt(r, "limit", defaultRecLimit, 1, maxRecLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	q := r.URL.Query()
	intent := domain.Intent{
		Type:   typ,
		UserID: strings.TrimSpace(q.Get("user_id")),
		Email:  strings.TrimSpace(q.Get("email")),
		Model:  strings.ToLower(strings.TrimSpace(q.Get("model"))),
		Limit:  limit,
	}
	if typ == domain.StrategySimilarity {
		intent.Query = firstParam(r, "title", "q")
	}
	h.recommend(w, r, intent)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, intent domain.Intent) {
	intent.Query = strings.TrimSpace(intent.Query)
	if err := validateStruct(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	result, err := h.service.Recommend(r.Context(), intent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		Success:         true,
		Strategy:        result.Strategy,
		Query:           result.Query,
		UserID:          intent.UserID,
		Email:           intent.Email,
		Recommendations: nonNil(result.Recommendations),
		Message:         result.Message,
		Reasons:         result.Reasons,
		Metadata: RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	})
}

func firstParam(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v
		}
	}
	return ""
}

func nonNil(recs []domain.ScoredCourse) []domain.ScoredCourse {
	if recs == nil {
		return []domain.ScoredCourse{}
	}
	return recs
}
