package handler

import "github.com/actuallystonmai/course-recommender/internal/domain"

type RecommendationResponse struct {
	Success         bool                  `json:"success"`
	Strategy        domain.Strategy       `json:"strategy"`
	Query           string                `json:"query,omitempty"`
	UserID          string                `json:"user_id,omitempty"`
	Email           string                `json:"email,omitempty"`
	Recommendations []domain.ScoredCourse `json:"recommendations"`
	Message         string                `json:"message,omitempty"`
	Reasons         []string              `json:"reasons,omitempty"`
	Metadata        RecommendationMeta    `json:"metadata"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type FavoritesResponse struct {
	Email     string          `json:"email"`
	Favorites []domain.Course `json:"favorites"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
