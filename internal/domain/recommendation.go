package domain

type Strategy string

const (
	StrategySearch        Strategy = "search"
	StrategySimilarity    Strategy = "similarity"
	StrategyPersonalized  Strategy = "personalized"
	StrategyCollaborative Strategy = "collaborative"
	StrategyHybrid        Strategy = "hybrid"
	StrategyTrending      Strategy = "trending"
)

// Recommendation is a scored course reference. The scale of Score depends
// on the strategy that produced it and is not comparable across strategies.
type Recommendation struct {
	CourseID int64   `json:"course_id"`
	Score    float64 `json:"score"`
}

// ScoredCourse is a recommendation joined with its catalog row for output.
type ScoredCourse struct {
	Course
	Score float64 `json:"score"`
}

// Intent describes a single recommendation request.
type Intent struct {
	Type   Strategy `json:"type" validate:"required,oneof=search similarity personalized collaborative hybrid trending"`
	Query  string   `json:"query,omitempty" validate:"max=200"`
	UserID string   `json:"user_id,omitempty" validate:"max=100"`
	Email  string   `json:"email,omitempty" validate:"omitempty,email"`
	Model  string   `json:"model,omitempty" validate:"omitempty,oneof=svd knn"`
	Limit  int      `json:"limit" validate:"gte=0,lte=50"`
}

type Result struct {
	Strategy        Strategy       `json:"strategy"`
	Query           string         `json:"query,omitempty"`
	Recommendations []ScoredCourse `json:"recommendations"`
	Message         string         `json:"message,omitempty"`
	Reasons         []string       `json:"reasons,omitempty"`
	CacheHit        bool           `json:"cache_hit"`
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchUserResult struct {
	UserID          string         `json:"user_id"`
	Strategy        Strategy       `json:"strategy,omitempty"`
	Recommendations []ScoredCourse `json:"recommendations,omitempty"`
	Status          BatchStatus    `json:"status"`
	Error           string         `json:"error,omitempty"`
	Message         string         `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}
