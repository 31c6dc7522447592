// Package collaborative estimates ratings for (user, course) pairs from
// trained factorization and neighborhood models, and ranks candidates by
// those estimates.
package collaborative

import (
	"errors"
	"fmt"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

const (
	MinRating = 1.0
	MaxRating = 5.0
)

// Predictor estimates the rating a user would give a course.
type Predictor interface {
	Name() string
	Predict(userID string, courseID int64) (float64, error)
}

// PredictionError reports a cold-start user or course.
type PredictionError struct {
	UserID   string
	CourseID int64
	Reason   string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("predict user=%s course=%d: %s", e.UserID, e.CourseID, e.Reason)
}

func (e *PredictionError) Unwrap() error {
	return domain.ErrPredictionUnavailable
}

func IsPredictionUnavailable(err error) bool {
	var target *PredictionError
	return errors.As(err, &target) || errors.Is(err, domain.ErrPredictionUnavailable)
}

func unknownUser(userID string, courseID int64) error {
	return &PredictionError{UserID: userID, CourseID: courseID, Reason: "unknown user"}
}

func unknownCourse(userID string, courseID int64) error {
	return &PredictionError{UserID: userID, CourseID: courseID, Reason: "unknown course"}
}

// Clip bounds an estimate to the rating scale.
func Clip(est float64) float64 {
	return min(MaxRating, max(MinRating, est))
}

// Models holds the predictors loaded at startup. Either may be nil when its
// artifact is missing. Models are never mutated after load.
type Models struct {
	SVD Predictor
	KNN Predictor
}

// Get returns the predictor for name ("svd" or "knn"), defaulting to svd.
func (m *Models) Get(name string) (Predictor, error) {
	if m == nil {
		return nil, domain.ErrModelUnavailable
	}
	var p Predictor
	switch name {
	case "", "svd":
		p = m.SVD
	case "knn":
		p = m.KNN
	default:
		return nil, fmt.Errorf("%w: unknown model %q", domain.ErrInvalidInput, name)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelUnavailable, name)
	}
	return p, nil
}

// Available reports whether at least one predictor is loaded.
func (m *Models) Available() bool {
	return m != nil && (m.SVD != nil || m.KNN != nil)
}
