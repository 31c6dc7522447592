package collaborative

import (
	"fmt"
	"sort"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// RankForUser estimates every course the user has not interacted with and
// returns the top n by estimate. Courses the predictor cannot score are
// skipped. If nothing can be scored the result is ErrPredictionUnavailable.
func RankForUser(p Predictor, userID string, courses []domain.Course, seen map[int64]struct{}, n int) ([]domain.Recommendation, error) {
	if p == nil {
		return nil, domain.ErrModelUnavailable
	}

	recs := make([]domain.Recommendation, 0, len(courses))
	for _, c := range courses {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		est, err := p.Predict(userID, c.ID)
		if err != nil {
			if IsPredictionUnavailable(err) {
				continue
			}
			return nil, fmt.Errorf("predict course %d: %w", c.ID, err)
		}
		recs = append(recs, domain.Recommendation{CourseID: c.ID, Score: Clip(est)})
	}

	if len(recs) == 0 {
		return nil, &PredictionError{UserID: userID, Reason: "no candidate could be scored"}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}
