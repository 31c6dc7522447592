package collaborative

import (
	"math"
	"sort"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

const (
	// SimilarUserLimit is how many neighbors contribute candidates.
	SimilarUserLimit = 10
	likedRating      = 4
)

// UserSimilarity is another user's agreement with the target user.
type UserSimilarity struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`
	Overlap    int     `json:"overlap"`
}

// ratingsByUser keeps the highest rating per (user, course) so duplicate
// interactions count once.
func ratingsByUser(interactions []domain.Interaction) map[string]map[int64]int {
	out := make(map[string]map[int64]int)
	for _, in := range interactions {
		if in.Rating <= 0 {
			continue
		}
		row, ok := out[in.UserID]
		if !ok {
			row = make(map[int64]int)
			out[in.UserID] = row
		}
		if in.Rating > row[in.CourseID] {
			row[in.CourseID] = in.Rating
		}
	}
	return out
}

// SimilarUsers ranks every other user who rated at least one course in
// common with userID. Similarity is the mean of 1 - |a-b|/4 over co-rated
// courses. Ties are broken by user id.
func SimilarUsers(userID string, interactions []domain.Interaction) []UserSimilarity {
	ratings := ratingsByUser(interactions)
	target, ok := ratings[userID]
	if !ok {
		return nil
	}

	var out []UserSimilarity
	for other, row := range ratings {
		if other == userID {
			continue
		}
		var sum float64
		overlap := 0
		for courseID, a := range target {
			b, ok := row[courseID]
			if !ok {
				continue
			}
			sum += 1 - math.Abs(float64(a-b))/4
			overlap++
		}
		if overlap == 0 {
			continue
		}
		out = append(out, UserSimilarity{UserID: other, Similarity: sum / float64(overlap), Overlap: overlap})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// RecommendFromSimilarUsers collects courses rated 4 or higher by the top
// similar users that userID has never interacted with. Each course scores
// the highest rating any of those users gave it.
func RecommendFromSimilarUsers(userID string, interactions []domain.Interaction, n int) []domain.Recommendation {
	neighbors := SimilarUsers(userID, interactions)
	if len(neighbors) > SimilarUserLimit {
		neighbors = neighbors[:SimilarUserLimit]
	}
	if len(neighbors) == 0 {
		return nil
	}

	seen := make(map[int64]struct{})
	for _, in := range interactions {
		if in.UserID == userID {
			seen[in.CourseID] = struct{}{}
		}
	}

	ratings := ratingsByUser(interactions)
	best := make(map[int64]int)
	for _, nb := range neighbors {
		for courseID, r := range ratings[nb.UserID] {
			if r < likedRating {
				continue
			}
			if _, ok := seen[courseID]; ok {
				continue
			}
			if r > best[courseID] {
				best[courseID] = r
			}
		}
	}

	recs := make([]domain.Recommendation, 0, len(best))
	for courseID, r := range best {
		recs = append(recs, domain.Recommendation{CourseID: courseID, Score: float64(r)})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].CourseID < recs[j].CourseID
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}
