package collaborative

// Neighbor is a similar course and its similarity.
type Neighbor struct {
	CourseID   int64   `json:"course_id"`
	Similarity float64 `json:"sim"`
}

// KNN is an item-based neighborhood model. Neighbors of each course are
// stored by descending similarity.
type KNN struct {
	Kind        string                       `json:"kind"`
	K           int                          `json:"k"`
	MinK        int                          `json:"min_k"`
	GlobalMean  float64                      `json:"global_mean"`
	UserRatings map[string]map[int64]float64 `json:"user_ratings"`
	Neighbors   map[int64][]Neighbor         `json:"neighbors"`
}

func (m *KNN) Name() string { return "knn" }

// Predict averages the user's ratings of the k most similar courses they
// rated, weighted by similarity. When too few neighbors qualify the global
// mean is returned.
func (m *KNN) Predict(userID string, courseID int64) (float64, error) {
	ratings, ok := m.UserRatings[userID]
	if !ok {
		return 0, unknownUser(userID, courseID)
	}
	neighbors, ok := m.Neighbors[courseID]
	if !ok {
		return 0, unknownCourse(userID, courseID)
	}

	k := m.K
	if k <= 0 {
		k = 40
	}
	minK := max(m.MinK, 1)

	var sumSim, sumRatings float64
	used := 0
	for _, nb := range neighbors {
		if used >= k {
			break
		}
		if nb.Similarity <= 0 {
			break
		}
		r, rated := ratings[nb.CourseID]
		if !rated {
			continue
		}
		sumSim += nb.Similarity
		sumRatings += nb.Similarity * r
		used++
	}

	if used < minK || sumSim == 0 {
		return m.GlobalMean, nil
	}
	return sumRatings / sumSim, nil
}
