package collaborative

// FactorRow is a bias plus latent factors for one user or course.
type FactorRow struct {
	Bias    float64   `json:"bias"`
	Factors []float64 `json:"factors"`
}

// SVD is a biased matrix factorization model:
// est = mean + b_u + b_i + p_u . q_i
type SVD struct {
	Kind       string               `json:"kind"`
	GlobalMean float64              `json:"global_mean"`
	NumFactors int                  `json:"num_factors"`
	Users      map[string]FactorRow `json:"users"`
	Items      map[int64]FactorRow  `json:"items"`
}

func (m *SVD) Name() string { return "svd" }

func (m *SVD) Predict(userID string, courseID int64) (float64, error) {
	u, ok := m.Users[userID]
	if !ok {
		return 0, unknownUser(userID, courseID)
	}
	i, ok := m.Items[courseID]
	if !ok {
		return 0, unknownCourse(userID, courseID)
	}

	est := m.GlobalMean + u.Bias + i.Bias
	n := min(len(u.Factors), len(i.Factors))
	for f := 0; f < n; f++ {
		est += u.Factors[f] * i.Factors[f]
	}
	return est, nil
}
