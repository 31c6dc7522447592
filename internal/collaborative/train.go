package collaborative

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

// Rating is one observed (user, course, rating) triple used for training.
type Rating struct {
	UserID   string
	CourseID int64
	Value    float64
}

type SVDParams struct {
	Factors      int
	Epochs       int
	LearningRate float64
	Reg          float64
	InitStdDev   float64
	Seed         int64
}

func DefaultSVDParams() SVDParams {
	return SVDParams{
		Factors:      100,
		Epochs:       20,
		LearningRate: 0.005,
		Reg:          0.02,
		InitStdDev:   0.1,
		Seed:         42,
	}
}

type KNNParams struct {
	K    int
	MinK int
	// MaxNeighbors bounds how many neighbors are stored per course.
	MaxNeighbors int
}

func DefaultKNNParams() KNNParams {
	return KNNParams{K: 40, MinK: 1, MaxNeighbors: 200}
}

// Metrics summarizes predictor accuracy on held-out ratings.
type Metrics struct {
	RMSE      float64 `json:"rmse"`
	MAE       float64 `json:"mae"`
	Evaluated int     `json:"evaluated"`
	Skipped   int     `json:"skipped"`
}

// RatingsFromInteractions keeps rated interactions, one per (user, course),
// taking the highest rating when a pair repeats. Output order is stable.
func RatingsFromInteractions(interactions []domain.Interaction) []Rating {
	type key struct {
		user   string
		course int64
	}
	idx := make(map[key]int)
	var out []Rating
	for _, in := range interactions {
		if in.Rating <= 0 {
			continue
		}
		k := key{in.UserID, in.CourseID}
		if i, ok := idx[k]; ok {
			if float64(in.Rating) > out[i].Value {
				out[i].Value = float64(in.Rating)
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, Rating{UserID: in.UserID, CourseID: in.CourseID, Value: float64(in.Rating)})
	}
	return out
}

// Split shuffles ratings with seed and holds out testFraction of them.
func Split(ratings []Rating, testFraction float64, seed int64) (train, test []Rating) {
	shuffled := make([]Rating, len(ratings))
	copy(shuffled, ratings)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTest := int(math.Round(float64(len(shuffled)) * testFraction))
	return shuffled[nTest:], shuffled[:nTest]
}

func globalMean(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Value
	}
	return sum / float64(len(ratings))
}

// TrainSVD fits a biased factorization with stochastic gradient descent.
func TrainSVD(ctx context.Context, ratings []Rating, p SVDParams) (*SVD, error) {
	log := logging.Component("trainer")
	rng := rand.New(rand.NewSource(p.Seed))

	m := &SVD{
		Kind:       kindSVD,
		GlobalMean: globalMean(ratings),
		NumFactors: p.Factors,
		Users:      make(map[string]FactorRow),
		Items:      make(map[int64]FactorRow),
	}

	initRow := func() FactorRow {
		f := make([]float64, p.Factors)
		for i := range f {
			f[i] = rng.NormFloat64() * p.InitStdDev
		}
		return FactorRow{Factors: f}
	}
	for _, r := range ratings {
		if _, ok := m.Users[r.UserID]; !ok {
			m.Users[r.UserID] = initRow()
		}
		if _, ok := m.Items[r.CourseID]; !ok {
			m.Items[r.CourseID] = initRow()
		}
	}

	order := make([]int, len(ratings))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < p.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var sq float64
		for _, idx := range order {
			r := ratings[idx]
			u := m.Users[r.UserID]
			i := m.Items[r.CourseID]

			est := m.GlobalMean + u.Bias + i.Bias
			for f := 0; f < p.Factors; f++ {
				est += u.Factors[f] * i.Factors[f]
			}
			e := r.Value - est
			sq += e * e

			u.Bias += p.LearningRate * (e - p.Reg*u.Bias)
			i.Bias += p.LearningRate * (e - p.Reg*i.Bias)
			for f := 0; f < p.Factors; f++ {
				puf, qif := u.Factors[f], i.Factors[f]
				u.Factors[f] += p.LearningRate * (e*qif - p.Reg*puf)
				i.Factors[f] += p.LearningRate * (e*puf - p.Reg*qif)
			}
			// Factors slices are shared, only the biases need writing back.
			m.Users[r.UserID] = u
			m.Items[r.CourseID] = i
		}

		if len(ratings) > 0 {
			log.Debug().Int("epoch", epoch+1).Float64("train_rmse", math.Sqrt(sq/float64(len(ratings)))).Msg("svd epoch")
		}
	}

	return m, nil
}

type pairStats struct {
	n                     int
	si, sj, sii, sjj, sij float64
}

// TrainKNN computes pearson similarity between courses over the users who
// rated both, accumulating per-user co-rating pairs.
func TrainKNN(ctx context.Context, ratings []Rating, p KNNParams) (*KNN, error) {
	m := &KNN{
		Kind:        kindKNN,
		K:           p.K,
		MinK:        p.MinK,
		GlobalMean:  globalMean(ratings),
		UserRatings: make(map[string]map[int64]float64),
		Neighbors:   make(map[int64][]Neighbor),
	}

	for _, r := range ratings {
		row, ok := m.UserRatings[r.UserID]
		if !ok {
			row = make(map[int64]float64)
			m.UserRatings[r.UserID] = row
		}
		row[r.CourseID] = r.Value
		if _, ok := m.Neighbors[r.CourseID]; !ok {
			m.Neighbors[r.CourseID] = nil
		}
	}

	type pair struct{ a, b int64 }
	stats := make(map[pair]*pairStats)

	for _, row := range m.UserRatings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(row))
		for id := range row {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for x := 0; x < len(ids); x++ {
			for y := x + 1; y < len(ids); y++ {
				a, b := ids[x], ids[y]
				ra, rb := row[a], row[b]
				s := stats[pair{a, b}]
				if s == nil {
					s = &pairStats{}
					stats[pair{a, b}] = s
				}
				s.n++
				s.si += ra
				s.sj += rb
				s.sii += ra * ra
				s.sjj += rb * rb
				s.sij += ra * rb
			}
		}
	}

	for pr, s := range stats {
		sim := pearson(s)
		if sim <= 0 {
			continue
		}
		m.Neighbors[pr.a] = append(m.Neighbors[pr.a], Neighbor{CourseID: pr.b, Similarity: sim})
		m.Neighbors[pr.b] = append(m.Neighbors[pr.b], Neighbor{CourseID: pr.a, Similarity: sim})
	}

	for id, nbs := range m.Neighbors {
		sort.Slice(nbs, func(i, j int) bool {
			if nbs[i].Similarity != nbs[j].Similarity {
				return nbs[i].Similarity > nbs[j].Similarity
			}
			return nbs[i].CourseID < nbs[j].CourseID
		})
		if p.MaxNeighbors > 0 && len(nbs) > p.MaxNeighbors {
			nbs = nbs[:p.MaxNeighbors]
		}
		m.Neighbors[id] = nbs
	}

	return m, nil
}

func pearson(s *pairStats) float64 {
	n := float64(s.n)
	num := n*s.sij - s.si*s.sj
	den := math.Sqrt((n*s.sii - s.si*s.si) * (n*s.sjj - s.sj*s.sj))
	if den == 0 {
		return 0
	}
	return num / den
}

// Evaluate scores p on held-out ratings. Cold-start pairs are counted as
// skipped rather than errors.
func Evaluate(p Predictor, test []Rating) Metrics {
	var m Metrics
	var sq, abs float64
	for _, r := range test {
		est, err := p.Predict(r.UserID, r.CourseID)
		if err != nil {
			m.Skipped++
			continue
		}
		e := r.Value - Clip(est)
		sq += e * e
		abs += math.Abs(e)
		m.Evaluated++
	}
	if m.Evaluated > 0 {
		m.RMSE = math.Sqrt(sq / float64(m.Evaluated))
		m.MAE = abs / float64(m.Evaluated)
	}
	return m
}
