package similarity

import (
	"fmt"
	"sort"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// Matrix is a symmetric pairwise similarity matrix indexed by catalog
// position. Values are stored as float32 to halve memory on large catalogs.
type Matrix struct {
	n    int
	data []float32
}

// NewMatrix computes all pairwise cosine similarities. The diagonal is 1.
func NewMatrix(vectors Vectors) *Matrix {
	n := len(vectors.Rows)
	m := &Matrix{n: n, data: make([]float32, n*n)}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			s := float32(Cosine(vectors.Rows[i], vectors.Rows[j]))
			m.data[i*n+j] = s
			m.data[j*n+i] = s
		}
	}
	return m
}

func (m *Matrix) Size() int { return m.n }

func (m *Matrix) At(i, j int) float64 {
	return float64(m.data[i*m.n+j])
}

// Row returns similarities of course i against every course.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Recommend returns up to n courses most similar to the course whose title
// equals title exactly, excluding that course. Ties keep catalog order, so
// unrelated courses trail the list with a score of 0. When several courses
// share the title the first one is used.
func Recommend(title string, courses []domain.Course, m *Matrix, n int) ([]domain.Recommendation, error) {
	if m.n != len(courses) {
		return nil, fmt.Errorf("similarity matrix size %d does not match catalog size %d", m.n, len(courses))
	}

	idx := -1
	for i, c := range courses {
		if c.Title == title {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrTitleNotFound, title)
	}

	type scored struct {
		pos   int
		score float64
	}
	row := m.Row(idx)
	candidates := make([]scored, 0, len(row))
	for j, s := range row {
		if j == idx {
			continue
		}
		candidates = append(candidates, scored{pos: j, score: float64(s)})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]domain.Recommendation, len(candidates))
	for i, c := range candidates {
		out[i] = domain.Recommendation{CourseID: courses[c.pos].ID, Score: c.score}
	}
	return out, nil
}
