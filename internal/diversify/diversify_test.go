package diversify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

func TestLimit(t *testing.T) {
	courses := []domain.Course{
		{ID: 1, Subject: "Web Development"},
		{ID: 2, Subject: "web development"},
		{ID: 3, Subject: "Business Finance"},
		{ID: 4, Subject: "Web Development"},
		{ID: 5, Subject: "Business Finance"},
	}
	recs := []domain.Recommendation{
		{CourseID: 1, Score: 0.9},
		{CourseID: 2, Score: 0.8},
		{CourseID: 3, Score: 0.7},
		{CourseID: 4, Score: 0.6},
		{CourseID: 5, Score: 0.5},
	}

	got := Limit(recs, courses, 2)
	assert.Equal(t, []domain.Recommendation{
		{CourseID: 1, Score: 0.9},
		{CourseID: 2, Score: 0.8},
		{CourseID: 3, Score: 0.7},
		{CourseID: 5, Score: 0.5},
	}, got)
}

func TestLimitIsOrderedSubsequenceWithinCap(t *testing.T) {
	subjects := []string{"a", "b", "c"}
	var courses []domain.Course
	var recs []domain.Recommendation
	for i := range 30 {
		id := int64(i)
		courses = append(courses, domain.Course{ID: id, Subject: subjects[(i*7)%3]})
		recs = append(recs, domain.Recommendation{CourseID: id, Score: float64(30 - i)})
	}

	for limit := 1; limit <= 4; limit++ {
		got := Limit(recs, courses, limit)

		j := 0
		for _, r := range got {
			for j < len(recs) && recs[j] != r {
				j++
			}
			assert.Less(t, j, len(recs), "output must be a subsequence of input")
			j++
		}

		counts := map[string]int{}
		for _, r := range got {
			counts[subjects[(int(r.CourseID)*7)%3]]++
		}
		for s, n := range counts {
			assert.LessOrEqual(t, n, limit, "subject %s", s)
		}
	}
}

func TestLimitDisabled(t *testing.T) {
	recs := []domain.Recommendation{{CourseID: 1}, {CourseID: 2}}
	assert.Equal(t, recs, Limit(recs, nil, 0))
}
