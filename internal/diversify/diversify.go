// Package diversify caps how many results of one subject a ranked list holds.
package diversify

import (
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// Limit walks recs in order and keeps each item unless its subject already
// has maxPerSubject accepted items. Rejected items are dropped. Subjects are
// compared case-insensitively; recommendations for unknown courses share an
// empty subject. A non-positive maxPerSubject disables the cap.
func Limit(recs []domain.Recommendation, courses []domain.Course, maxPerSubject int) []domain.Recommendation {
	if maxPerSubject <= 0 {
		return append([]domain.Recommendation(nil), recs...)
	}

	subjectOf := make(map[int64]string, len(courses))
	for _, c := range courses {
		if _, ok := subjectOf[c.ID]; !ok {
			subjectOf[c.ID] = strings.ToLower(strings.TrimSpace(c.Subject))
		}
	}

	counts := make(map[string]int)
	out := make([]domain.Recommendation, 0, len(recs))
	for _, r := range recs {
		subject := subjectOf[r.CourseID]
		if counts[subject] >= maxPerSubject {
			continue
		}
		counts[subject]++
		out = append(out, r)
	}
	return out
}
