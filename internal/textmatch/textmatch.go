// Package textmatch implements keyword search over course titles and subjects.
package textmatch

import (
	"sort"
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// MaxResults caps the length of a search result.
const MaxResults = 10

const (
	titleWeight   = 2
	subjectWeight = 1
)

type Match struct {
	Course    domain.Course
	Relevance int
}

// Search returns courses matching any word of term in their title or
// subject, ordered by relevance and then by subscriber count. An empty
// term yields no matches.
func Search(term string, courses []domain.Course) []Match {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return nil
	}

	var matches []Match
	for _, c := range courses {
		title := strings.ToLower(c.Title)
		subject := strings.ToLower(c.Subject)

		inTitle, inSubject := false, false
		for _, w := range words {
			if !inTitle && strings.Contains(title, w) {
				inTitle = true
			}
			if !inSubject && strings.Contains(subject, w) {
				inSubject = true
			}
		}
		if !inTitle && !inSubject {
			continue
		}

		score := 0
		if inTitle {
			score += titleWeight
		}
		if inSubject {
			score += subjectWeight
		}
		matches = append(matches, Match{Course: c, Relevance: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Relevance != matches[j].Relevance {
			return matches[i].Relevance > matches[j].Relevance
		}
		return matches[i].Course.NumSubscribers > matches[j].Course.NumSubscribers
	})

	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	return matches
}

// Recommendations converts matches to scored references; the score is the
// relevance (1..3).
func Recommendations(matches []Match) []domain.Recommendation {
	out := make([]domain.Recommendation, len(matches))
	for i, m := range matches {
		out[i] = domain.Recommendation{CourseID: m.Course.ID, Score: float64(m.Relevance)}
	}
	return out
}
