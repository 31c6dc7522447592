// Package interaction derives implicit preferences from the interaction log.
package interaction

import (
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// Seen returns the set of course IDs the user has any record for.
func Seen(userID string, interactions []domain.Interaction) map[int64]struct{} {
	seen := make(map[int64]struct{})
	for _, in := range interactions {
		if in.UserID == userID {
			seen[in.CourseID] = struct{}{}
		}
	}
	return seen
}

// ImpliedTopics returns the subjects of courses the user rated 4 or more or
// marked as favorite, deduplicated case-insensitively in log order.
func ImpliedTopics(userID string, interactions []domain.Interaction, courses []domain.Course) []string {
	subjectOf := make(map[int64]string, len(courses))
	for _, c := range courses {
		if _, ok := subjectOf[c.ID]; !ok {
			subjectOf[c.ID] = c.Subject
		}
	}

	seen := make(map[string]struct{})
	var topics []string
	for _, in := range interactions {
		if in.UserID != userID || !in.Liked() {
			continue
		}
		subject, ok := subjectOf[in.CourseID]
		if !ok || strings.TrimSpace(subject) == "" {
			continue
		}
		key := strings.ToLower(subject)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, subject)
	}
	return topics
}

// ExcludeInteracted removes every course the user has interacted with,
// whatever the rating.
func ExcludeInteracted(courses []domain.Course, userID string, interactions []domain.Interaction) []domain.Course {
	seen := Seen(userID, interactions)
	if len(seen) == 0 {
		return courses
	}
	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
