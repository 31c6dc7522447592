// Package preference narrows a catalog to a user's declared preferences.
package preference

import (
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// Filter holds the active constraints. Zero values mean "no constraint".
type Filter struct {
	Topics     []string
	Level      string
	CourseType string
}

// FromPreferences builds a filter from stored preferences.
func FromPreferences(p domain.Preferences) Filter {
	return Filter{Topics: p.Topics, Level: p.Level, CourseType: p.CourseType}
}

func (f Filter) HasTopic() bool { return len(f.Topics) > 0 }

func (f Filter) HasLevel() bool {
	l := strings.TrimSpace(f.Level)
	return l != "" && !strings.EqualFold(l, domain.LevelAll) && !strings.EqualFold(l, domain.LevelNoPref)
}

func (f Filter) HasType() bool {
	t := strings.TrimSpace(f.CourseType)
	return strings.EqualFold(t, domain.CourseTypeFree) || strings.EqualFold(t, domain.CourseTypePaid)
}

// Active reports whether any constraint is set.
func (f Filter) Active() bool {
	return f.HasTopic() || f.HasLevel() || f.HasType()
}

// Apply returns the courses that satisfy every active constraint, in input
// order. It never relaxes constraints itself.
func Apply(courses []domain.Course, f Filter) []domain.Course {
	topics := lowerAll(f.Topics)
	level := strings.ToLower(strings.TrimSpace(f.Level))
	checkLevel := f.HasLevel()
	checkType := f.HasType()
	wantPaid := strings.EqualFold(strings.TrimSpace(f.CourseType), domain.CourseTypePaid)

	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if len(topics) > 0 && !overlapsAny(strings.ToLower(c.Subject), topics) {
			continue
		}
		if checkLevel && !strings.Contains(strings.ToLower(c.Level), level) {
			continue
		}
		if checkType && c.IsPaid != wantPaid {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MatchesTopic reports whether subject overlaps any topic as a
// case-insensitive substring in either direction.
func MatchesTopic(subject string, topics []string) bool {
	return overlapsAny(strings.ToLower(subject), lowerAll(topics))
}

// MatchesLevel reports whether the course level contains the preferred one.
func MatchesLevel(courseLevel string, f Filter) bool {
	if !f.HasLevel() {
		return false
	}
	return strings.Contains(strings.ToLower(courseLevel), strings.ToLower(strings.TrimSpace(f.Level)))
}

func overlapsAny(subject string, topics []string) bool {
	if subject == "" {
		return false
	}
	for _, t := range topics {
		if t == "" {
			continue
		}
		if strings.Contains(subject, t) || strings.Contains(t, subject) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeTopics drops topics that overlap no subject of the catalog
// vocabulary, so stale preferences cannot empty the result. Order and first
// spelling are preserved; duplicates are removed.
func NormalizeTopics(topics []string, subjects []string) []string {
	vocab := lowerAll(subjects)
	seen := make(map[string]struct{}, len(topics))
	var out []string
	for _, t := range topics {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		for _, s := range vocab {
			if strings.Contains(s, key) || strings.Contains(key, s) {
				seen[key] = struct{}{}
				out = append(out, strings.TrimSpace(t))
				break
			}
		}
	}
	return out
}
