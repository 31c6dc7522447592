// Package analytics aggregates catalog statistics for the dashboard.
package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

const topSubjects = 10

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PeriodMetrics struct {
	Profit             map[string]float64 `json:"profit"`
	Subscribers        map[string]int64   `json:"subscribers"`
	MonthlyProfit      map[string]float64 `json:"monthly_profit"`
	MonthlySubscribers map[string]int64   `json:"monthly_subscribers"`
}

type Dashboard struct {
	SubjectDistribution []LabelCount   `json:"subject_distribution"`
	LevelDistribution   map[string]int `json:"level_distribution"`
	SubjectsPerLevel    map[string]int `json:"subjects_per_level"`
	YearlyMetrics       PeriodMetrics  `json:"yearly_metrics"`
}

func Build(courses []domain.Course) Dashboard {
	return Dashboard{
		SubjectDistribution: SubjectDistribution(courses),
		LevelDistribution:   LevelDistribution(courses),
		SubjectsPerLevel:    SubjectsPerLevel(courses),
		YearlyMetrics:       Profit(courses),
	}
}

// SubjectDistribution returns the ten most common subjects, most frequent
// first, ties by name.
func SubjectDistribution(courses []domain.Course) []LabelCount {
	counts := make(map[string]int)
	for _, c := range courses {
		if c.Subject == "" {
			continue
		}
		counts[c.Subject]++
	}

	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > topSubjects {
		out = out[:topSubjects]
	}
	return out
}

// LevelDistribution counts courses per level, leaving out "All Levels".
func LevelDistribution(courses []domain.Course) map[string]int {
	out := make(map[string]int)
	for _, c := range courses {
		if c.Level == "" || c.Level == domain.LevelAll {
			continue
		}
		out[c.Level]++
	}
	return out
}

// SubjectsPerLevel is a subject x level crosstab keyed "subject - level".
func SubjectsPerLevel(courses []domain.Course) map[string]int {
	out := make(map[string]int)
	for _, c := range courses {
		if c.Subject == "" || c.Level == "" {
			continue
		}
		out[fmt.Sprintf("%s - %s", c.Subject, c.Level)]++
	}
	return out
}

// Profit sums price*subscribers and subscribers per publish year and per
// month name. Courses without a valid publish date are skipped.
func Profit(courses []domain.Course) PeriodMetrics {
	m := PeriodMetrics{
		Profit:             make(map[string]float64),
		Subscribers:        make(map[string]int64),
		MonthlyProfit:      make(map[string]float64),
		MonthlySubscribers: make(map[string]int64),
	}
	for _, c := range courses {
		if c.PublishedAt.IsZero() {
			continue
		}
		year := strconv.Itoa(c.PublishedAt.Year())
		month := c.PublishedAt.Month().String()
		profit := c.Price * float64(c.NumSubscribers)

		m.Profit[year] += profit
		m.Subscribers[year] += c.NumSubscribers
		m.MonthlyProfit[month] += profit
		m.MonthlySubscribers[month] += c.NumSubscribers
	}
	return m
}
