package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

func day(s string) time.Time {
	return domain.ParsePublished(s)
}

func fixture() []domain.Course {
	return []domain.Course{
		{ID: 1, Subject: "Web Development", Level: "Beginner Level", Price: 20, NumSubscribers: 100, PublishedAt: day("2017-01-18T20:58:58Z")},
		{ID: 2, Subject: "Web Development", Level: "All Levels", Price: 0, NumSubscribers: 900, PublishedAt: day("2017-03-09T16:34:20Z")},
		{ID: 3, Subject: "Business Finance", Level: "Intermediate Level", Price: 50, NumSubscribers: 10, PublishedAt: day("2016-01-02")},
		{ID: 4, Subject: "Graphic Design", Level: "Beginner Level", Price: 100, NumSubscribers: 5, PublishedAt: day("not a date")},
	}
}

func TestSubjectDistribution(t *testing.T) {
	got := SubjectDistribution(fixture())
	require.Len(t, got, 3)
	assert.Equal(t, LabelCount{Label: "Web Development", Count: 2}, got[0])
	assert.Equal(t, "Business Finance", got[1].Label, "ties are ordered by name")

	var many []domain.Course
	for i := 0; i < 15; i++ {
		many = append(many, domain.Course{Subject: fmt.Sprintf("s%02d", i)})
	}
	assert.Len(t, SubjectDistribution(many), topSubjects)
}

func TestLevelDistribution(t *testing.T) {
	got := LevelDistribution(fixture())
	assert.Equal(t, map[string]int{"Beginner Level": 2, "Intermediate Level": 1}, got)
}

func TestSubjectsPerLevel(t *testing.T) {
	got := SubjectsPerLevel(fixture())
	assert.Equal(t, 1, got["Web Development - Beginner Level"])
	assert.Equal(t, 1, got["Web Development - All Levels"])
	assert.Len(t, got, 4)
}

func TestProfitSkipsInvalidDates(t *testing.T) {
	m := Profit(fixture())

	assert.Equal(t, map[string]float64{"2017": 2000, "2016": 500}, m.Profit)
	assert.Equal(t, map[string]int64{"2017": 1000, "2016": 10}, m.Subscribers)
	assert.Equal(t, 2500.0, m.MonthlyProfit["January"])
	assert.Equal(t, int64(900), m.MonthlySubscribers["March"])
	assert.Len(t, m.MonthlyProfit, 2)
}
