package textmatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

func TestSearchOrdersBySubscribersOnEqualRelevance(t *testing.T) {
	courses := []domain.Course{
		{ID: 2, Title: "Advanced Python", Subject: "Web Development", NumSubscribers: 500},
		{ID: 1, Title: "Python for Beginners", Subject: "Web Development", NumSubscribers: 1000},
	}

	got := Search("Python", courses)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Course.ID)
	assert.Equal(t, int64(2), got[1].Course.ID)
	assert.Equal(t, 2, got[0].Relevance)
	assert.Equal(t, 2, got[1].Relevance)
}

func TestSearchRelevance(t *testing.T) {
	courses := []domain.Course{
		{ID: 1, Title: "Guitar Basics", Subject: "Musical Instruments", NumSubscribers: 9000},
		{ID: 2, Title: "Web Design", Subject: "Web Development", NumSubscribers: 10},
		{ID: 3, Title: "Intro to HTML", Subject: "Web Development", NumSubscribers: 20},
		{ID: 4, Title: "Web Scraping", Subject: "Business Finance", NumSubscribers: 30},
	}

	got := Search("WEB", courses)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].Course.ID, "title and subject match scores 3")
	assert.Equal(t, 3, got[0].Relevance)
	assert.Equal(t, int64(4), got[1].Course.ID)
	assert.Equal(t, 2, got[1].Relevance)
	assert.Equal(t, int64(3), got[2].Course.ID)
	assert.Equal(t, 1, got[2].Relevance)
}

func TestSearchAnyWordMatches(t *testing.T) {
	courses := []domain.Course{
		{ID: 1, Title: "Guitar Basics", Subject: "Musical Instruments"},
		{ID: 2, Title: "Excel Mastery", Subject: "Business Finance"},
		{ID: 3, Title: "Drawing", Subject: "Graphic Design"},
	}
	got := Search("guitar excel", courses)
	assert.Len(t, got, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	courses := []domain.Course{{ID: 1, Title: "Anything"}}
	assert.Empty(t, Search("", courses))
	assert.Empty(t, Search("   ", courses))
}

func TestSearchNoMatch(t *testing.T) {
	courses := []domain.Course{{ID: 1, Title: "Guitar", Subject: "Music"}}
	assert.Empty(t, Search("kubernetes", courses))
}

func TestSearchCapsResults(t *testing.T) {
	var courses []domain.Course
	for i := range 25 {
		courses = append(courses, domain.Course{ID: int64(i), Title: fmt.Sprintf("Python %d", i), NumSubscribers: int64(i)})
	}
	got := Search("python", courses)
	require.Len(t, got, MaxResults)
	assert.Equal(t, int64(24), got[0].Course.ID)

	recs := Recommendations(got)
	assert.Equal(t, 2.0, recs[0].Score)
}
