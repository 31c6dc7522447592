package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

func catalogFixture() []domain.Course {
	return []domain.Course{
		{ID: 1, Subject: "Web Development", Level: "Beginner Level", IsPaid: true},
		{ID: 2, Subject: "Web Development", Level: "All Levels", IsPaid: false},
		{ID: 3, Subject: "Business Finance", Level: "Intermediate Level", IsPaid: true},
		{ID: 4, Subject: "Graphic Design", Level: "Beginner Level", IsPaid: false},
		{ID: 5, Subject: "Data Science", Level: "Expert Level", IsPaid: true},
	}
}

func ids(courses []domain.Course) []int64 {
	out := make([]int64, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func TestApplyTopicSubstringBothWays(t *testing.T) {
	got := Apply(catalogFixture(), Filter{Topics: []string{"web"}})
	assert.Equal(t, []int64{1, 2}, ids(got))

	got = Apply(catalogFixture(), Filter{Topics: []string{"Design Patterns"}})
	assert.Empty(t, got, "shared words alone do not match")

	got = Apply(catalogFixture(), Filter{Topics: []string{"graphic design and more"}})
	assert.Equal(t, []int64{4}, ids(got), "subject contained in topic")
}

func TestApplyLevel(t *testing.T) {
	got := Apply(catalogFixture(), Filter{Level: "Beginner"})
	assert.Equal(t, []int64{1, 4}, ids(got))

	got = Apply(catalogFixture(), Filter{Level: domain.LevelAll})
	assert.Len(t, got, 5, "All Levels is not a constraint")

	got = Apply(catalogFixture(), Filter{Level: domain.LevelNoPref})
	assert.Len(t, got, 5)
}

func TestApplyType(t *testing.T) {
	assert.Equal(t, []int64{2, 4}, ids(Apply(catalogFixture(), Filter{CourseType: "Free"})))
	assert.Equal(t, []int64{1, 3, 5}, ids(Apply(catalogFixture(), Filter{CourseType: "Paid"})))
	assert.Len(t, Apply(catalogFixture(), Filter{CourseType: "All"}), 5)
}

func TestApplyCombinedDoesNotRelax(t *testing.T) {
	got := Apply(catalogFixture(), Filter{Topics: []string{"Web Development"}, Level: "Beginner", CourseType: "Free"})
	assert.Empty(t, got)
}

func TestRelaxOrder(t *testing.T) {
	f := Filter{Topics: []string{"Web"}, Level: "Beginner", CourseType: "Paid"}

	f, dropped, ok := Relax(f)
	require.True(t, ok)
	assert.Equal(t, RelaxType, dropped)

	f, dropped, ok = Relax(f)
	require.True(t, ok)
	assert.Equal(t, RelaxLevel, dropped)

	f, dropped, ok = Relax(f)
	require.True(t, ok)
	assert.Equal(t, RelaxTopic, dropped)

	assert.False(t, f.Active())
	_, _, ok = Relax(f)
	assert.False(t, ok)
}

func TestRelaxSkipsInactive(t *testing.T) {
	_, dropped, ok := Relax(Filter{Topics: []string{"Data Science"}, Level: domain.LevelAll, CourseType: "All"})
	require.True(t, ok)
	assert.Equal(t, RelaxTopic, dropped)
}

func TestNormalizeTopics(t *testing.T) {
	subjects := []string{"Web Development", "Business Finance"}
	got := NormalizeTopics([]string{"Web", "Cooking", "web", " Business Finance ", ""}, subjects)
	assert.Equal(t, []string{"Web", "Business Finance"}, got)
}

func TestMatchesLevel(t *testing.T) {
	assert.True(t, MatchesLevel("Beginner Level", Filter{Level: "beginner"}))
	assert.False(t, MatchesLevel("Beginner Level", Filter{Level: domain.LevelAll}))
}
