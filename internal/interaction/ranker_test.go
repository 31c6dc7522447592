package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

var courses = []domain.Course{
	{ID: 1, Subject: "Web Development"},
	{ID: 2, Subject: "Business Finance"},
	{ID: 3, Subject: "Graphic Design"},
	{ID: 4, Subject: "web development"},
	{ID: 5, Subject: "Musical Instruments"},
}

var history = []domain.Interaction{
	{UserID: "user_1", CourseID: 1, Rating: 5},
	{UserID: "user_1", CourseID: 2, Rating: 2},
	{UserID: "user_1", CourseID: 3, Rating: 1, IsFavorite: true},
	{UserID: "user_1", CourseID: 4, Rating: 4},
	{UserID: "user_1", CourseID: 99, Rating: 5},
	{UserID: "user_2", CourseID: 5, Rating: 5},
	{UserID: "user_1", CourseID: 1, Rating: 3},
}

func TestImpliedTopics(t *testing.T) {
	got := ImpliedTopics("user_1", history, courses)
	assert.Equal(t, []string{"Web Development", "Graphic Design"}, got)

	assert.Empty(t, ImpliedTopics("user_3", history, courses))
}

func TestExcludeInteracted(t *testing.T) {
	got := ExcludeInteracted(courses, "user_1", history)

	seen := Seen("user_1", history)
	for _, c := range got {
		_, interacted := seen[c.ID]
		assert.False(t, interacted, "course %d resurfaced", c.ID)
	}
	assert.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
}

func TestExcludeInteractedNoHistory(t *testing.T) {
	got := ExcludeInteracted(courses, "nobody", history)
	assert.Len(t, got, len(courses))
}

