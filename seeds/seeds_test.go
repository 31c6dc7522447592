package seeds

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := Options{Users: 20, Courses: 40, Now: fixedNow}

	c1, i1 := Generate(opts)
	c2, i2 := Generate(opts)
	assert.Equal(t, c1, c2)
	assert.Equal(t, i1, i2)
}

func TestGenerateInteractions(t *testing.T) {
	courses, interactions := Generate(Options{Users: 30, Courses: 60, Now: fixedNow})
	require.Len(t, courses, 60)

	known := make(map[int64]bool, len(courses))
	for _, c := range courses {
		known[c.ID] = true
	}

	perUser := map[string]int{}
	pairs := map[string]bool{}
	for _, in := range interactions {
		perUser[in.UserID]++
		assert.True(t, known[in.CourseID])
		assert.GreaterOrEqual(t, in.Rating, 1)
		assert.LessOrEqual(t, in.Rating, 5)

		key := fmt.Sprintf("%s/%d", in.UserID, in.CourseID)
		assert.False(t, pairs[key], "duplicate pair %s", key)
		pairs[key] = true
	}

	assert.Len(t, perUser, 30)
	for user, n := range perUser {
		assert.GreaterOrEqual(t, n, minInteractionsPerUser, user)
		assert.LessOrEqual(t, n, maxInteractionsPerUser, user)
	}
}

func TestGenerateUsesGivenCatalog(t *testing.T) {
	catalog := []domain.Course{{ID: 7}, {ID: 8}, {ID: 9}}
	courses, interactions := Generate(Options{Users: 4, Catalog: catalog, Now: fixedNow})

	assert.Equal(t, catalog, courses)
	perUser := map[string]int{}
	for _, in := range interactions {
		perUser[in.UserID]++
	}
	for _, n := range perUser {
		assert.Equal(t, 3, n, "capped at the catalog size")
	}
}

func TestGeneratedCourses(t *testing.T) {
	courses := generateCourses(rand.New(rand.NewSource(1)), 8)
	seen := map[string]bool{}
	for _, c := range courses {
		assert.False(t, seen[c.Title], "titles are unique")
		seen[c.Title] = true
		assert.Contains(t, subjects, c.Subject)
		assert.Equal(t, c.IsPaid, c.Price > 0)
		assert.False(t, c.PublishedAt.IsZero())
	}
}

type recordingExec struct {
	queries []string
	args    [][]any
}

func (r *recordingExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.queries = append(r.queries, sql)
	r.args = append(r.args, args)
	return pgconn.CommandTag{}, nil
}

type recordingImporter struct {
	courses []domain.Course
}

func (r *recordingImporter) ImportCourses(_ context.Context, courses []domain.Course) (int, error) {
	r.courses = courses
	return len(courses), nil
}

func TestSetup(t *testing.T) {
	db := &recordingExec{}
	imp := &recordingImporter{}

	require.NoError(t, Setup(context.Background(), db, imp, Options{Users: 5, Courses: 10, Now: fixedNow}))

	require.GreaterOrEqual(t, len(db.queries), 2)
	assert.Contains(t, db.queries[0], "TRUNCATE user_interactions, courses")
	assert.Len(t, imp.courses, 10)
	assert.True(t, strings.HasPrefix(db.queries[1], "INSERT INTO user_interactions"))
	assert.Zero(t, len(db.args[1])%5)
}
