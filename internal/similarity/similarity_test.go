package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/domain"
)

func testCourses() []domain.Course {
	return catalog.CleanTitles([]domain.Course{
		{ID: 10, Title: "Python for Beginners"},
		{ID: 11, Title: "Advanced Python Programming"},
		{ID: 12, Title: "Guitar Lessons for Beginners"},
		{ID: 13, Title: "The And Of"},
		{ID: 14, Title: "Python Programming Bootcamp"},
	})
}

func TestBuildVectorsVocabulary(t *testing.T) {
	v := BuildVectors(testCourses())
	assert.Contains(t, v.Vocabulary, "python")
	assert.Contains(t, v.Vocabulary, "beginners")
	assert.NotContains(t, v.Vocabulary, "for")
	assert.True(t, v.Rows[3].IsZero(), "stopword-only title has no terms")
}

func TestMatrixSymmetricWithUnitDiagonal(t *testing.T) {
	courses := testCourses()
	m := NewMatrix(BuildVectors(courses))
	require.Equal(t, len(courses), m.Size())

	for i := range courses {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := range courses {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.GreaterOrEqual(t, m.At(i, j), 0.0)
			assert.LessOrEqual(t, m.At(i, j), 1.0+1e-6)
		}
	}
}

func TestZeroVectorSimilarityIsZero(t *testing.T) {
	courses := testCourses()
	m := NewMatrix(BuildVectors(courses))
	for j := range courses {
		if j == 3 {
			continue
		}
		assert.Equal(t, 0.0, m.At(3, j))
	}
}

func TestRecommendExcludesQueryCourse(t *testing.T) {
	courses := testCourses()
	m := NewMatrix(BuildVectors(courses))

	for _, c := range courses {
		recs, err := Recommend(c.Title, courses, m, 10)
		require.NoError(t, err)
		for _, r := range recs {
			assert.NotEqual(t, c.ID, r.CourseID)
		}
	}
}

func TestRecommendOrdering(t *testing.T) {
	courses := testCourses()
	m := NewMatrix(BuildVectors(courses))

	recs, err := Recommend("Advanced Python Programming", courses, m, 10)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	// "python programming bootcamp" shares two terms, "python beginners" one
	assert.Equal(t, int64(14), recs[0].CourseID)
	assert.Equal(t, int64(10), recs[1].CourseID)
	assert.Greater(t, recs[0].Score, recs[1].Score)
	// unrelated courses follow in catalog order
	assert.Equal(t, int64(12), recs[2].CourseID)
	assert.Equal(t, int64(13), recs[3].CourseID)
	assert.Equal(t, 0.0, recs[3].Score)

	recs, err = Recommend("Advanced Python Programming", courses, m, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecommendTitleNotFound(t *testing.T) {
	courses := testCourses()
	m := NewMatrix(BuildVectors(courses))

	_, err := Recommend("python for beginners", courses, m, 5)
	assert.ErrorIs(t, err, domain.ErrTitleNotFound, "lookup is exact")
}

func TestRecommendZeroVectorQuery(t *testing.T) {
	courses := testCourses()
	m := NewMatrix(BuildVectors(courses))

	recs, err := Recommend("The And Of", courses, m, 5)
	require.NoError(t, err)
	got := make([]int64, len(recs))
	for i, r := range recs {
		got[i] = r.CourseID
		assert.Equal(t, 0.0, r.Score)
	}
	assert.Equal(t, []int64{10, 11, 12, 14}, got)
}

func TestCacheKeyedBySnapshot(t *testing.T) {
	c := NewCache()
	a := catalog.NewSnapshot([]domain.Course{{ID: 1, Title: "Go Basics"}, {ID: 2, Title: "Go Advanced"}})
	b := catalog.NewSnapshot([]domain.Course{{ID: 1, Title: "Go Basics"}})

	ma := c.Matrix(a)
	assert.Same(t, ma, c.Matrix(a))

	mb := c.Matrix(b)
	assert.Equal(t, 1, mb.Size())
	assert.Equal(t, 2, c.Matrix(a).Size(), "a reloaded catalog never gets the stale matrix")
}

func TestCacheOnBuild(t *testing.T) {
	c := NewCache()
	var builds []int
	c.OnBuild = func(size int) { builds = append(builds, size) }

	snap := catalog.NewSnapshot([]domain.Course{{ID: 1, Title: "Go Basics"}, {ID: 2, Title: "Go Advanced"}})
	c.Matrix(snap)
	c.Matrix(snap)

	assert.Equal(t, []int{2}, builds)
}
