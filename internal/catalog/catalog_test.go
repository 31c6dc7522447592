package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "python beginners", CleanTitle("Python for Beginners"))
	assert.Equal(t, "complete guide node js", CleanTitle("The Complete Guide to Node.js!"))
	assert.Equal(t, "", CleanTitle("The and of"))
}

func TestCleanTitleIdempotent(t *testing.T) {
	titles := []string{
		"Learn C++ From Scratch: It's Easy!",
		"Bitcoin & Cryptocurrency | The Complete Course",
		"  Ultimate   Excel  2016 ",
		"don't stop",
		"",
	}
	for _, title := range titles {
		once := CleanTitle(title)
		assert.Equal(t, once, CleanTitle(once), "title=%q", title)
	}

	courses := []domain.Course{{ID: 1, Title: titles[0]}, {ID: 2, Title: titles[1]}}
	once := CleanTitles(courses)
	twice := CleanTitles(once)
	assert.Equal(t, once, twice)
	assert.Empty(t, courses[0].CleanTitle, "input must not be mutated")
}

func TestSnapshot(t *testing.T) {
	snap := NewSnapshot([]domain.Course{
		{ID: 1, Title: "Python for Beginners", Subject: "Web Development"},
		{ID: 2, Title: "Guitar Basics", Subject: "Musical Instruments"},
		{ID: 3, Title: "Advanced Python", Subject: "web development"},
	})

	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, []string{"Web Development", "Musical Instruments"}, snap.Subjects())

	c, ok := snap.Course(2)
	require.True(t, ok)
	assert.Equal(t, "guitar basics", c.CleanTitle)

	_, ok = snap.Course(99)
	assert.False(t, ok)

	got := snap.Lookup([]domain.Recommendation{{CourseID: 3, Score: 0.5}, {CourseID: 42, Score: 1}})
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, 0.5, got[0].Score)
}

func TestSnapshotHashChangesWithContent(t *testing.T) {
	a := NewSnapshot([]domain.Course{{ID: 1, Title: "Go", NumSubscribers: 10}})
	b := NewSnapshot([]domain.Course{{ID: 1, Title: "Go", NumSubscribers: 10}})
	c := NewSnapshot([]domain.Course{{ID: 1, Title: "Go", NumSubscribers: 11}})

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())

	longer := NewSnapshot([]domain.Course{{ID: 1, Title: "Go", NumSubscribers: 10, ContentDuration: 2.5}})
	assert.NotEqual(t, a.Hash(), longer.Hash(), "duration is part of the content")
}

const sampleCSV = `course_id,course_title,url,is_paid,price,num_subscribers,num_reviews,num_lectures,level,content_duration,published_timestamp,subject
1070968,Ultimate Investment Banking Course,https://www.udemy.com/ultimate-investment-banking-course/,True,200,2147,23,51,All Levels,1.5,2017-01-18T20:58:58Z,Business Finance
1113822,Complete GST Course & Certification,https://www.udemy.com/goods-and-services-tax/,True,Free,2792,923,274,All Levels,39,2017-03-09T16:34:20Z,Business Finance
abc,Broken Row,,,,,,,,,,
8324,Javascript for Beginners,https://www.udemy.com/js/,False,0,100,1,10,Beginner Level,2 hours,not-a-date,Web Development
`

func TestReadCSV(t *testing.T) {
	courses, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, courses, 3)

	assert.Equal(t, int64(1070968), courses[0].ID)
	assert.Equal(t, 200.0, courses[0].Price)
	assert.True(t, courses[0].IsPaid)
	assert.Equal(t, int64(2147), courses[0].NumSubscribers)

	assert.Equal(t, 0.0, courses[1].Price, "Free normalizes to 0")

	assert.False(t, courses[2].IsPaid)
	assert.Equal(t, 2.0, courses[2].ContentDuration)
	assert.True(t, courses[2].PublishedAt.IsZero())
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("title,subject\nx,y\n"))
	assert.Error(t, err)
}

type stubSource struct {
	courses []domain.Course
	err     error
	delay   time.Duration
}

func (s *stubSource) LoadCourses(ctx context.Context) ([]domain.Course, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.courses, s.err
}

func TestLoaderLoad(t *testing.T) {
	l := NewLoader(&stubSource{courses: []domain.Course{{ID: 1, Title: "Go"}}}, time.Second)

	_, err := l.Current()
	require.ErrorIs(t, err, domain.ErrDataUnavailable)

	snap, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())

	cur, err := l.Current()
	require.NoError(t, err)
	assert.Same(t, snap, cur)
}

func TestLoaderFailuresAreDataUnavailable(t *testing.T) {
	l := NewLoader(&stubSource{err: errors.New("boom")}, time.Second)
	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	l = NewLoader(&stubSource{}, time.Second)
	_, err = l.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable, "empty catalog")

	l = NewLoader(&stubSource{delay: time.Second}, 10*time.Millisecond)
	_, err = l.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable, "timeout")
}
