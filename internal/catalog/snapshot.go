package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// Snapshot is an immutable, ordered view of the catalog. Callers must not
// modify the slices it returns.
type Snapshot struct {
	courses  []domain.Course
	byID     map[int64]int
	subjects []string
	hash     string
}

// NewSnapshot cleans titles and indexes the given courses. The input slice
// is not retained.
func NewSnapshot(courses []domain.Course) *Snapshot {
	cleaned := CleanTitles(courses)

	s := &Snapshot{
		courses: cleaned,
		byID:    make(map[int64]int, len(cleaned)),
	}

	seen := make(map[string]struct{})
	for i, c := range cleaned {
		if _, dup := s.byID[c.ID]; !dup {
			s.byID[c.ID] = i
		}
		key := strings.ToLower(strings.TrimSpace(c.Subject))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			s.subjects = append(s.subjects, c.Subject)
		}
	}
	s.hash = contentHash(cleaned)
	return s
}

func (s *Snapshot) Courses() []domain.Course { return s.courses }

func (s *Snapshot) Len() int { return len(s.courses) }

// Hash identifies the catalog content; it changes whenever any course does.
func (s *Snapshot) Hash() string { return s.hash }

// Subjects returns the distinct subjects in first-seen order.
func (s *Snapshot) Subjects() []string { return s.subjects }

func (s *Snapshot) Course(id int64) (domain.Course, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Course{}, false
	}
	return s.courses[i], true
}

// Lookup resolves recommendations to catalog rows, dropping IDs the
// catalog does not contain.
func (s *Snapshot) Lookup(recs []domain.Recommendation) []domain.ScoredCourse {
	out := make([]domain.ScoredCourse, 0, len(recs))
	for _, r := range recs {
		c, ok := s.Course(r.CourseID)
		if !ok {
			continue
		}
		out = append(out, domain.ScoredCourse{Course: c, Score: r.Score})
	}
	return out
}

func contentHash(courses []domain.Course) string {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeStr := func(v string) {
		writeInt(int64(len(v)))
		h.Write([]byte(v))
	}
	for _, c := range courses {
		writeInt(c.ID)
		writeStr(c.Title)
		writeStr(c.Subject)
		writeStr(c.Level)
		writeInt(int64(math.Float64bits(c.Price)))
		writeInt(c.NumSubscribers)
		writeInt(c.NumReviews)
		writeInt(c.NumLectures)
		writeInt(int64(math.Float64bits(c.ContentDuration)))
		writeInt(c.PublishedAt.Unix())
		writeStr(c.URL)
		if c.IsPaid {
			writeInt(1)
		} else {
			writeInt(0)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
