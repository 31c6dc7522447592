package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// CSVSource reads the catalog from a CSV export in the Udemy dataset layout.
type CSVSource struct {
	Path string
}

func (s *CSVSource) LoadCourses(ctx context.Context) ([]domain.Course, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", s.Path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSV(f)
}

// ReadCSV parses catalog rows. Columns are located by header name; only
// course_id and course_title are mandatory. Rows with an unparseable id are
// skipped.
func ReadCSV(r io.Reader) ([]domain.Course, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"course_id", "course_title"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var courses []domain.Course
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		id, err := strconv.ParseInt(get("course_id"), 10, 64)
		if err != nil {
			continue
		}

		price := domain.ParsePrice(get("price"))
		courses = append(courses, domain.Course{
			ID:              id,
			Title:           get("course_title"),
			Subject:         get("subject"),
			Level:           get("level"),
			Price:           price,
			IsPaid:          domain.ParsePaid(get("is_paid"), price),
			NumSubscribers:  parseCount(get("num_subscribers")),
			NumReviews:      parseCount(get("num_reviews")),
			NumLectures:     parseCount(get("num_lectures")),
			ContentDuration: parseFloat(get("content_duration")),
			PublishedAt:     domain.ParsePublished(get("published_timestamp")),
			URL:             get("url"),
		})
	}
	return courses, nil
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	// "1.5 hours" style durations carry a unit suffix
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
