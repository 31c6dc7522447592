// Package seeds fills the database with a deterministic synthetic catalog
// and interaction log for local development.
package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

const (
	minInteractionsPerUser = 5
	maxInteractionsPerUser = 30
	insertChunk            = 1000
)

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type CourseImporter interface {
	ImportCourses(ctx context.Context, courses []domain.Course) (int, error)
}

type Options struct {
	Users   int
	Courses int
	// Catalog, when set, is seeded as is instead of generated courses.
	Catalog []domain.Course
	Seed    int64
	Now     time.Time
}

func (o Options) withDefaults() Options {
	if o.Users <= 0 {
		o.Users = 100
	}
	if o.Courses <= 0 {
		o.Courses = 200
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	return o
}

// Setup truncates the catalog and interaction tables and inserts freshly
// generated rows.
func Setup(ctx context.Context, db Execer, importer CourseImporter, opts Options) error {
	log := logging.Component("seed")
	opts = opts.withDefaults()
	courses, interactions := Generate(opts)

	log.Info().Msg("truncating existing data")
	if _, err := db.Exec(ctx, `TRUNCATE user_interactions, courses RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Info().Int("courses", len(courses)).Msg("inserting courses")
	if _, err := importer.ImportCourses(ctx, courses); err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}

	log.Info().Int("interactions", len(interactions)).Msg("inserting interactions")
	if err := insertInteractions(ctx, db, interactions); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	log.Info().Msg("seeding complete")
	return nil
}

// Generate builds the catalog and interaction log. The same options always
// produce the same rows.
func Generate(opts Options) ([]domain.Course, []domain.Interaction) {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	courses := opts.Catalog
	if len(courses) == 0 {
		courses = generateCourses(rng, opts.Courses)
	}
	return courses, generateInteractions(rng, courses, opts.Users, opts.Now)
}

var subjectTopics = map[string][]string{
	"Business Finance":    {"Accounting", "Stock Trading", "Financial Modeling", "Excel for Finance", "Options Trading", "Bookkeeping"},
	"Graphic Design":      {"Photoshop", "Illustrator", "Logo Design", "Typography", "InDesign", "Brand Identity"},
	"Musical Instruments": {"Guitar", "Piano", "Drums", "Ukulele", "Violin", "Music Theory"},
	"Web Development":     {"JavaScript", "React", "Node.js", "HTML and CSS", "Python Django", "PHP"},
}

var subjects = []string{"Business Finance", "Graphic Design", "Musical Instruments", "Web Development"}

var titleFormats = []string{
	"%s for Beginners",
	"Complete %s Course",
	"Advanced %s",
	"%s Masterclass",
	"Learn %s Step by Step",
	"Practical %s Projects",
}

func generateCourses(rng *rand.Rand, n int) []domain.Course {
	levels := []string{"All Levels", "Beginner Level", "Intermediate Level", "Expert Level"}
	levelWeights := []float64{0.5, 0.3, 0.15, 0.05}
	prices := []float64{20, 25, 40, 50, 95, 120, 150, 200}
	epoch := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)

	courses := make([]domain.Course, 0, n)
	for i := range n {
		subject := subjects[i%len(subjects)]
		topics := subjectTopics[subject]
		topic := topics[rng.Intn(len(topics))]
		title := fmt.Sprintf(titleFormats[rng.Intn(len(titleFormats))], topic)
		if i >= len(subjects) {
			title = fmt.Sprintf("%s %d", title, i/len(subjects)+1)
		}

		paid := rng.Float64() < 0.85
		price := 0.0
		if paid {
			price = prices[rng.Intn(len(prices))]
		}

		subs := int64(powerLawScore(rng) * 20000)
		courses = append(courses, domain.Course{
			ID:              int64(1000 + i),
			Title:           title,
			URL:             fmt.Sprintf("https://www.udemy.com/course-%d/", 1000+i),
			Subject:         subject,
			Level:           weightedChoice(rng, levels, levelWeights),
			IsPaid:          paid,
			Price:           price,
			NumSubscribers:  subs,
			NumReviews:      subs / int64(10+rng.Intn(40)),
			NumLectures:     int64(5 + rng.Intn(120)),
			ContentDuration: math.Round((0.5+rng.Float64()*20)*10) / 10,
			PublishedAt:     epoch.Add(time.Duration(rng.Intn(6*365*24)) * time.Hour),
		})
	}
	return courses
}

func generateInteractions(rng *rand.Rand, courses []domain.Course, users int, now time.Time) []domain.Interaction {
	if len(courses) == 0 {
		return nil
	}
	ratings := []string{"1", "2", "3", "4", "5"}
	ratingWeights := []float64{0.05, 0.1, 0.2, 0.35, 0.3}

	var out []domain.Interaction
	for u := range users {
		userID := fmt.Sprintf("user_%03d", u+1)
		want := minInteractionsPerUser + rng.Intn(maxInteractionsPerUser-minInteractionsPerUser+1)
		want = min(want, len(courses))

		seen := make(map[int]bool, want)
		for attempts := 0; len(seen) < want && attempts < want*20; attempts++ {
			// popular (low index) courses are picked more often
			idx := int(math.Pow(rng.Float64(), 1.3) * float64(len(courses)))
			idx = max(0, min(idx, len(courses)-1))
			if seen[idx] {
				continue
			}
			seen[idx] = true

			rating, _ := strconv.Atoi(weightedChoice(rng, ratings, ratingWeights))
			out = append(out, domain.Interaction{
				UserID:     userID,
				CourseID:   courses[idx].ID,
				Rating:     rating,
				IsFavorite: rng.Float64() < float64(rating)/10,
				Timestamp:  now.AddDate(0, 0, -rng.Intn(180)),
			})
		}
	}
	return out
}

func insertInteractions(ctx context.Context, db Execer, interactions []domain.Interaction) error {
	for start := 0; start < len(interactions); start += insertChunk {
		chunk := interactions[start:min(start+insertChunk, len(interactions))]

		rows := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*5)
		for _, in := range chunk {
			base := len(args)
			rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
			args = append(args, in.UserID, in.CourseID, in.Rating, in.IsFavorite, in.Timestamp)
		}

		query := "INSERT INTO user_interactions (user_id, course_id, rating, is_favorite, created_at) VALUES " +
			strings.Join(rows, ", ")
		if _, err := db.Exec(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func powerLawScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	if raw < 0.01 {
		raw = 0.01
	}
	return math.Round(raw*100) / 100
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
