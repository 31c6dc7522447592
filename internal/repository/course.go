package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// LoadCourses reads the whole catalog ordered by course id.
func (r *Repository) LoadCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT course_id, course_title, url, is_paid, price, num_subscribers,
			num_reviews, num_lectures, level, content_duration,
			published_timestamp, subject
		FROM courses
		ORDER BY course_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var (
			c         domain.Course
			published *time.Time
		)
		err := rows.Scan(&c.ID, &c.Title, &c.URL, &c.IsPaid, &c.Price, &c.NumSubscribers,
			&c.NumReviews, &c.NumLectures, &c.Level, &c.ContentDuration,
			&published, &c.Subject)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		if published != nil {
			c.PublishedAt = *published
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over courses: %w", err)
	}
	return courses, nil
}

// ImportCourses upserts courses by id in a single transaction.
func (r *Repository) ImportCourses(ctx context.Context, courses []domain.Course) (int, error) {
	if len(courses) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range courses {
		var published *time.Time
		if !c.PublishedAt.IsZero() {
			published = &c.PublishedAt
		}
		batch.Queue(
			`INSERT INTO courses (course_id, course_title, url, is_paid, price, num_subscribers,
				num_reviews, num_lectures, level, content_duration, published_timestamp, subject)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (course_id) DO UPDATE SET
				course_title = EXCLUDED.course_title,
				url = EXCLUDED.url,
				is_paid = EXCLUDED.is_paid,
				price = EXCLUDED.price,
				num_subscribers = EXCLUDED.num_subscribers,
				num_reviews = EXCLUDED.num_reviews,
				num_lectures = EXCLUDED.num_lectures,
				level = EXCLUDED.level,
				content_duration = EXCLUDED.content_duration,
				published_timestamp = EXCLUDED.published_timestamp,
				subject = EXCLUDED.subject`,
			c.ID, c.Title, c.URL, c.IsPaid, c.Price, c.NumSubscribers,
			c.NumReviews, c.NumLectures, c.Level, c.ContentDuration, published, c.Subject,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("upsert courses: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(courses), nil
}

func (r *Repository) CountCourses(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}
