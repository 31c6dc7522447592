package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

const foreignKeyViolation = "23503"

func (r *Repository) ListInteractions(ctx context.Context) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, course_id, rating, is_favorite, created_at
		FROM user_interactions
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	return collectInteractions(rows)
}

func (r *Repository) InteractionsForUser(ctx context.Context, userID string) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, course_id, rating, is_favorite, created_at
		FROM user_interactions
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions for user %s: %w", userID, err)
	}
	return collectInteractions(rows)
}

func collectInteractions(rows pgx.Rows) ([]domain.Interaction, error) {
	defer rows.Close()

	var items []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		if err := rows.Scan(&in.UserID, &in.CourseID, &in.Rating, &in.IsFavorite, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		items = append(items, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over interactions: %w", err)
	}
	return items, nil
}

// AddInteraction records or replaces the user's interaction with a course.
func (r *Repository) AddInteraction(ctx context.Context, in domain.Interaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_interactions (user_id, course_id, rating, is_favorite, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, course_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			is_favorite = EXCLUDED.is_favorite,
			created_at = EXCLUDED.created_at`,
		in.UserID, in.CourseID, in.Rating, in.IsFavorite, in.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: unknown course %d", domain.ErrInvalidInput, in.CourseID)
		}
		return fmt.Errorf("insert interaction user=%s course=%d: %w", in.UserID, in.CourseID, err)
	}
	return nil
}

// ListUserIDsPaginated pages through users that have any interaction.
func (r *Repository) ListUserIDsPaginated(ctx context.Context, page, limit int) ([]string, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM user_interactions ORDER BY user_id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query user ids for page %d: %w", page, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM user_interactions`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}
