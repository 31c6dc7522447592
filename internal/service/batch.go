package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

// GetBatchRecommendations produces personalized recommendations for one
// page of users from the interaction log.
func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	sctx, cancel := s.withTimeout(ctx)
	userIDs, err := s.interactions.ListUserIDsPaginated(sctx, page, limit)
	cancel()
	if err != nil {
		return nil, storeErr("fetch user ids", err)
	}

	sctx, cancel = s.withTimeout(ctx)
	totalUsers, err := s.interactions.CountUsers(sctx)
	cancel()
	if err != nil {
		return nil, storeErr("count users", err)
	}

	// bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)

	for i, userID := range userIDs {
		wg.Add(1)
		go func(idx int, uid string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = s.processUserForBatch(ctx, uid)
		}(i, userID)
	}
	wg.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func (s *Service) processUserForBatch(ctx context.Context, userID string) domain.BatchUserResult {
	res, err := s.Recommend(ctx, domain.Intent{
		Type:   domain.StrategyPersonalized,
		UserID: userID,
		Limit:  batchRecLimit,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("batch: recommendation failed")
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID:          userID,
		Strategy:        res.Strategy,
		Recommendations: res.Recommendations,
		Status:          domain.StatusSuccess,
		Message:         res.Message,
	}
}

func categorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", "user not found"
	case errors.Is(err, domain.ErrDataUnavailable):
		return "data_unavailable", "a data store is unavailable"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_parameter", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request_timeout", "request timed out"
	}
	return "internal_error", "an unexpected error occurred"
}
