// Package service wires the recommendation components behind a single
// request-intent API and applies the fallback chain.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/course-recommender/internal/cache"
	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/collaborative"
	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/metrics"
	"github.com/actuallystonmai/course-recommender/internal/similarity"
)

const (
	defaultLimit     = 10
	maxLimit         = 50
	batchConcurrency = 10
	batchRecLimit    = 10
	defaultCFWeight  = 0.7
)

type CatalogProvider interface {
	Current() (*catalog.Snapshot, error)
	Load(ctx context.Context) (*catalog.Snapshot, error)
}

type InteractionStore interface {
	ListInteractions(ctx context.Context) ([]domain.Interaction, error)
	InteractionsForUser(ctx context.Context, userID string) ([]domain.Interaction, error)
	AddInteraction(ctx context.Context, in domain.Interaction) error
	ListUserIDsPaginated(ctx context.Context, page, limit int) ([]string, error)
	CountUsers(ctx context.Context) (int, error)
}

type ProfileStore interface {
	FindProfile(ctx context.Context, email string) (*domain.UserProfile, error)
	FindProfileByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error)
	SetFavorite(ctx context.Context, email, courseID string, favorite bool) (*domain.UserProfile, error)
}

type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.Result, bool, error)
	Set(ctx context.Context, key string, res *domain.Result) error
	ClearUserCache(ctx context.Context, user string) error
}

// RecommenderContext holds the process-wide state built once at startup:
// the catalog, the similarity matrix cache and the trained predictors.
type RecommenderContext struct {
	Catalog    CatalogProvider
	Similarity *similarity.Cache
	Models     *collaborative.Models
}

type Options struct {
	MaxPerSubject int
	MinResults    int
	StoreTimeout  time.Duration
	CFWeight      float64
}

func (o Options) withDefaults() Options {
	if o.MinResults <= 0 {
		o.MinResults = 5
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	if o.CFWeight <= 0 || o.CFWeight > 1 {
		o.CFWeight = defaultCFWeight
	}
	return o
}

type Service struct {
	rc           *RecommenderContext
	interactions InteractionStore
	profiles     ProfileStore
	cache        ResultCache
	opts         Options
}

// NewService builds the orchestrator. profiles and cache may be nil.
func NewService(rc *RecommenderContext, interactions InteractionStore, profiles ProfileStore, cache ResultCache, opts Options) *Service {
	if rc.Similarity == nil {
		rc.Similarity = similarity.NewCache()
	}
	if rc.Similarity.OnBuild == nil {
		rc.Similarity.OnBuild = func(int) { metrics.SimilarityMatrixBuilds.Inc() }
	}
	return &Service{
		rc:           rc,
		interactions: interactions,
		profiles:     profiles,
		cache:        cache,
		opts:         opts.withDefaults(),
	}
}

// Recommend answers a request intent. Only ErrInvalidInput,
// ErrDataUnavailable and ErrUserNotFound reach the caller; every other
// lack of signal is recovered by falling back and noted in Result.Message.
func (s *Service) Recommend(ctx context.Context, in domain.Intent) (*domain.Result, error) {
	start := time.Now()
	log := logging.Ctx(ctx)

	in, err := normalizeIntent(in)
	if err != nil {
		metrics.RecordError(string(in.Type), errorKind(err))
		return nil, err
	}

	snap, err := s.rc.Catalog.Current()
	if err != nil {
		metrics.RecordError(string(in.Type), errorKind(err))
		return nil, err
	}

	key := cache.Key(snap.Hash(), in)
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
			metrics.CacheErrors.WithLabelValues("get").Inc()
		}
		metrics.RecordCacheLookup(found)
		if found {
			cached.CacheHit = true
			return cached, nil
		}
	}

	req := &request{svc: s, snap: snap, intent: in, log: log.With().Str("intent", string(in.Type)).Logger()}
	res, err := req.execute(ctx)
	if err != nil {
		metrics.RecordError(string(in.Type), errorKind(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
			metrics.CacheErrors.WithLabelValues("set").Inc()
		}
	}

	metrics.RecordRecommendation(string(in.Type), string(res.Strategy), time.Since(start))
	log.Debug().Str("intent", string(in.Type)).Str("strategy", string(res.Strategy)).
		Int("results", len(res.Recommendations)).Dur("took", time.Since(start)).Msg("recommendation served")
	return res, nil
}

func normalizeIntent(in domain.Intent) (domain.Intent, error) {
	in.Query = strings.TrimSpace(in.Query)
	in.UserID = strings.TrimSpace(in.UserID)
	in.Email = strings.TrimSpace(in.Email)
	in.Model = strings.ToLower(strings.TrimSpace(in.Model))

	switch in.Type {
	case domain.StrategySearch, domain.StrategySimilarity:
		if in.Query == "" {
			return in, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
		}
	case domain.StrategyPersonalized, domain.StrategyCollaborative, domain.StrategyHybrid:
		if in.UserID == "" && in.Email == "" {
			return in, fmt.Errorf("%w: user_id or email is required", domain.ErrInvalidInput)
		}
	case domain.StrategyTrending:
	default:
		return in, fmt.Errorf("%w: unknown recommendation type %q", domain.ErrInvalidInput, in.Type)
	}

	switch in.Model {
	case "", "svd", "knn":
	default:
		return in, fmt.Errorf("%w: unknown model %q", domain.ErrInvalidInput, in.Model)
	}

	if in.Limit <= 0 {
		in.Limit = defaultLimit
	} else if in.Limit > maxLimit {
		in.Limit = maxLimit
	}
	return in, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// storeErr keeps caller-facing sentinels and reports everything else,
// timeouts included, as ErrDataUnavailable.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDataUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, op, err)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	}
	return "internal"
}
