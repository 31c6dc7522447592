package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/course-recommender/internal/analytics"
	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/metrics"
	"github.com/actuallystonmai/course-recommender/internal/preference"
)

type PreferencesView struct {
	Email       string             `json:"email"`
	Preferences domain.Preferences `json:"preferences"`
	ValidTopics []string           `json:"valid_topics"`
}

// PreferencesInput is a full preference update. Empty fields take the
// stored defaults.
type PreferencesInput struct {
	Topics     []string
	Level      string
	CourseType string
	Duration   string
	Popularity string
}

func (s *Service) profileStore() (ProfileStore, error) {
	if s.profiles == nil {
		return nil, fmt.Errorf("%w: profile store not configured", domain.ErrDataUnavailable)
	}
	return s.profiles, nil
}

func requireEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	return email, nil
}

func (s *Service) Preferences(ctx context.Context, email string) (*PreferencesView, error) {
	email, err := requireEmail(email)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profileStore()
	if err != nil {
		return nil, err
	}
	snap, err := s.rc.Catalog.Current()
	if err != nil {
		return nil, err
	}

	pctx, cancel := s.withTimeout(ctx)
	defer cancel()
	profile, err := profiles.FindProfile(pctx, email)
	if err != nil {
		return nil, storeErr("find profile", err)
	}

	return &PreferencesView{
		Email:       email,
		Preferences: profile.Preferences(),
		ValidTopics: snap.Subjects(),
	}, nil
}

// UpdatePreferences stores the preferences, dropping topics unknown to the
// catalog, and invalidates the user's cached results.
func (s *Service) UpdatePreferences(ctx context.Context, email string, in PreferencesInput) (*PreferencesView, error) {
	email, err := requireEmail(email)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profileStore()
	if err != nil {
		return nil, err
	}
	snap, err := s.rc.Catalog.Current()
	if err != nil {
		return nil, err
	}

	topics := preference.NormalizeTopics(in.Topics, snap.Subjects())
	if topics == nil {
		topics = []string{}
	}
	if dropped := len(in.Topics) - len(topics); dropped > 0 {
		logging.Ctx(ctx).Warn().Str("email", email).Int("dropped", dropped).Msg("ignoring topics missing from the catalog")
	}
	upd := domain.ProfileUpdate{
		PreferredTopics:      topics,
		SkillLevel:           orDefault(in.Level, domain.LevelAll),
		CourseType:           orDefault(in.CourseType, domain.CourseTypeAll),
		PreferredDuration:    orDefault(in.Duration, domain.DefaultDuration),
		PopularityImportance: orDefault(in.Popularity, domain.DefaultPopular),
	}

	pctx, cancel := s.withTimeout(ctx)
	defer cancel()
	profile, err := profiles.UpdateProfile(pctx, email, upd)
	if err != nil {
		return nil, storeErr("update profile", err)
	}

	s.clearUserCache(ctx, email, profile.UserID)
	return &PreferencesView{
		Email:       email,
		Preferences: profile.Preferences(),
		ValidTopics: snap.Subjects(),
	}, nil
}

func orDefault(v, def string) *string {
	if v = strings.TrimSpace(v); v == "" {
		v = def
	}
	return &v
}

// Favorites returns the catalog rows of the user's favorites. Favorites
// that are no longer in the catalog are skipped.
func (s *Service) Favorites(ctx context.Context, email string) ([]domain.Course, error) {
	email, err := requireEmail(email)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profileStore()
	if err != nil {
		return nil, err
	}
	snap, err := s.rc.Catalog.Current()
	if err != nil {
		return nil, err
	}

	pctx, cancel := s.withTimeout(ctx)
	defer cancel()
	profile, err := profiles.FindProfile(pctx, email)
	if err != nil {
		return nil, storeErr("find profile", err)
	}

	courses := make([]domain.Course, 0, len(profile.Favorites))
	for _, raw := range profile.Favorites {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		if c, ok := snap.Course(id); ok {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

// SetFavorite adds or removes a course from the user's favorites. Unknown
// course ids are stored anyway and only logged.
func (s *Service) SetFavorite(ctx context.Context, email string, courseID int64, favorite bool) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}
	if courseID <= 0 {
		return fmt.Errorf("%w: course_id is required", domain.ErrInvalidInput)
	}
	profiles, err := s.profileStore()
	if err != nil {
		return err
	}
	if snap, err := s.rc.Catalog.Current(); err == nil {
		if _, ok := snap.Course(courseID); !ok {
			logging.Ctx(ctx).Warn().Int64("course_id", courseID).Msg("favorite course not in catalog")
		}
	}

	pctx, cancel := s.withTimeout(ctx)
	defer cancel()
	profile, err := profiles.SetFavorite(pctx, email, strconv.FormatInt(courseID, 10), favorite)
	if err != nil {
		return storeErr("set favorite", err)
	}

	s.clearUserCache(ctx, email, profile.UserID)
	return nil
}

// AddInteraction records a rating or favorite and drops the user's cached
// results.
func (s *Service) AddInteraction(ctx context.Context, in domain.Interaction) error {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	if in.Rating < 0 || in.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if in.Rating == 0 && !in.IsFavorite {
		return fmt.Errorf("%w: a rating or favorite is required", domain.ErrInvalidInput)
	}
	snap, err := s.rc.Catalog.Current()
	if err != nil {
		return err
	}
	if _, ok := snap.Course(in.CourseID); !ok {
		return fmt.Errorf("%w: unknown course %d", domain.ErrInvalidInput, in.CourseID)
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}

	sctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.interactions.AddInteraction(sctx, in); err != nil {
		return storeErr("add interaction", err)
	}

	users := []string{in.UserID}
	if s.profiles != nil {
		if profile, err := s.profiles.FindProfileByUserID(sctx, in.UserID); err == nil {
			users = append(users, profile.Email)
		}
	}
	s.clearUserCache(ctx, users...)
	return nil
}

func (s *Service) clearUserCache(ctx context.Context, users ...string) {
	if s.cache == nil {
		return
	}
	for _, u := range users {
		if u == "" {
			continue
		}
		if err := s.cache.ClearUserCache(ctx, u); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user", u).Msg("cache invalidation failed")
			metrics.CacheErrors.WithLabelValues("clear").Inc()
		}
	}
}

func (s *Service) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	snap, err := s.rc.Catalog.Current()
	if err != nil {
		return nil, err
	}
	d := analytics.Build(snap.Courses())
	return &d, nil
}

type ReloadResult struct {
	Courses      int    `json:"courses"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previous_hash,omitempty"`
	Changed      bool   `json:"changed"`
}

// ReloadCatalog swaps in a fresh snapshot. Cached matrices and results are
// keyed by snapshot hash, so nothing stale survives a content change.
func (s *Service) ReloadCatalog(ctx context.Context) (*ReloadResult, error) {
	var prev string
	if snap, err := s.rc.Catalog.Current(); err == nil {
		prev = snap.Hash()
	}

	snap, err := s.rc.Catalog.Load(ctx)
	if err != nil {
		metrics.RecordCatalogReload(0, err)
		return nil, err
	}
	metrics.RecordCatalogReload(snap.Len(), nil)

	return &ReloadResult{
		Courses:      snap.Len(),
		Hash:         snap.Hash(),
		PreviousHash: prev,
		Changed:      prev != snap.Hash(),
	}, nil
}

type Health struct {
	Status      string          `json:"status"`
	Courses     int             `json:"courses"`
	CatalogHash string          `json:"catalog_hash,omitempty"`
	Models      map[string]bool `json:"models"`
}

func (s *Service) Health() Health {
	h := Health{Status: "ok", Models: map[string]bool{"svd": false, "knn": false}}
	if m := s.rc.Models; m != nil {
		h.Models["svd"] = m.SVD != nil
		h.Models["knn"] = m.KNN != nil
	}
	snap, err := s.rc.Catalog.Current()
	if err != nil {
		h.Status = "degraded"
		return h
	}
	h.Courses = snap.Len()
	h.CatalogHash = snap.Hash()
	return h
}
