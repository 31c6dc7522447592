package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/collaborative"
	"github.com/actuallystonmai/course-recommender/internal/domain"
)

type staticSource struct {
	courses []domain.Course
	err     error
}

func (s *staticSource) LoadCourses(context.Context) ([]domain.Course, error) {
	return s.courses, s.err
}

type memInteractions struct {
	mu    sync.Mutex
	items []domain.Interaction
	err   error
}

func (m *memInteractions) ListInteractions(context.Context) ([]domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Interaction(nil), m.items...), m.err
}

func (m *memInteractions) InteractionsForUser(_ context.Context, userID string) ([]domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Interaction
	for _, in := range m.items {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memInteractions) AddInteraction(_ context.Context, in domain.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, in)
	return nil
}

func (m *memInteractions) users() []string {
	set := map[string]struct{}{}
	for _, in := range m.items {
		set[in.UserID] = struct{}{}
	}
	var ids []string
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *memInteractions) ListUserIDsPaginated(_ context.Context, page, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.users()
	start := (page - 1) * limit
	if start >= len(ids) {
		return nil, nil
	}
	end := min(start+limit, len(ids))
	return ids[start:end], nil
}

func (m *memInteractions) CountUsers(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users()), nil
}

type memProfiles struct {
	byEmail map[string]*domain.UserProfile
}

func newMemProfiles(profiles ...domain.UserProfile) *memProfiles {
	m := &memProfiles{byEmail: map[string]*domain.UserProfile{}}
	for i := range profiles {
		p := profiles[i]
		m.byEmail[p.Email] = &p
	}
	return m
}

func (m *memProfiles) FindProfile(_ context.Context, email string) (*domain.UserProfile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) FindProfileByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	for _, p := range m.byEmail {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memProfiles) UpdateProfile(_ context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.PreferredTopics != nil {
		p.PreferredTopics = upd.PreferredTopics
	}
	if upd.SkillLevel != nil {
		p.SkillLevel = *upd.SkillLevel
	}
	if upd.CourseType != nil {
		p.CourseType = *upd.CourseType
	}
	if upd.PreferredDuration != nil {
		p.PreferredDuration = *upd.PreferredDuration
	}
	if upd.PopularityImportance != nil {
		p.PopularityImportance = *upd.PopularityImportance
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) SetFavorite(_ context.Context, email, courseID string, favorite bool) (*domain.UserProfile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	var kept []string
	present := false
	for _, f := range p.Favorites {
		if f == courseID {
			present = true
			if !favorite {
				continue
			}
		}
		kept = append(kept, f)
	}
	if favorite && !present {
		kept = append(kept, courseID)
	}
	p.Favorites = kept
	cp := *p
	return &cp, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]domain.Result
	cleared []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]domain.Result{}}
}

func (c *memCache) Get(_ context.Context, key string) (*domain.Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *memCache) Set(_ context.Context, key string, res *domain.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *res
	return nil
}

func (c *memCache) ClearUserCache(_ context.Context, user string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, user)
	for k := range c.entries {
		delete(c.entries, k)
	}
	return nil
}

type stubPredictor struct {
	name      string
	estimates map[string]map[int64]float64
}

func (p *stubPredictor) Name() string { return p.name }

func (p *stubPredictor) Predict(userID string, courseID int64) (float64, error) {
	row, ok := p.estimates[userID]
	if !ok {
		return 0, &collaborative.PredictionError{UserID: userID, CourseID: courseID, Reason: "unknown user"}
	}
	est, ok := row[courseID]
	if !ok {
		return 0, &collaborative.PredictionError{UserID: userID, CourseID: courseID, Reason: "unknown course"}
	}
	return est, nil
}

type fixture struct {
	svc          *Service
	loader       *catalog.Loader
	source       *staticSource
	interactions *memInteractions
	profiles     *memProfiles
	cache        *memCache
	models       *collaborative.Models
}

func newFixture(t *testing.T, courses []domain.Course) *fixture {
	t.Helper()
	f := &fixture{
		source:       &staticSource{courses: courses},
		interactions: &memInteractions{},
		profiles:     newMemProfiles(),
		cache:        newMemCache(),
		models:       &collaborative.Models{},
	}
	f.loader = catalog.NewLoader(f.source, time.Second)
	_, err := f.loader.Load(context.Background())
	require.NoError(t, err)

	f.svc = NewService(
		&RecommenderContext{Catalog: f.loader, Models: f.models},
		f.interactions,
		f.profiles,
		f.cache,
		Options{MaxPerSubject: 3, MinResults: 5, StoreTimeout: time.Second},
	)
	return f
}

func ids(res *domain.Result) []int64 {
	out := make([]int64, len(res.Recommendations))
	for i, r := range res.Recommendations {
		out[i] = r.ID
	}
	return out
}

var errStoreDown = errors.New("connection refused")

func catalogFixture() []domain.Course {
	return []domain.Course{
		{ID: 1, Title: "Python for Data Science", Subject: "Data Science", Level: "Beginner Level", NumSubscribers: 900},
		{ID: 2, Title: "Machine Learning A-Z", Subject: "Data Science", Level: "All Levels", NumSubscribers: 1200},
		{ID: 3, Title: "Complete Web Developer Bootcamp", Subject: "Web Development", Level: "All Levels", NumSubscribers: 5000, IsPaid: true, Price: 200},
		{ID: 4, Title: "JavaScript Basics", Subject: "Web Development", Level: "Beginner Level", NumSubscribers: 3000},
		{ID: 5, Title: "Advanced JavaScript Patterns", Subject: "Web Development", Level: "Expert Level", NumSubscribers: 800, IsPaid: true, Price: 50},
		{ID: 6, Title: "Accounting Fundamentals", Subject: "Business Finance", Level: "Beginner Level", NumSubscribers: 2500, IsPaid: true, Price: 20},
		{ID: 7, Title: "Stock Trading Basics", Subject: "Business Finance", Level: "All Levels", NumSubscribers: 4000},
		{ID: 8, Title: "Financial Modeling", Subject: "Business Finance", Level: "Intermediate Level", NumSubscribers: 700, IsPaid: true, Price: 95},
		{ID: 9, Title: "Photoshop Basics", Subject: "Graphic Design", Level: "Beginner Level", NumSubscribers: 3500},
		{ID: 10, Title: "Logo Design Masterclass", Subject: "Graphic Design", Level: "Intermediate Level", NumSubscribers: 600, IsPaid: true, Price: 30},
	}
}
