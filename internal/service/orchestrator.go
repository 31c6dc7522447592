package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/collaborative"
	"github.com/actuallystonmai/course-recommender/internal/diversify"
	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/interaction"
	"github.com/actuallystonmai/course-recommender/internal/metrics"
	"github.com/actuallystonmai/course-recommender/internal/preference"
	"github.com/actuallystonmai/course-recommender/internal/similarity"
	"github.com/actuallystonmai/course-recommender/internal/textmatch"
)

const (
	topicBoost = 1.5
	levelBoost = 1.2
)

// request carries one pass through the fallback chain. Every transition
// appends a reason that ends up in Result.Message.
type request struct {
	svc     *Service
	snap    *catalog.Snapshot
	intent  domain.Intent
	reasons []string
	log     zerolog.Logger
}

func (r *request) execute(ctx context.Context) (*domain.Result, error) {
	switch r.intent.Type {
	case domain.StrategySearch:
		return r.search(), nil
	case domain.StrategySimilarity:
		return r.similar(), nil
	case domain.StrategyPersonalized:
		return r.personalized(ctx)
	case domain.StrategyCollaborative:
		return r.collaborative(ctx)
	case domain.StrategyHybrid:
		return r.hybrid(ctx)
	}
	return r.trending(), nil
}

func (r *request) fallback(from, to domain.Strategy, reason string) {
	r.note(reason)
	r.log.Info().Str("from", string(from)).Str("to", string(to)).Str("reason", reason).Msg("falling back")
	metrics.RecordFallback(string(from), string(to))
}

func (r *request) note(reason string) {
	r.reasons = append(r.reasons, reason)
}

func (r *request) result(strategy domain.Strategy, recs []domain.Recommendation) *domain.Result {
	res := &domain.Result{
		Strategy:        strategy,
		Query:           r.intent.Query,
		Recommendations: r.snap.Lookup(recs),
		Reasons:         r.reasons,
	}
	if len(r.reasons) > 0 {
		res.Message = strings.Join(r.reasons, "; ")
	}
	return res
}

func (r *request) limit(recs []domain.Recommendation) []domain.Recommendation {
	if len(recs) > r.intent.Limit {
		return recs[:r.intent.Limit]
	}
	return recs
}

func (r *request) diversified(recs []domain.Recommendation) []domain.Recommendation {
	return r.limit(diversify.Limit(recs, r.snap.Courses(), r.svc.opts.MaxPerSubject))
}

// search: text match, then exact-title similarity, then trending.
func (r *request) search() *domain.Result {
	q := r.intent.Query
	if recs := r.textMatch(q); len(recs) > 0 {
		return r.result(domain.StrategySearch, recs)
	}
	r.fallback(domain.StrategySearch, domain.StrategySimilarity, fmt.Sprintf("no courses matched %q", q))

	recs, reason := r.similarTo(q)
	if len(recs) > 0 {
		return r.result(domain.StrategySimilarity, recs)
	}
	r.fallback(domain.StrategySimilarity, domain.StrategyTrending, reason)
	return r.trending()
}

// similar: exact-title similarity, then text match on the same string, then
// trending.
func (r *request) similar() *domain.Result {
	q := r.intent.Query
	recs, reason := r.similarTo(q)
	if len(recs) > 0 {
		return r.result(domain.StrategySimilarity, recs)
	}
	r.fallback(domain.StrategySimilarity, domain.StrategySearch, reason)

	if recs := r.withoutTitle(r.textMatch(q), q); len(recs) > 0 {
		return r.result(domain.StrategySearch, recs)
	}
	r.fallback(domain.StrategySearch, domain.StrategyTrending, fmt.Sprintf("no courses matched %q", q))
	return r.trending()
}

func (r *request) textMatch(q string) []domain.Recommendation {
	return r.limit(textmatch.Recommendations(textmatch.Search(q, r.snap.Courses())))
}

// withoutTitle drops courses titled exactly title, so a similarity request
// never answers with its own course.
func (r *request) withoutTitle(recs []domain.Recommendation, title string) []domain.Recommendation {
	out := recs[:0:0]
	for _, rec := range recs {
		if c, ok := r.snap.Course(rec.CourseID); ok && c.Title == title {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// similarTo returns the neighbors of the course titled title, or a reason
// why there are none.
func (r *request) similarTo(title string) ([]domain.Recommendation, string) {
	courses := r.snap.Courses()
	m := r.svc.rc.Similarity.Matrix(r.snap)

	recs, err := similarity.Recommend(title, courses, m, r.intent.Limit)
	switch {
	case errors.Is(err, domain.ErrTitleNotFound):
		return nil, fmt.Sprintf("no course titled %q", title)
	case err != nil:
		r.log.Error().Err(err).Msg("similarity lookup failed")
		return nil, fmt.Sprintf("similarity unavailable for %q", title)
	case len(recs) == 0:
		return nil, fmt.Sprintf("no courses similar to %q", title)
	}
	return recs, ""
}

// trending ranks the whole catalog by subscribers. It cannot fail.
func (r *request) trending() *domain.Result {
	courses := r.snap.Courses()
	order := make([]int, len(courses))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return courses[order[a]].NumSubscribers > courses[order[b]].NumSubscribers
	})
	if len(order) > r.intent.Limit {
		order = order[:r.intent.Limit]
	}

	var maxSubs int64
	if len(order) > 0 {
		maxSubs = courses[order[0]].NumSubscribers
	}
	recs := make([]domain.Recommendation, len(order))
	for i, idx := range order {
		score := 0.0
		if maxSubs > 0 {
			score = 5 * float64(courses[idx].NumSubscribers) / float64(maxSubs)
		}
		recs[i] = domain.Recommendation{CourseID: courses[idx].ID, Score: score}
	}
	return r.result(domain.StrategyTrending, recs)
}

// user resolves the profile (if any) and interaction history for the
// intent's identity. An unknown email is ErrUserNotFound; an unknown
// user id simply has no profile.
func (r *request) user(ctx context.Context) (string, *domain.UserProfile, []domain.Interaction, error) {
	s := r.svc
	userID := r.intent.UserID

	var profile *domain.UserProfile
	if s.profiles != nil {
		pctx, cancel := s.withTimeout(ctx)
		var err error
		if r.intent.Email != "" {
			profile, err = s.profiles.FindProfile(pctx, r.intent.Email)
		} else {
			profile, err = s.profiles.FindProfileByUserID(pctx, userID)
			if errors.Is(err, domain.ErrUserNotFound) {
				profile, err = nil, nil
			}
		}
		cancel()
		if err != nil {
			return "", nil, nil, storeErr("find profile", err)
		}
	} else if r.intent.Email != "" && userID == "" {
		return "", nil, nil, fmt.Errorf("%w: profile store not configured", domain.ErrDataUnavailable)
	}

	if userID == "" && profile != nil {
		userID = profile.UserID
	}
	if userID == "" {
		return "", profile, nil, nil
	}

	hctx, cancel := s.withTimeout(ctx)
	defer cancel()
	history, err := s.interactions.InteractionsForUser(hctx, userID)
	if err != nil {
		return "", nil, nil, storeErr("load interactions", err)
	}
	return userID, profile, history, nil
}

func (r *request) personalized(ctx context.Context) (*domain.Result, error) {
	userID, profile, history, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	courses := r.snap.Courses()

	var prefs domain.Preferences
	if profile != nil {
		prefs = profile.Preferences()
	}
	topics := preference.NormalizeTopics(prefs.Topics, r.snap.Subjects())
	if dropped := len(prefs.Topics) - len(topics); dropped > 0 {
		r.log.Debug().Int("dropped", dropped).Msg("ignoring topics missing from the catalog")
	}
	if len(topics) == 0 && len(history) > 0 {
		topics = interaction.ImpliedTopics(userID, history, courses)
	}

	f := preference.Filter{Topics: topics, Level: prefs.Level, CourseType: prefs.CourseType}
	if !f.Active() {
		r.fallback(domain.StrategyPersonalized, domain.StrategyCollaborative, "no preferences or liked subjects to personalize with")
		return r.collaborativeFor(ctx, userID, history)
	}

	candidates := interaction.ExcludeInteracted(courses, userID, history)
	recs := rankByPreference(preference.Apply(candidates, f), f)

	included := make(map[int64]struct{}, len(recs))
	for _, rec := range recs {
		included[rec.CourseID] = struct{}{}
	}

	// MinResults counts results after the subject cap.
	kept := diversify.Limit(recs, courses, r.svc.opts.MaxPerSubject)
	current := f
	for len(kept) < r.svc.opts.MinResults {
		relaxed, dropped, ok := preference.Relax(current)
		if !ok {
			break
		}
		current = relaxed

		added := 0
		for _, rec := range rankByPreference(preference.Apply(candidates, current), f) {
			if _, dup := included[rec.CourseID]; dup {
				continue
			}
			included[rec.CourseID] = struct{}{}
			recs = append(recs, rec)
			added++
		}
		reason := fmt.Sprintf("broadened results by relaxing the %s filter", dropped)
		r.note(reason)
		r.log.Info().Str("relaxed", string(dropped)).Int("added", added).Int("total", len(recs)).Msg(reason)
		metrics.RecordFallback(string(domain.StrategyPersonalized), "relax_"+string(dropped))
		kept = diversify.Limit(recs, courses, r.svc.opts.MaxPerSubject)
	}

	if len(kept) == 0 {
		r.fallback(domain.StrategyPersonalized, domain.StrategyCollaborative, "no unseen courses left to recommend")
		return r.collaborativeFor(ctx, userID, history)
	}
	return r.result(domain.StrategyPersonalized, r.limit(kept)), nil
}

// rankByPreference scores by relevance to the original filter, breaking
// ties by subscribers.
func rankByPreference(courses []domain.Course, f preference.Filter) []domain.Recommendation {
	type scored struct {
		c     domain.Course
		score float64
	}
	items := make([]scored, len(courses))
	for i, c := range courses {
		score := 1.0
		if f.HasTopic() && preference.MatchesTopic(c.Subject, f.Topics) {
			score *= topicBoost
		}
		if preference.MatchesLevel(c.Level, f) {
			score *= levelBoost
		}
		items[i] = scored{c: c, score: score}
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].score != items[b].score {
			return items[a].score > items[b].score
		}
		return items[a].c.NumSubscribers > items[b].c.NumSubscribers
	})

	out := make([]domain.Recommendation, len(items))
	for i, it := range items {
		out[i] = domain.Recommendation{CourseID: it.c.ID, Score: it.score}
	}
	return out
}

func (r *request) collaborative(ctx context.Context) (*domain.Result, error) {
	userID, _, history, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	return r.collaborativeFor(ctx, userID, history)
}

// collaborativeFor ranks with the trained predictor, then the similar-user
// heuristic, then trending.
func (r *request) collaborativeFor(ctx context.Context, userID string, history []domain.Interaction) (*domain.Result, error) {
	if userID == "" || len(history) == 0 {
		r.fallback(domain.StrategyCollaborative, domain.StrategyTrending, "no interaction history for collaborative filtering")
		return r.trending(), nil
	}
	courses := r.snap.Courses()
	seen := interaction.Seen(userID, history)

	var reason string
	predictor, err := r.svc.rc.Models.Get(r.intent.Model)
	if err == nil {
		recs, err := collaborative.RankForUser(predictor, userID, courses, seen, 0)
		if err == nil {
			return r.result(domain.StrategyCollaborative, r.diversified(recs)), nil
		}
		if !collaborative.IsPredictionUnavailable(err) {
			r.log.Error().Err(err).Str("model", predictor.Name()).Msg("collaborative ranking failed")
		}
		reason = fmt.Sprintf("%s model has no estimates for this user", predictor.Name())
	} else {
		reason = "no trained collaborative model available"
	}
	r.note(reason + ", using ratings of similar users")
	metrics.RecordFallback("model", "similar_users")

	actx, cancel := r.svc.withTimeout(ctx)
	defer cancel()
	all, err := r.svc.interactions.ListInteractions(actx)
	if err != nil {
		return nil, storeErr("load interaction log", err)
	}

	if recs := r.inCatalog(collaborative.RecommendFromSimilarUsers(userID, all, 0)); len(recs) > 0 {
		return r.result(domain.StrategyCollaborative, r.diversified(recs)), nil
	}
	r.fallback(domain.StrategyCollaborative, domain.StrategyTrending, "no similar users with unseen liked courses")
	return r.trending(), nil
}

func (r *request) inCatalog(recs []domain.Recommendation) []domain.Recommendation {
	out := recs[:0:0]
	for _, rec := range recs {
		if _, ok := r.snap.Course(rec.CourseID); ok {
			out = append(out, rec)
		}
	}
	return out
}
