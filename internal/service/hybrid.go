package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/collaborative"
	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/interaction"
)

const hybridSeedCourses = 3

// hybrid blends normalized predictor estimates with content hits: courses
// sharing subject and level with the user's top rated courses.
func (r *request) hybrid(ctx context.Context) (*domain.Result, error) {
	userID, _, history, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" || len(history) == 0 {
		r.fallback(domain.StrategyHybrid, domain.StrategyTrending, "no interaction history for hybrid recommendations")
		return r.trending(), nil
	}

	candidates := interaction.ExcludeInteracted(r.snap.Courses(), userID, history)
	content := r.contentHits(history, candidates)

	var cf map[int64]float64
	if predictor, err := r.svc.rc.Models.Get(r.intent.Model); err == nil {
		cf, err = estimates(predictor, userID, candidates)
		if err != nil {
			r.log.Error().Err(err).Str("model", predictor.Name()).Msg("hybrid estimates failed")
			cf = nil
		}
		if len(cf) == 0 {
			r.note(fmt.Sprintf("%s model has no estimates for this user, hybrid uses content only", predictor.Name()))
		}
	} else {
		r.note("no trained collaborative model available, hybrid uses content only")
	}

	weight := r.svc.opts.CFWeight
	if len(cf) == 0 {
		weight = 0
	}
	cfNorm := normalizeScores(cf)

	var recs []domain.Recommendation
	for _, c := range candidates {
		est, hasCF := cfNorm[c.ID]
		_, hit := content[c.ID]
		if !hasCF && !hit {
			continue
		}
		score := weight * est
		if hit {
			score += 1 - weight
		}
		recs = append(recs, domain.Recommendation{CourseID: c.ID, Score: score})
	}

	if len(recs) == 0 {
		r.fallback(domain.StrategyHybrid, domain.StrategyTrending, "no collaborative or content signal for this user")
		return r.trending(), nil
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	return r.result(domain.StrategyHybrid, r.diversified(recs)), nil
}

// contentHits returns candidates matching the subject and level of one of
// the user's top rated courses.
func (r *request) contentHits(history []domain.Interaction, candidates []domain.Course) map[int64]struct{} {
	rated := make([]domain.Interaction, 0, len(history))
	for _, in := range history {
		if in.Rating > 0 {
			rated = append(rated, in)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return rated[i].Rating > rated[j].Rating })

	type profileKey struct{ subject, level string }
	seeds := make(map[profileKey]struct{})
	used := 0
	for _, in := range rated {
		if used >= hybridSeedCourses {
			break
		}
		c, ok := r.snap.Course(in.CourseID)
		if !ok {
			continue
		}
		used++
		seeds[profileKey{strings.ToLower(c.Subject), strings.ToLower(c.Level)}] = struct{}{}
	}

	hits := make(map[int64]struct{})
	for _, c := range candidates {
		if _, ok := seeds[profileKey{strings.ToLower(c.Subject), strings.ToLower(c.Level)}]; ok {
			hits[c.ID] = struct{}{}
		}
	}
	return hits
}

// estimates skips courses the predictor cannot score and stops on any
// other predictor failure.
func estimates(p collaborative.Predictor, userID string, courses []domain.Course) (map[int64]float64, error) {
	out := make(map[int64]float64)
	for _, c := range courses {
		est, err := p.Predict(userID, c.ID)
		if err != nil {
			if collaborative.IsPredictionUnavailable(err) {
				continue
			}
			return nil, fmt.Errorf("predict course %d: %w", c.ID, err)
		}
		out[c.ID] = collaborative.Clip(est)
	}
	return out, nil
}

// normalizeScores min-max scales to [0,1]; identical scores become 0.5.
func normalizeScores(scores map[int64]float64) map[int64]float64 {
	out := make(map[int64]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	first := true
	var lo, hi float64
	for _, v := range scores {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}

	span := hi - lo
	for id, v := range scores {
		if span == 0 {
			out[id] = 0.5
			continue
		}
		out[id] = (v - lo) / span
	}
	return out
}
