package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

// Source is the authoritative course dataset.
type Source interface {
	LoadCourses(ctx context.Context) ([]domain.Course, error)
}

// Loader reads the catalog through a circuit breaker with a bounded timeout
// and keeps the current snapshot.
type Loader struct {
	source  Source
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]domain.Course]
	current atomic.Pointer[Snapshot]
}

func NewLoader(source Source, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	log := logging.Component("catalog")
	return &Loader{
		source:  source,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[[]domain.Course](gobreaker.Settings{
			Name:    "catalog",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("catalog breaker state changed")
			},
		}),
	}
}

// Load reads the dataset and swaps in a new snapshot. Any failure, including
// a timeout or an open breaker, is reported as domain.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	courses, err := l.breaker.Execute(func() ([]domain.Course, error) {
		return l.source.LoadCourses(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog: %v", domain.ErrDataUnavailable, err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", domain.ErrDataUnavailable)
	}

	snap := NewSnapshot(courses)
	prev := l.current.Swap(snap)

	ev := logging.Ctx(ctx).Info().Str("component", "catalog").Int("courses", snap.Len()).Str("hash", snap.Hash())
	if prev != nil {
		ev = ev.Str("previous_hash", prev.Hash())
	}
	ev.Msg("catalog loaded")
	return snap, nil
}

// Current returns the last loaded snapshot or domain.ErrDataUnavailable if
// nothing has been loaded yet.
func (l *Loader) Current() (*Snapshot, error) {
	snap := l.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: catalog not loaded", domain.ErrDataUnavailable)
	}
	return snap, nil
}
