package similarity

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

// Cache keeps the matrix of the most recent catalog snapshot. An entry is
// only served for the snapshot hash it was built from.
type Cache struct {
	mu     sync.RWMutex
	hash   string
	matrix *Matrix
	group  singleflight.Group

	// OnBuild, if set, is called after a matrix is computed.
	OnBuild func(size int)
}

func NewCache() *Cache {
	return &Cache{}
}

// Matrix returns the similarity matrix for snap, building it if the cached
// one belongs to a different snapshot. Concurrent builds for the same
// snapshot are collapsed.
func (c *Cache) Matrix(snap *catalog.Snapshot) *Matrix {
	hash := snap.Hash()

	c.mu.RLock()
	if c.hash == hash && c.matrix != nil {
		m := c.matrix
		c.mu.RUnlock()
		return m
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do(hash, func() (any, error) {
		m := NewMatrix(BuildVectors(snap.Courses()))

		c.mu.Lock()
		c.hash = hash
		c.matrix = m
		c.mu.Unlock()

		logging.Debug().Str("component", "similarity").Str("hash", hash).Int("size", m.Size()).
			Msg("similarity matrix built")
		if c.OnBuild != nil {
			c.OnBuild(m.Size())
		}
		return m, nil
	})
	return v.(*Matrix)
}
