package liftover

import (
	"context"
	"sync"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

// Cache wraps a Lifter and remembers definitive answers per
// (from, to, interval). Transport failures are not cached.
type Cache struct {
	next    Lifter
	results map[cacheKey]Result
	mu      sync.RWMutex
}

type cacheKey struct {
	from, to assembly.ID
	iv       position.Interval
}

func NewCache(next Lifter) *Cache {
	return &Cache{
		next:    next,
		results: make(map[cacheKey]Result),
	}
}

func (c *Cache) Lift(ctx context.Context, iv position.Interval, from, to assembly.ID) Result {
	key := cacheKey{from: from, to: to, iv: iv}

	c.mu.RLock()
	res, ok := c.results[key]
	c.mu.RUnlock()
	if ok {
		return res
	}

	res = c.next.Lift(ctx, iv, from, to)
	if cacheable(res) {
		c.mu.Lock()
		c.results[key] = res
		c.mu.Unlock()
	}
	return res
}

// Len returns the number of cached answers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

func cacheable(res Result) bool {
	switch res.Reason {
	case ReasonNone, ReasonNoMapping, ReasonMultipleMappings:
		return true
	}
	return false
}
