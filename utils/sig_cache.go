package utils

// A FIFO cache of already analyzed signatures: the analyze command seeds it
// from previously recorded reports and consults it before re-running a
// target.
type SigCache struct {
	set      map[string]struct{}
	order    []string
	capacity int
}

const DefaultSigCacheCapacity = 10000

// NewSigCache builds a cache of the given capacity; non-positive means the
// default.
func NewSigCache(capacity int) *SigCache {
	if capacity <= 0 {
		capacity = DefaultSigCacheCapacity
	}
	return &SigCache{
		set:      make(map[string]struct{}),
		capacity: capacity,
		order:    make([]string, 0, capacity),
	}
}

func (c *SigCache) Has(signature string) bool {
	_, exists := c.set[signature]
	return exists
}

func (c *SigCache) Add(signature string) {
	if c.Has(signature) {
		return
	}
	if len(c.order) >= c.capacity {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.set, old)
	}
	c.set[signature] = struct{}{}
	c.order = append(c.order, signature)
}

// Seed bulk-loads known signatures, oldest first, subject to eviction.
func (c *SigCache) Seed(signatures []string) {
	for _, signature := range signatures {
		c.Add(signature)
	}
}

func (c *SigCache) Len() int {
	return len(c.set)
}
