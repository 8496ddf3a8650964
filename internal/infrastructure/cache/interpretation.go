package cache

import (
	"context"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// InterpretationStore memoizes interpreted queries
type InterpretationStore struct {
	cache *MemoryCache[domain.ProductQuery]
}

// NewInterpretationStore creates a store backed by a memory cache
func NewInterpretationStore(cache *MemoryCache[domain.ProductQuery]) *InterpretationStore {
	return &InterpretationStore{cache: cache}
}

// Get returns a memoized descriptor
func (s *InterpretationStore) Get(key string) (domain.ProductQuery, bool) {
	q, err := s.cache.Get(context.Background(), key)
	if err != nil {
		return domain.ProductQuery{}, false
	}
	return q, true
}

// Set memoizes a descriptor for ttl
func (s *InterpretationStore) Set(key string, query domain.ProductQuery, ttl time.Duration) {
	_ = s.cache.Set(context.Background(), key, query, ttl)
}
