package digestcache

import (
	"context"
	"fmt"
	"sync"

	"plexi/internal/domain"
)

type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]domain.Digest
}

// NewMemoryStore is the in-process fallback used when no redis address
// is configured. Observations do not survive a restart.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]domain.Digest)}
}

func (s *MemoryStore) Observe(_ context.Context, namespace string, epoch domain.Epoch, digest domain.Digest) (domain.Digest, error) {
	key := namespace + ":" + epoch.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.seen[key]
	if !ok {
		s.seen[key] = digest
		return digest, nil
	}
	if !prior.Equal(digest) {
		return prior, fmt.Errorf("%w: %s epoch %s: saw %s, now %s",
			domain.ErrEquivocation, namespace, epoch, prior, digest)
	}
	return prior, nil
}
