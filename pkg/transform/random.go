package transform

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// lockedSource is a PCG source guarded by a mutex.
type lockedSource struct {
	mu  sync.Mutex
	src rand.PCGSource
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// NewRand returns a generator over a locked source, safe to share between
// goroutines applying the same transform.
func NewRand(seed uint64) *rand.Rand {
	src := &lockedSource{}
	src.Seed(seed)
	return rand.New(src)
}

func defaultRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return NewRand(uint64(time.Now().UnixNano()))
}
