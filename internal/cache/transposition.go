package cache

import (
	"sync"

	"github.com/jsdoublel/symreg/internal/population"
)

// numShards bounds lock contention across worker goroutines; fixed at a
// power of two so the shard index is a cheap mask.
const numShards = 32

type entry struct {
	individual population.Individual
	hits       uint64
}

type shard struct {
	mu   sync.Mutex
	data map[uint64]entry
}

// Transposition is a bounded concurrent fingerprint -> (individual,
// hits) map, sharded so that exactly one lock (the shard's own mutex)
// is ever held across an insert-or-update critical section.
type Transposition struct {
	shards [numShards]*shard
	limit  int // 0 means unbounded
}

// NewTransposition builds an empty transposition cache. limit, if
// positive, caps the total number of distinct fingerprints retained
// (oldest-shard-local entries are not evicted individually; once a
// shard is full, further misses in that shard are simply not cached,
// matching the "bounded" requirement without adding a second lock for
// LRU bookkeeping).
func NewTransposition(limit int) *Transposition {
	t := &Transposition{limit: limit}
	for i := range t.shards {
		t.shards[i] = &shard{data: make(map[uint64]entry)}
	}
	return t
}

func (t *Transposition) shardFor(fingerprint uint64) *shard {
	return t.shards[fingerprint%numShards]
}

// Lookup returns the cached individual for fingerprint, if present.
func (t *Transposition) Lookup(fingerprint uint64) (population.Individual, bool) {
	s := t.shardFor(fingerprint)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[fingerprint]
	return e.individual, ok
}

// InsertOrUpdate records ind under fingerprint. If the fingerprint is
// already present, it bumps the hit counter and leaves the cached
// individual unchanged (the existing, already-evaluated fitness is
// authoritative); otherwise it inserts ind with hit count 1. Callers
// invoke this on both the cache-hit and cache-miss paths of the
// offspring generator.
func (t *Transposition) InsertOrUpdate(fingerprint uint64, ind population.Individual) (hit bool) {
	s := t.shardFor(fingerprint)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[fingerprint]; ok {
		e.hits++
		s.data[fingerprint] = e
		return true
	}
	if t.limit > 0 && len(s.data) >= t.limit/numShards {
		return false
	}
	s.data[fingerprint] = entry{individual: ind, hits: 1}
	return false
}

// Hits returns the recorded hit count for fingerprint (0 if absent).
func (t *Transposition) Hits(fingerprint uint64) uint64 {
	s := t.shardFor(fingerprint)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[fingerprint].hits
}

// Len returns the total number of distinct fingerprints cached across
// all shards.
func (t *Transposition) Len() int {
	total := 0
	for _, s := range t.shards {
		s.mu.Lock()
		total += len(s.data)
		s.mu.Unlock()
	}
	return total
}

// Clear empties the cache. The algorithm drivers do not call it; a cache
// is kept for as long as its owner holds it.
func (t *Transposition) Clear() {
	for _, s := range t.shards {
		s.mu.Lock()
		s.data = make(map[uint64]entry)
		s.mu.Unlock()
	}
}
