package artifact

import (
	"fmt"
	"sort"
)

// Pool maps derivation keys and base-resource names to artifact refs. A pool
// is created fresh for each run, grows monotonically while the graph is
// constructed, and is read-only afterwards; entries are never removed or
// replaced. Construction is single-threaded, so the pool needs no locking.
type Pool struct {
	entries map[string]Ref
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{entries: make(map[string]Ref)}
}

// Has reports whether a key is already resolved.
func (p *Pool) Has(key string) bool {
	_, ok := p.entries[key]
	return ok
}

// Get returns the ref cached under key.
func (p *Pool) Get(key string) (Ref, bool) {
	ref, ok := p.entries[key]
	return ref, ok
}

// Put caches a ref under key. Overwriting an existing entry is a programmer
// error: a key's artifact is immutable once derived.
func (p *Pool) Put(key string, ref Ref) error {
	if _, ok := p.entries[key]; ok {
		return fmt.Errorf("pool entry %q already exists", key)
	}
	p.entries[key] = ref
	return nil
}

// Len returns the number of cached entries.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Keys returns all cached keys in sorted order.
func (p *Pool) Keys() []string {
	keys := make([]string, 0, len(p.entries))
	for k := range p.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
