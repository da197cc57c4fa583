package service

import "sync"

// inflightGuard is a keyed try-lock. A second mutation on the same key is
// rejected instead of queued, so the caller can surface a conflict while
// the first request is still running.
type inflightGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{keys: make(map[string]struct{})}
}

// acquire reports whether the key was free and is now held.
func (g *inflightGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.keys[key]; held {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

func (g *inflightGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}

// generationGuard hands out per-key fetch generations so that out-of-order
// responses can be detected. Only the response holding the latest
// generation for its key may persist state.
type generationGuard struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func newGenerationGuard() *generationGuard {
	return &generationGuard{gens: make(map[string]uint64)}
}

// next increments and returns the generation for the key.
func (g *generationGuard) next(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[key]++
	return g.gens[key]
}

// isCurrent reports whether gen is still the latest generation for the key.
func (g *generationGuard) isCurrent(key string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[key] == gen
}
