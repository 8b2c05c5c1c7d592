package ptptree

import "sync"

// DirCache is one directory's cached listing: the handles currently
// believed to live there, and a version bumped on every invalidation so
// a consumer holding a stale enumeration cursor can detect it (§4.6:
// "consumers holding an old enumeration cursor must re-open").
type DirCache struct {
	Entries []NodeKey
	Version uint64
}

// dirCacheTable maps a directory's NodeKey to its cached listing.
// Guarded by its own mutex rather than the Arena's: a listing
// invalidation is a different concern than an individual Node's
// lifetime, and the two must not contend on one lock.
type dirCacheTable struct {
	mu      sync.RWMutex
	caches  map[NodeKey]*DirCache
	version uint64
}

func newDirCacheTable() *dirCacheTable {
	return &dirCacheTable{caches: make(map[NodeKey]*DirCache)}
}

// lookup returns the cached listing for dir, or (nil, false) if none is
// cached (first listing, or invalidated since).
func (t *dirCacheTable) lookup(dir NodeKey) (*DirCache, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.caches[dir]
	return c, ok
}

// store records a freshly fetched listing for dir.
func (t *dirCacheTable) store(dir NodeKey, entries []NodeKey) *DirCache {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	c := &DirCache{Entries: entries, Version: t.version}
	t.caches[dir] = c
	return c
}

// invalidate drops dir's cached listing, if any. Called after any
// successful create/send/delete in that directory (§3 invariants).
func (t *dirCacheTable) invalidate(dir NodeKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	delete(t.caches, dir)
}
