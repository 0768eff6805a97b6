package server

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mmynk/debtfree/internal/storage/sqlite"
)

// userKeyRe matches keys produced by auth.EmailKey. Anything else is
// rejected before it can become a filesystem path.
var userKeyRe = regexp.MustCompile(`^[a-z0-9@_+-]+$`)

// Pool hands out one SQLite store per user key, opening databases lazily and
// closing them after a period of inactivity.
type Pool struct {
	dir string

	mu    sync.Mutex
	cache *gocache.Cache
}

// NewPool creates a pool storing databases under dir. Handles idle for ttl
// are closed on a later Get, never by a background janitor, so an expired
// handle cannot be closed in the instant between a lookup and its refresh.
func NewPool(dir string, ttl time.Duration) *Pool {
	c := gocache.New(ttl, 0)
	c.OnEvicted(func(_ string, v interface{}) {
		v.(*sqlite.SQLiteStore).Close()
	})
	return &Pool{dir: dir, cache: c}
}

// Get returns the store for the given user key, opening it if needed.
// Each access refreshes the idle timer. Expired handles are reaped here,
// under the same lock that serves lookups.
func (p *Pool) Get(userKey string) (*sqlite.SQLiteStore, error) {
	if !userKeyRe.MatchString(userKey) {
		return nil, fmt.Errorf("invalid user key %q", userKey)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache.DeleteExpired() // triggers OnEvicted for idle handles

	if v, ok := p.cache.Get(userKey); ok {
		store := v.(*sqlite.SQLiteStore)
		p.cache.SetDefault(userKey, store)
		return store, nil
	}

	store, err := sqlite.New(filepath.Join(p.dir, userKey+".db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store for %s: %w", userKey, err)
	}
	p.cache.SetDefault(userKey, store)
	return store, nil
}

// Close closes every open store.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.cache.Items() {
		p.cache.Delete(key) // triggers OnEvicted
	}
}
