package secrets

import (
	"sync"
	"time"

	"github.com/vendoria/commerce-service/internal/adapters/ports"
)

// secretCache is a TTL cache shared by the remote backends so webhook
// verification does not hit the secret store on every request
type secretCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

func newSecretCache(ttl time.Duration) *secretCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &secretCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *secretCache) get(name string) *ports.Secret {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[name]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(name string, secret *ports.Secret) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cacheEntry{secret: secret, expiresAt: time.Now().Add(c.ttl)}
}

func (c *secretCache) invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
