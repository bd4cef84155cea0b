package twitchusers

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a user's details are served from the cache before we ask
// Twitch again
const DefaultTTL = time.Hour

// User is the subset of Twitch user details that we expose to clients
type User struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

type cacheEntry struct {
	user      User
	fetchedAt time.Time
}

// Cache stores user details keyed by lowercase login. Entries are never evicted:
// stale entries are simply ignored until they're overwritten by a fresh fetch.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached details for the given login, provided they were fetched
// within the TTL
func (c *Cache) Get(login string) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[strings.ToLower(login)]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return User{}, false
	}
	return entry.user, true
}

// Put records freshly-fetched details for a user, replacing any existing entry
func (c *Cache) Put(user User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[strings.ToLower(user.Login)] = cacheEntry{
		user:      user,
		fetchedAt: c.now(),
	}
}
