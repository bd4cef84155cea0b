package apptoken

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nicklaw5/helix/v2"
	"golang.org/x/sync/singleflight"
)

// ErrTokenAcquisition is returned when Twitch does not give us a usable app access
// token: it is never retried internally
var ErrTokenAcquisition = errors.New("failed to acquire Twitch app access token")

// DefaultRefreshMargin is how long before its stated expiry we stop trusting a token
const DefaultRefreshMargin = 60 * time.Second

// TwitchClient represents the subset of Twitch API client functionality used to
// request app access tokens
type TwitchClient interface {
	RequestAppAccessToken(scopes []string) (*helix.AppAccessTokenResponse, error)
}

// Cache holds the current app access token along with the time at which it should no
// longer be used
type Cache struct {
	client        TwitchClient
	refreshMargin time.Duration
	now           func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	refreshes singleflight.Group
}

func NewCache(client TwitchClient, refreshMargin time.Duration) *Cache {
	return &Cache{
		client:        client,
		refreshMargin: refreshMargin,
		now:           time.Now,
	}
}

// Get returns a valid app access token, requesting a new one from Twitch if we don't
// have a token or if the one we have is about to expire
func (c *Cache) Get(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	v, err, _ := c.refreshes.Do("app", func() (interface{}, error) {
		// Another caller may have finished a refresh while we were waiting
		if token, ok := c.cached(); ok {
			return token, nil
		}
		return c.refresh()
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate discards the cached token, so that the next call to Get will fetch a new
// one
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

func (c *Cache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.now().Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *Cache) refresh() (string, error) {
	r, err := c.client.RequestAppAccessToken(nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenAcquisition, err)
	}
	if r.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: got response %d: %s", ErrTokenAcquisition, r.StatusCode, r.ErrorMessage)
	}
	if r.Data.AccessToken == "" {
		return "", fmt.Errorf("%w: response did not include an access token", ErrTokenAcquisition)
	}

	// A token that lives no longer than the margin is still returned to this caller,
	// but it's stale as soon as it's stored
	lifetime := time.Duration(r.Data.ExpiresIn)*time.Second - c.refreshMargin
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = r.Data.AccessToken
	c.expiresAt = c.now().Add(lifetime)
	return c.token, nil
}
