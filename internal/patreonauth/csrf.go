package patreonauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultStateTTL is how long a user has to complete the Patreon OAuth challenge
const DefaultStateTTL = 15 * time.Minute

// stateStore tracks the CSRF tokens we've issued as 'state' values for OAuth flows
// that are still in progress. Each token may be consumed exactly once.
type stateStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

func (s *stateStore) issue() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	tokenValue := hex.EncodeToString(bytes)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	s.tokens[tokenValue] = s.now().Add(s.ttl)
	return tokenValue, nil
}

// consume reports whether the given token is pending and unexpired, removing it from
// the store in either case
func (s *stateStore) consume(tokenValue string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.tokens[tokenValue]
	delete(s.tokens, tokenValue)
	s.purgeExpiredLocked()
	return ok && s.now().Before(expiresAt)
}

func (s *stateStore) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *stateStore) purgeExpiredLocked() {
	now := s.now()
	for tokenValue, expiresAt := range s.tokens {
		if !now.Before(expiresAt) {
			delete(s.tokens, tokenValue)
		}
	}
}
