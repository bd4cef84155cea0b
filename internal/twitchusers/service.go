package twitchusers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golden-vcr/relay"
	"github.com/nicklaw5/helix/v2"
)

// ErrValidation is returned when a lookup doesn't name any usable logins
var ErrValidation = errors.New("at least one login is required")

// UpstreamError indicates that the Twitch API rejected our Get Users request
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("got response %d from Get Users request: %s", e.StatusCode, e.Message)
}

// Service resolves Twitch user details by login, consulting the cache first and the
// Twitch API only for logins that miss the cache
type Service struct {
	cache  *Cache
	tokens TokenSource
	client TwitchClient
}

func NewService(cache *Cache, tokens TokenSource, client TwitchClient) *Service {
	return &Service{
		cache:  cache,
		tokens: tokens,
		client: client,
	}
}

// Resolve returns details for each of the requested logins that corresponds to an
// existing Twitch user, in the order the logins were given. Logins are deduplicated
// case-insensitively, and only the first relay.MaxLoginsPerLookup are considered.
func (s *Service) Resolve(ctx context.Context, logins []string) ([]User, error) {
	logins = NormalizeLogins(logins)
	if len(logins) == 0 {
		return nil, ErrValidation
	}

	// Split our logins into those we already have fresh details for, and those we need
	// to request from Twitch
	found := make(map[string]User, len(logins))
	misses := make([]string, 0, len(logins))
	for _, login := range logins {
		if user, ok := s.cache.Get(login); ok {
			found[login] = user
		} else {
			misses = append(misses, login)
		}
	}

	if len(misses) > 0 {
		fetched, err := s.fetch(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, user := range fetched {
			s.cache.Put(user)
			found[strings.ToLower(user.Login)] = user
		}
	}

	// Logins that Twitch doesn't recognize are simply omitted
	users := make([]User, 0, len(found))
	for _, login := range logins {
		if user, ok := found[login]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// fetch makes a single Get Users request to resolve the given logins
func (s *Service) fetch(ctx context.Context, logins []string) ([]User, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.client.SetAppAccessToken(token)

	r, err := s.client.GetUsers(&helix.UsersParams{Logins: logins})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	if r.StatusCode != http.StatusOK {
		// If Twitch no longer accepts our token, make sure the next request gets a new
		// one
		if r.StatusCode == http.StatusUnauthorized {
			s.tokens.Invalidate()
		}
		return nil, &UpstreamError{StatusCode: r.StatusCode, Message: r.ErrorMessage}
	}

	users := make([]User, 0, len(r.Data.Users))
	for _, u := range r.Data.Users {
		users = append(users, User{
			ID:              u.ID,
			Login:           u.Login,
			DisplayName:     u.DisplayName,
			ProfileImageURL: u.ProfileImageURL,
		})
	}
	return users, nil
}

// NormalizeLogins trims and lowercases the given logins, dropping empty values and
// duplicates while preserving order. Values may themselves be comma-separated lists.
func NormalizeLogins(values []string) []string {
	logins := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, login := range strings.Split(value, ",") {
			login = strings.ToLower(strings.TrimSpace(login))
			if login == "" {
				continue
			}
			if _, ok := seen[login]; ok {
				continue
			}
			if len(logins) >= relay.MaxLoginsPerLookup {
				return logins
			}
			seen[login] = struct{}{}
			logins = append(logins, login)
		}
	}
	return logins
}
