package twitchusers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nicklaw5/helix/v2"
	"github.com/stretchr/testify/assert"
)

func Test_NormalizeLogins(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"nil yields nothing", nil, []string{}},
		{"empty and blank values are dropped", []string{"", " ", ","}, []string{}},
		{"values are trimmed and lowercased", []string{" Alice ", "BOB"}, []string{"alice", "bob"}},
		{"duplicates are dropped case-insensitively", []string{"alice", "ALICE", "bob", "Alice"}, []string{"alice", "bob"}},
		{"comma-separated values are split", []string{"alice,bob", "carol, dave"}, []string{"alice", "bob", "carol", "dave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLogins(tt.values))
		})
	}
}

func Test_NormalizeLogins_caps_batch_size(t *testing.T) {
	values := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		values = append(values, fmt.Sprintf("user%d", i), fmt.Sprintf("USER%d", i))
	}
	got := NormalizeLogins(values)
	assert.Len(t, got, 100)
	assert.Equal(t, "user0", got[0])
	assert.Equal(t, "user99", got[99])
}

func Test_Service_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		cached        []User
		known         []User
		logins        []string
		wantLogins    []string
		wantRequested [][]string
	}{
		{
			"all logins missing from cache are requested in one batch",
			nil,
			[]User{{ID: "1", Login: "alice"}, {ID: "2", Login: "bob"}},
			[]string{"alice", "Bob", "ALICE"},
			[]string{"alice", "bob"},
			[][]string{{"alice", "bob"}},
		},
		{
			"cache hits are not requested",
			[]User{{ID: "1", Login: "alice"}},
			[]User{{ID: "2", Login: "bob"}},
			[]string{"alice", "bob"},
			[]string{"alice", "bob"},
			[][]string{{"bob"}},
		},
		{
			"no request is made if everything is cached",
			[]User{{ID: "1", Login: "alice"}, {ID: "2", Login: "bob"}},
			nil,
			[]string{"bob", "alice"},
			[]string{"bob", "alice"},
			[][]string{},
		},
		{
			"results follow input order rather than hits-then-misses",
			[]User{{ID: "2", Login: "bob"}},
			[]User{{ID: "1", Login: "alice"}, {ID: "3", Login: "carol"}},
			[]string{"carol", "bob", "alice"},
			[]string{"carol", "bob", "alice"},
			[][]string{{"carol", "alice"}},
		},
		{
			"unknown logins are omitted",
			nil,
			[]User{{ID: "1", Login: "alice"}},
			[]string{"alice", "nobody"},
			[]string{"alice"},
			[][]string{{"alice", "nobody"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(DefaultTTL)
			for _, user := range tt.cached {
				cache.Put(user)
			}
			client := &mockTwitchClient{known: tt.known, requested: [][]string{}}
			s := NewService(cache, &mockTokenSource{token: "app-token"}, client)

			users, err := s.Resolve(context.Background(), tt.logins)
			assert.NoError(t, err)
			logins := make([]string, 0, len(users))
			for _, user := range users {
				logins = append(logins, user.Login)
			}
			assert.Equal(t, tt.wantLogins, logins)
			assert.Equal(t, tt.wantRequested, client.requested)
			if len(tt.wantRequested) > 0 {
				assert.Equal(t, "app-token", client.token)
			}
		})
	}
}

func Test_Service_Resolve_requires_logins(t *testing.T) {
	for _, logins := range [][]string{nil, {}, {"", " "}} {
		client := &mockTwitchClient{}
		s := NewService(NewCache(DefaultTTL), &mockTokenSource{token: "app-token"}, client)
		users, err := s.Resolve(context.Background(), logins)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, users)
		assert.Len(t, client.requested, 0)
	}
}

func Test_Service_Resolve_is_idempotent_within_ttl(t *testing.T) {
	client := &mockTwitchClient{known: []User{{ID: "2", Login: "bob"}}}
	s := NewService(NewCache(DefaultTTL), &mockTokenSource{token: "app-token"}, client)

	for i := 0; i < 2; i++ {
		users, err := s.Resolve(context.Background(), []string{"bob"})
		assert.NoError(t, err)
		assert.Equal(t, []User{{ID: "2", Login: "bob"}}, users)
	}
	assert.Len(t, client.requested, 1)
}

func Test_Service_Resolve_refetches_stale_entries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(DefaultTTL)
	cache.now = func() time.Time { return now }
	client := &mockTwitchClient{known: []User{{ID: "1", Login: "alice"}}}
	s := NewService(cache, &mockTokenSource{token: "app-token"}, client)

	_, err := s.Resolve(context.Background(), []string{"alice"})
	assert.NoError(t, err)
	assert.Len(t, client.requested, 1)

	now = now.Add(59 * time.Minute)
	_, err = s.Resolve(context.Background(), []string{"alice"})
	assert.NoError(t, err)
	assert.Len(t, client.requested, 1)

	now = now.Add(2 * time.Minute)
	_, err = s.Resolve(context.Background(), []string{"alice"})
	assert.NoError(t, err)
	assert.Len(t, client.requested, 2)
}

func Test_Service_Resolve_errors(t *testing.T) {
	t.Run("token failure is propagated without calling Twitch", func(t *testing.T) {
		tokenErr := fmt.Errorf("no token for you")
		client := &mockTwitchClient{}
		s := NewService(NewCache(DefaultTTL), &mockTokenSource{err: tokenErr}, client)

		_, err := s.Resolve(context.Background(), []string{"alice"})
		assert.ErrorIs(t, err, tokenErr)
		assert.Len(t, client.requested, 0)
	})
	t.Run("non-200 response is an upstream error", func(t *testing.T) {
		client := &mockTwitchClient{status: http.StatusTooManyRequests, message: "slow down"}
		tokens := &mockTokenSource{token: "app-token"}
		s := NewService(NewCache(DefaultTTL), tokens, client)

		_, err := s.Resolve(context.Background(), []string{"alice"})
		var upstreamErr *UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
		assert.False(t, tokens.invalidated)
	})
	t.Run("401 response invalidates the app token", func(t *testing.T) {
		client := &mockTwitchClient{status: http.StatusUnauthorized, message: "Invalid OAuth token"}
		tokens := &mockTokenSource{token: "app-token"}
		s := NewService(NewCache(DefaultTTL), tokens, client)

		_, err := s.Resolve(context.Background(), []string{"alice"})
		var upstreamErr *UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
		assert.True(t, tokens.invalidated)
	})
	t.Run("transport failure is an error", func(t *testing.T) {
		client := &mockTwitchClient{err: fmt.Errorf("connection reset")}
		s := NewService(NewCache(DefaultTTL), &mockTokenSource{token: "app-token"}, client)

		_, err := s.Resolve(context.Background(), []string{"alice"})
		assert.ErrorContains(t, err, "connection reset")
	})
}

type mockTokenSource struct {
	token       string
	err         error
	invalidated bool
}

func (m *mockTokenSource) Get(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *mockTokenSource) Invalidate() {
	m.invalidated = true
}

type mockTwitchClient struct {
	known   []User
	status  int
	message string
	err     error

	token     string
	requested [][]string
}

func (m *mockTwitchClient) SetAppAccessToken(accessToken string) {
	m.token = accessToken
}

func (m *mockTwitchClient) GetUsers(params *helix.UsersParams) (*helix.UsersResponse, error) {
	m.requested = append(m.requested, params.Logins)
	if m.err != nil {
		return nil, m.err
	}
	if m.status != 0 {
		return &helix.UsersResponse{
			ResponseCommon: helix.ResponseCommon{
				StatusCode:   m.status,
				ErrorMessage: m.message,
			},
		}, nil
	}

	matches := make([]helix.User, 0, len(params.Logins))
	for _, login := range params.Logins {
		for _, user := range m.known {
			if strings.EqualFold(user.Login, login) {
				matches = append(matches, helix.User{
					ID:              user.ID,
					Login:           user.Login,
					DisplayName:     user.DisplayName,
					ProfileImageURL: user.ProfileImageURL,
				})
			}
		}
	}
	return &helix.UsersResponse{
		ResponseCommon: helix.ResponseCommon{
			StatusCode: http.StatusOK,
		},
		Data: helix.ManyUsers{
			Users: matches,
		},
	}, nil
}
