package patreonauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golden-vcr/relay"
	"golang.org/x/oauth2"
)

var (
	// ErrInvalidState is returned when a callback presents a 'state' value that we did
	// not issue, that has already been used, or that has expired
	ErrInvalidState = errors.New("CSRF token verification failed")
	// ErrMissingCode is returned when a callback does not carry an authorization code
	ErrMissingCode = errors.New("'code' value not found in URL query params")
)

// ExchangeError indicates that Patreon failed to complete one of the requests we make
// after the user has been redirected back to us
type ExchangeError struct {
	Step string
	Err  error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// Membership describes a user who has signed in with Patreon
type Membership struct {
	Tier        Tier
	FullName    string
	Email       string
	ImageURL    string
	AccessToken string
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	StateTTL     time.Duration

	// Endpoint and IdentityURL default to Patreon's own
	Endpoint    oauth2.Endpoint
	IdentityURL string

	// HTTPClient, if set, is used for all requests to Patreon
	HTTPClient *http.Client
}

// Exchanger drives the Patreon authorization code grant flow: it issues the URL that
// starts each flow, then validates and completes the flow once the user is redirected
// back to us
type Exchanger struct {
	config      *oauth2.Config
	identityURL string
	httpClient  *http.Client
	states      *stateStore
}

func NewExchanger(c Config) *Exchanger {
	endpoint := c.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = relay.PatreonEndpoint
	}
	identityURL := c.IdentityURL
	if identityURL == "" {
		identityURL = relay.PatreonIdentityURL
	}
	stateTTL := c.StateTTL
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}
	return &Exchanger{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  c.RedirectURI,
			Scopes:       relay.PatreonScopes,
		},
		identityURL: identityURL + "?" + relay.PatreonIdentity.Encode(),
		httpClient:  c.HTTPClient,
		states:      newStateStore(stateTTL),
	}
}

// BeginLogin records a new CSRF token and returns the URL of the Patreon OAuth
// challenge that the user should be sent to
func (e *Exchanger) BeginLogin() (string, error) {
	state, err := e.states.issue()
	if err != nil {
		return "", err
	}
	return e.config.AuthCodeURL(state), nil
}

// CompleteLogin handles the user's return from the Patreon OAuth challenge: the state
// is validated (and consumed) before anything else, then the authorization code is
// exchanged for an access token which is used to resolve the user's identity and tier
func (e *Exchanger) CompleteLogin(ctx context.Context, code, state string) (*Membership, error) {
	if state == "" || !e.states.consume(state) {
		return nil, ErrInvalidState
	}
	if code == "" {
		return nil, ErrMissingCode
	}

	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	token, err := e.config.Exchange(ctx, code)
	if err != nil {
		return nil, &ExchangeError{Step: "code exchange", Err: err}
	}

	identity, err := e.fetchIdentity(ctx, token)
	if err != nil {
		return nil, &ExchangeError{Step: "identity fetch", Err: err}
	}

	return &Membership{
		Tier:        deriveTier(identity.Included),
		FullName:    identity.Data.Attributes.FullName,
		Email:       identity.Data.Attributes.Email,
		ImageURL:    identity.Data.Attributes.ImageURL,
		AccessToken: token.AccessToken,
	}, nil
}
