package patreonauth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golden-vcr/relay/internal/apierr"
	"github.com/golden-vcr/relay/internal/events"
	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
)

var (
	errInvalidState   = apierr.New(http.StatusBadRequest, "invalid_state")
	errMissingCode    = apierr.New(http.StatusBadRequest, "missing_code")
	errExchangeFailed = apierr.New(http.StatusInternalServerError, "exchange_failed")
)

type BeginLoginFunc func() (string, error)
type CompleteLoginFunc func(ctx context.Context, code, state string) (*Membership, error)

type Server struct {
	beginLogin    BeginLoginFunc
	completeLogin CompleteLoginFunc
	targetOrigin  string
	publisher     events.Publisher
}

// NewServer prepares handlers for the Patreon OAuth flow: targetOrigin restricts which
// opener windows may receive the result ("*" for any)
func NewServer(exchanger *Exchanger, targetOrigin string, publisher events.Publisher) *Server {
	if targetOrigin == "" {
		targetOrigin = "*"
	}
	return &Server{
		beginLogin:    exchanger.BeginLogin,
		completeLogin: exchanger.CompleteLogin,
		targetOrigin:  targetOrigin,
		publisher:     publisher,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/start-oauth").Methods("GET").HandlerFunc(s.handleStartOAuth)
	r.Path("/oauth-callback").Methods("GET").HandlerFunc(s.handleOAuthCallback)
}

// handleStartOAuth (GET /start-oauth) redirects the user to the Patreon OAuth challenge
func (s *Server) handleStartOAuth(res http.ResponseWriter, req *http.Request) {
	location, err := s.beginLogin()
	if err != nil {
		entry.Log(req).Error("Failed to begin Patreon login", "error", err)
		http.Error(res, "failed to begin login", http.StatusInternalServerError)
		return
	}
	res.Header().Set("location", location)
	res.WriteHeader(http.StatusFound)
}

// handleOAuthCallback (GET /oauth-callback) completes the Patreon OAuth flow and
// delivers the result to the opener window
func (s *Server) handleOAuthCallback(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	q := req.URL.Query()

	membership, err := s.completeLogin(req.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		e := toAPIError(err)
		if e.Status >= http.StatusInternalServerError {
			logger.Error("Failed to complete Patreon login", "error", err)
		} else {
			logger.Info("Rejected Patreon login callback", "error", err, "patreonError", q.Get("error"))
		}
		if err := writeBridge(res, e.Status, "Login failed", s.targetOrigin, errorMessage(e)); err != nil {
			logger.Error("Failed to render login bridge", "error", err)
		}
		return
	}

	logger.Info("Completed Patreon login", "tier", membership.Tier)
	if s.publisher != nil {
		if err := s.publisher.PublishLogin(req.Context(), events.Login{
			Tier:  string(membership.Tier),
			User:  membership.FullName,
			Email: membership.Email,
		}); err != nil {
			logger.Error("Failed to publish login event", "error", err)
		}
	}

	if err := writeBridge(res, http.StatusOK, "Login complete", s.targetOrigin, completeMessage(membership)); err != nil {
		logger.Error("Failed to render login bridge", "error", err)
	}
}

func toAPIError(err error) *apierr.Error {
	switch {
	case errors.Is(err, ErrInvalidState):
		return errInvalidState
	case errors.Is(err, ErrMissingCode):
		return errMissingCode
	}
	var exchangeErr *ExchangeError
	if errors.As(err, &exchangeErr) {
		return errExchangeFailed
	}
	return apierr.From(err)
}
