package twitchusers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/golden-vcr/relay/internal/apierr"
	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
)

var (
	errLoginRequired = apierr.New(http.StatusBadRequest, "login required")
	errTwitch        = apierr.New(http.StatusBadGateway, "twitch_error")
)

type ResolveFunc func(ctx context.Context, logins []string) ([]User, error)

type Server struct {
	resolve ResolveFunc
}

func NewServer(service *Service) *Server {
	return &Server{
		resolve: service.Resolve,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/api/twitch/users").Methods("GET").HandlerFunc(s.handleGetUsers)
}

// handleGetUsers (GET /api/twitch/users?login=...) returns details for each of the
// requested Twitch users: 'login' may be repeated and/or comma-separated
func (s *Server) handleGetUsers(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	users, err := s.resolve(req.Context(), req.URL.Query()["login"])
	if err != nil {
		if !errors.Is(err, ErrValidation) {
			logger.Error("Failed to resolve Twitch users", "error", err)
		}
		if err := apierr.WriteJSON(res, toAPIError(err)); err != nil {
			logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(struct {
		Data []User `json:"data"`
	}{users}); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// toAPIError maps an error from Resolve to the response we should send: Twitch API
// errors are passed through with their original status code
func toAPIError(err error) *apierr.Error {
	if errors.Is(err, ErrValidation) {
		return errLoginRequired
	}
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.StatusCode >= http.StatusBadRequest {
			e := *errTwitch
			e.Status = upstreamErr.StatusCode
			return &e
		}
		return errTwitch
	}
	return apierr.From(err)
}
