// Package cors restricts which web origins may call our APIs from a browser.
package cors

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

// AnyOrigin may be listed in place of specific origins to allow every origin
const AnyOrigin = "*"

// ParseOrigins splits a comma-separated list of origins, ignoring blank entries and
// trailing slashes
func ParseOrigins(value string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(value, ",") {
		origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Wrap returns a handler that adds CORS headers for requests from any of the allowed
// origins and answers preflight requests itself. An empty list allows no origins.
func Wrap(allowedOrigins []string, next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOriginValidator(newOriginValidator(allowedOrigins)),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.MaxAge(600),
		handlers.OptionStatusCode(http.StatusNoContent),
	)(next)
}

func newOriginValidator(allowedOrigins []string) handlers.OriginValidator {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	_, allowAny := allowed[AnyOrigin]
	return func(origin string) bool {
		if origin == "" {
			return false
		}
		if allowAny {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
