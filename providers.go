package relay

import (
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// MaxLoginsPerLookup is the largest number of logins the Twitch Helix API will accept
// in a single Get Users request: callers asking for more have the excess dropped
const MaxLoginsPerLookup = 100

// PatreonEndpoint identifies the Patreon-hosted OAuth endpoints used to sign users in
var PatreonEndpoint = oauth2.Endpoint{
	AuthURL:   "https://www.patreon.com/oauth2/authorize",
	TokenURL:  "https://www.patreon.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// PatreonIdentityURL is the Patreon API v2 endpoint that describes the user who owns a
// given access token
const PatreonIdentityURL = "https://www.patreon.com/api/oauth2/v2/identity"

// PatreonScopes lists the OAuth scopes we request when a user signs in with Patreon:
// we need their basic identity, their email address, and their memberships
var PatreonScopes = []string{
	"identity",
	"identity[email]",
	"identity.memberships",
}

// IdentityQuery describes the related resources and sparse fieldsets requested from
// the Patreon identity endpoint
type IdentityQuery struct {
	Include      []string
	UserFields   []string
	MemberFields []string
}

// PatreonIdentity is the query we issue to resolve a user's identity along with the
// membership records used to determine their tier
var PatreonIdentity = IdentityQuery{
	Include:      []string{"memberships"},
	UserFields:   []string{"full_name", "email", "image_url"},
	MemberFields: []string{"patron_status", "currently_entitled_amount_cents"},
}

// Encode renders the query in the JSON:API form accepted by the Patreon API
func (q *IdentityQuery) Encode() string {
	values := url.Values{}
	if len(q.Include) > 0 {
		values.Set("include", strings.Join(q.Include, ","))
	}
	if len(q.UserFields) > 0 {
		values.Set("fields[user]", strings.Join(q.UserFields, ","))
	}
	if len(q.MemberFields) > 0 {
		values.Set("fields[member]", strings.Join(q.MemberFields, ","))
	}
	return values.Encode()
}
