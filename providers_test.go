package relay

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_IdentityQuery_Encode(t *testing.T) {
	q := IdentityQuery{
		Include:      []string{"memberships"},
		UserFields:   []string{"full_name", "email"},
		MemberFields: []string{"patron_status"},
	}
	values, err := url.ParseQuery(q.Encode())
	assert.NoError(t, err)
	assert.Equal(t, url.Values{
		"include":        {"memberships"},
		"fields[user]":   {"full_name,email"},
		"fields[member]": {"patron_status"},
	}, values)
}

func Test_IdentityQuery_Encode_omits_empty_parts(t *testing.T) {
	q := IdentityQuery{UserFields: []string{"email"}}
	assert.Equal(t, "fields%5Buser%5D=email", q.Encode())
}

func Test_PatreonIdentity_requests_tier_fields(t *testing.T) {
	assert.Contains(t, PatreonIdentity.Include, "memberships")
	assert.Contains(t, PatreonIdentity.MemberFields, "patron_status")
	assert.Contains(t, PatreonIdentity.UserFields, "full_name")
	assert.Contains(t, PatreonIdentity.UserFields, "email")
	assert.Contains(t, PatreonIdentity.UserFields, "image_url")
}
