package patreonauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// identityResponse is the JSON:API document returned by the Patreon identity endpoint
type identityResponse struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			ImageURL string `json:"image_url"`
		} `json:"attributes"`
	} `json:"data"`
	Included []includedResource `json:"included"`
}

type includedResource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		PatronStatus                 *string `json:"patron_status"`
		CurrentlyEntitledAmountCents int     `json:"currently_entitled_amount_cents"`
	} `json:"attributes"`
}

// fetchIdentity requests the identity of the user who owns the given token, along
// with their memberships
func (e *Exchanger) fetchIdentity(ctx context.Context, token *oauth2.Token) (*identityResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.identityURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := e.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("got response %d from identity request: %s", res.StatusCode, body)
	}

	var identity identityResponse
	if err := json.NewDecoder(res.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	return &identity, nil
}
