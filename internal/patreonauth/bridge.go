package patreonauth

import (
	"html/template"
	"net/http"

	"github.com/golden-vcr/relay/internal/apierr"
)

var bridgeTemplate = template.Must(template.New("bridge").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head><body>
<p>{{.Title}}. You may close this window.</p>
<script>
(function () {
  var message = {{.Message}};
  if (window.opener) {
    window.opener.postMessage(message, {{.TargetOrigin}});
  }
  window.close();
})();
</script>
</body></html>
`))

// bridgeMessage is posted to the window that opened the OAuth popup
type bridgeMessage struct {
	Type  string        `json:"type"`
	Data  *bridgeData   `json:"data,omitempty"`
	Error *apierr.Error `json:"error,omitempty"`
}

// bridgeData always carries every field, using empty strings for anything Patreon
// didn't tell us
type bridgeData struct {
	Tier  Tier   `json:"tier"`
	User  string `json:"user"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Token string `json:"token"`
}

func completeMessage(m *Membership) *bridgeMessage {
	return &bridgeMessage{
		Type: "auth-complete",
		Data: &bridgeData{
			Tier:  m.Tier,
			User:  m.FullName,
			Email: m.Email,
			Photo: m.ImageURL,
			Token: m.AccessToken,
		},
	}
}

func errorMessage(e *apierr.Error) *bridgeMessage {
	return &bridgeMessage{
		Type:  "auth-error",
		Error: e,
	}
}

func writeBridge(res http.ResponseWriter, status int, title, targetOrigin string, message *bridgeMessage) error {
	res.Header().Set("content-type", "text/html; charset=utf-8")
	res.Header().Set("cache-control", "no-store")
	res.WriteHeader(status)
	return bridgeTemplate.Execute(res, struct {
		Title        string
		Message      *bridgeMessage
		TargetOrigin string
	}{title, message, targetOrigin})
}
