// Package patreonauth lets a user sign in with Patreon so that clients can determine
// which membership tier they're entitled to.
//
// A client (typically a browser extension) opens a popup window at GET /start-oauth,
// which redirects the user to a Patreon-hosted OAuth challenge, initiating an
// Authorization code grant flow as described here:
//
// - https://docs.patreon.com/#oauth
//
// Once the user grants access, Patreon redirects them to GET /oauth-callback with an
// authorization code and the CSRF token we issued in the 'state' parameter. We exchange
// that code for a user access token, then use the Patreon API v2 identity endpoint to
// look up the user's name, email address, image, and memberships. A user with an
// active patron membership is assigned the higher tier; everyone else (including users
// with no membership at all) gets the lower tier.
//
// The callback responds with a tiny HTML page whose script delivers the result to the
// window that opened the popup via window.postMessage, then closes the popup. Failures
// are delivered the same way, as an 'auth-error' message, with a 4xx or 5xx status.
package patreonauth
