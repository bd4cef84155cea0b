// Package twitchusers lets clients look up basic Twitch user profile details (user ID,
// display name, and profile image) by login, without needing Twitch credentials of
// their own.
//
// Lookups are served from an in-memory cache where possible: profile details rarely
// change, so entries are considered fresh for a fixed TTL (an hour by default). Any
// logins that miss the cache are resolved with a single batched call to the Helix
// Get Users endpoint, authorized with our app access token:
//
// - https://dev.twitch.tv/docs/api/reference/#get-users
package twitchusers
