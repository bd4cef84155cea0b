package main

import (
	"net/http"
	"os"
	"time"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/nicklaw5/helix/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/golden-vcr/relay/internal/apptoken"
	"github.com/golden-vcr/relay/internal/cors"
	"github.com/golden-vcr/relay/internal/events"
	"github.com/golden-vcr/relay/internal/patreonauth"
	"github.com/golden-vcr/relay/internal/twitchusers"
	"github.com/golden-vcr/server-common/entry"
	"github.com/golden-vcr/server-common/rmq"
)

type Config struct {
	BindAddr       string `env:"BIND_ADDR"`
	ListenPort     uint16 `env:"PORT" default:"3000"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	TwitchClientId           string        `env:"TWITCH_CLIENT_ID" required:"true"`
	TwitchClientSecret       string        `env:"TWITCH_CLIENT_SECRET" required:"true"`
	TwitchUserTTL            time.Duration `env:"TWITCH_USER_TTL" default:"1h"`
	TwitchTokenRefreshMargin time.Duration `env:"TWITCH_TOKEN_REFRESH_MARGIN" default:"60s"`

	PatreonClientId     string        `env:"PATREON_CLIENT_ID" required:"true"`
	PatreonClientSecret string        `env:"PATREON_CLIENT_SECRET" required:"true"`
	PatreonRedirectURI  string        `env:"PATREON_REDIRECT_URI" required:"true"`
	PatreonStateTTL     time.Duration `env:"PATREON_STATE_TTL" default:"15m"`
	BridgeTargetOrigin  string        `env:"BRIDGE_TARGET_ORIGIN" default:"*"`

	RmqHost     string `env:"RMQ_HOST"`
	RmqPort     int    `env:"RMQ_PORT" default:"5672"`
	RmqVhost    string `env:"RMQ_VHOST" default:"/"`
	RmqUser     string `env:"RMQ_USER"`
	RmqPassword string `env:"RMQ_PASSWORD"`
}

func main() {
	app, ctx := entry.NewApplication("relay")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}

	// Initialize a Twitch API client: it's authorized with an app access token that we
	// keep cached, refreshing it shortly before it expires
	twitchClient, err := helix.NewClient(&helix.Options{
		ClientID:     config.TwitchClientId,
		ClientSecret: config.TwitchClientSecret,
	})
	if err != nil {
		app.Fail("Failed to initialize Twitch API client", err)
	}
	tokens := apptoken.NewCache(twitchClient, config.TwitchTokenRefreshMargin)
	users := twitchusers.NewService(twitchusers.NewCache(config.TwitchUserTTL), tokens, twitchClient)

	// If a message broker is configured, announce each completed Patreon login on the
	// 'patreon-logins' exchange
	var publisher events.Publisher = events.NopPublisher{}
	if config.RmqHost != "" {
		amqpConn, err := amqp.Dial(rmq.FormatConnectionString(config.RmqHost, config.RmqPort, config.RmqVhost, config.RmqUser, config.RmqPassword))
		if err != nil {
			app.Fail("Failed to connect to AMQP server", err)
		}
		defer amqpConn.Close()
		publisher, err = events.NewPublisher(amqpConn, "patreon-logins")
		if err != nil {
			app.Fail("Failed to initialize AMQP publisher", err)
		}
	}

	// Start setting up our HTTP handlers, using gorilla/mux for routing
	r := mux.NewRouter()
	r.Path("/").Methods("GET").HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.Write([]byte("OK"))
	})

	// Clients can call GET /api/twitch/users?login=... to resolve Twitch user details
	// without needing Twitch credentials of their own
	twitchusersServer := twitchusers.NewServer(users)
	twitchusersServer.RegisterRoutes(r)

	// Clients can open GET /start-oauth in a popup to sign in with Patreon: once the
	// user grants access, Patreon redirects them to GET /oauth-callback, which posts
	// the user's membership tier back to the window that opened the popup
	exchanger := patreonauth.NewExchanger(patreonauth.Config{
		ClientID:     config.PatreonClientId,
		ClientSecret: config.PatreonClientSecret,
		RedirectURI:  config.PatreonRedirectURI,
		StateTTL:     config.PatreonStateTTL,
	})
	patreonauthServer := patreonauth.NewServer(exchanger, config.BridgeTargetOrigin, publisher)
	patreonauthServer.RegisterRoutes(r)

	// Only browsers on our allowed origins may call these APIs
	allowedOrigins := cors.ParseOrigins(config.AllowedOrigins)
	if len(allowedOrigins) == 0 {
		app.Log().Warn("ALLOWED_ORIGINS is empty: browser clients will not be able to call the relay")
	}
	app.Log().Info("Initialized relay", "allowedOrigins", allowedOrigins, "twitchUserTTL", config.TwitchUserTTL)

	// Handle incoming HTTP connections until our top-level context is canceled, at
	// which point shut down cleanly
	entry.RunServer(ctx, app.Log(), cors.Wrap(allowedOrigins, r), config.BindAddr, config.ListenPort)
}
