package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/codingconcepts/env"
	"github.com/golden-vcr/relay/internal/apptoken"
	"github.com/golden-vcr/relay/internal/twitchusers"
	"github.com/joho/godotenv"
	"github.com/nicklaw5/helix/v2"
)

type Config struct {
	TwitchClientId     string `env:"TWITCH_CLIENT_ID" required:"true"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET" required:"true"`
}

func main() {
	flag.Usage = func() {
		log.Printf("Usage: lookup <login> [<login>...]")
		flag.PrintDefaults()
	}
	pretty := flag.Bool("pretty", false, "Indent the JSON output")
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Resolve the requested logins exactly as GET /api/twitch/users would
	twitchClient, err := helix.NewClient(&helix.Options{
		ClientID:     config.TwitchClientId,
		ClientSecret: config.TwitchClientSecret,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Twitch API client: %v", err)
	}
	tokens := apptoken.NewCache(twitchClient, apptoken.DefaultRefreshMargin)
	service := twitchusers.NewService(twitchusers.NewCache(twitchusers.DefaultTTL), tokens, twitchClient)
	users, err := service.Resolve(context.Background(), flag.Args())
	if err != nil {
		log.Fatalf("Failed to resolve Twitch users: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	if *pretty {
		encoder.SetIndent("", "    ")
	}
	if err := encoder.Encode(struct {
		Data []twitchusers.User `json:"data"`
	}{users}); err != nil {
		log.Fatalf("failed to encode users: %v", err)
	}
}
