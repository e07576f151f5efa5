package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oggyb/muzz-social/internal/app"
	"github.com/oggyb/muzz-social/internal/auth"
	"github.com/oggyb/muzz-social/internal/cache"
	"github.com/oggyb/muzz-social/internal/config"
	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/logger"
	"github.com/oggyb/muzz-social/internal/service/social"
)

const seedUsers = 12

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	users, err := db.SeedTestData(database, seedUsers)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	// the score cache is optional here; an unreachable Redis only costs a warning per user
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()

	ctx := context.Background()
	engine := social.NewEngine(app.New(database, redisCache, logger.L()))
	for _, u := range users {
		if _, err := engine.Reputation().Recompute(ctx, u.ID); err != nil {
			log.Fatalf("failed to score user %d: %v", u.ID, err)
		}
	}
	matches, err := engine.Reconcile(ctx, len(users)*len(users))
	if err != nil {
		log.Fatalf("failed to announce matches: %v", err)
	}

	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	for _, u := range users {
		token, err := authn.Issue(u.ID)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Printf("%-10s id=%-3d token=%s\n", u.Username, u.ID, token)
	}

	log.Printf("Seeding completed: %d users, %d matches.", len(users), matches)
}
