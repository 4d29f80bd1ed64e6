package main

import (
	"context"
	"log"
	"time"

	"github.com/ctfquest07/ctf-server1-sub000/internal/config"
	"github.com/ctfquest07/ctf-server1-sub000/internal/db"
	"github.com/ctfquest07/ctf-server1-sub000/internal/event"
	"github.com/ctfquest07/ctf-server1-sub000/internal/handlers"
	"github.com/ctfquest07/ctf-server1-sub000/internal/jwt"
	"github.com/ctfquest07/ctf-server1-sub000/internal/ratelimit"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
	"github.com/ctfquest07/ctf-server1-sub000/internal/service"
	"github.com/ctfquest07/ctf-server1-sub000/internal/wss"
)

func main() {
	cfg := config.LoadConfig()

	mongoClient, err := db.InitDB(&cfg)
	if err != nil {
		log.Fatalf("mongo init failed: %v", err)
	}
	redisClient := db.NewRedisClient(cfg)

	mongoRepo := repo.NewMongoRepository(mongoClient, cfg.MongoDBName)
	cache := repo.NewRedisRepository(redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("index bootstrap failed: %v", err)
	}
	cancel()

	hub := wss.NewHub()
	eventStore := event.NewStore(mongoRepo, cache, hub, time.Duration(cfg.EventCacheTTLSeconds)*time.Second)

	limiter := ratelimit.New(ratelimit.Config{
		MaxAttempts: cfg.RateLimitMaxAttempts,
		Window:      time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		Cooldown:    time.Duration(cfg.RateLimitCooldownSeconds) * time.Second,
	})

	processor := service.NewSubmissionProcessor(
		eventStore, mongoRepo, mongoRepo, mongoRepo,
		limiter, cache, hub, cfg.FlagPrefix,
	)
	scoreboard := service.NewScoreboardAggregator(
		mongoRepo, cache,
		time.Duration(cfg.ScoreboardTTLSeconds)*time.Second,
		cfg.ScoreboardTeamLimit, cfg.ScoreboardUserLimit,
	)

	jwtManager := jwt.NewJWTManager(cfg.JWTSecret)

	server := handlers.NewServer(cfg, mongoRepo, cache, eventStore, processor, scoreboard, jwtManager, hub)
	if err := server.Start(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
