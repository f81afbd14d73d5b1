package main

import (
	"context"

	"github.com/grubk/cypress-clientside/internal/app"
	"github.com/grubk/cypress-clientside/internal/cache"
	"github.com/grubk/cypress-clientside/internal/chat"
	"github.com/grubk/cypress-clientside/internal/config"
	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/logger"
	"github.com/grubk/cypress-clientside/internal/repository"
	"github.com/grubk/cypress-clientside/internal/store"
)

func main() {
	cfg := config.New()

	// Init logger (global, config-driven)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	tokens := &store.FileTokenStore{Path: ".cypress-session"}
	auth := store.NewAuth(appCtx, cfg, tokens)
	channel := store.NewChannel(redisCache, log)
	repo := repository.New(appCtx, auth, channel)
	sync := chat.NewSynchronizer(repo, log)
	defer sync.Close()

	ctx := context.Background()

	profile, err := repo.RestoreSession(ctx)
	if err != nil || profile == nil {
		profile, err = repo.Login(ctx, "student1@campus.edu", "password")
		if err != nil {
			log.Error("login failed", "err", err)
			return
		}
	}
	log.Info("signed in", "user", profile.DisplayName, "major", profile.Major)

	queue, err := repo.GetMatchQueue(ctx)
	if err != nil {
		log.Error("match queue failed", "err", err)
		return
	}
	for i, c := range queue {
		log.Info("candidate", "rank", i+1, "name", c.DisplayName, "common_interests", len(c.CommonInterests))
	}

	requests, _ := repo.GetIncomingRequests(ctx)
	log.Info("incoming requests", "count", len(requests))

	connections, _ := repo.GetConnections(ctx)
	log.Info("connections", "count", len(connections))

	unread, _ := repo.UnreadCount(ctx)
	log.Info("unread messages", "count", unread)
}
