package main

import (
	"log"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/router"
	"codestudio-backend/internal/collab"
	"codestudio-backend/internal/config"
	"codestudio-backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	queueManager := queue.NewRequestQueueManager(cfg.QueueSize, cfg.MaxWorkers)

	hub := collab.NewHub()
	if cfg.MirrorEnabled() {
		hub.SetMirror(collab.NewRedisMirror(cfg.RedisURL, cfg.RedisPass))
	}
	go hub.Run()
	handler := collab.NewHandler(hub)

	server := api.NewAPIServer(
		cfg.CollabListenAddr,
		queueManager,
		api.Deps{
			Config: cfg,
			Collab: handler,
		},
		router.UtilsRoutes("/api/v1"),
		router.CollabRoutes("/api/v1"),
	)

	server.Run()
}
