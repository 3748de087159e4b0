package main

import (
	"context"
	"log"

	"codestudio-backend/internal/ai"
	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/router"
	"codestudio-backend/internal/config"
	"codestudio-backend/internal/database"
	"codestudio-backend/internal/exec"
	"codestudio-backend/internal/queue"
	"codestudio-backend/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	queueManager := queue.NewRequestQueueManager(cfg.QueueSize, cfg.MaxWorkers)

	var db *database.Database
	if cfg.HistoryEnabled() {
		db, err = database.NewDatabase(cfg)
		if err != nil {
			log.Fatalf("db init failed: %v", err)
		}
	}

	workspaceSvc, err := workspace.New(cfg.WorkspaceRoot)
	if err != nil {
		log.Fatalf("workspace init failed: %v", err)
	}

	watcher, err := workspace.NewWatcher(workspaceSvc)
	if err != nil {
		log.Fatalf("watcher init failed: %v", err)
	}
	go watcher.Run(context.Background())

	server := api.NewAPIServer(
		cfg.ListenAddr,
		queueManager,
		api.Deps{
			Config:    cfg,
			DB:        db,
			Workspace: workspaceSvc,
			Watcher:   watcher,
			AI:        ai.NewClient(cfg.OllamaURL),
			Runner:    exec.NewRunner(cfg.ExecMaxTimeoutMs),
		},
		router.UtilsRoutes("/api/v1"),
		router.FilesRoutes("/api/v1"),
		router.ExecRoutes("/api/v1"),
		router.AIRoutes("/api/v1"),
		router.SessionRoutes("/api/v1"),
	)

	server.Run()
}
