package api

import (
	"fmt"
	"net/http"

	"codestudio-backend/internal/ai"
	"codestudio-backend/internal/collab"
	"codestudio-backend/internal/config"
	"codestudio-backend/internal/database"
	"codestudio-backend/internal/exec"
	"codestudio-backend/internal/queue"
	"codestudio-backend/internal/workspace"

	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// Deps carries everything the route registrars may need. Optional features
// (history, collab auth) leave their fields nil.
type Deps struct {
	Config    *config.Config
	DB        *database.Database
	Workspace *workspace.Service
	Watcher   *workspace.Watcher
	AI        *ai.Client
	Runner    *exec.Runner
	Collab    *collab.Handler
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	deps                Deps
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, deps Deps, registrars ...RouteRegistrar) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		deps:                deps,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Config() *config.Config {
	return s.deps.Config
}

func (s *APIServer) Database() *database.Database {
	return s.deps.DB
}

func (s *APIServer) Workspace() *workspace.Service {
	return s.deps.Workspace
}

func (s *APIServer) Watcher() *workspace.Watcher {
	return s.deps.Watcher
}

func (s *APIServer) AI() *ai.Client {
	return s.deps.AI
}

func (s *APIServer) Runner() *exec.Runner {
	return s.deps.Runner
}

func (s *APIServer) Collab() *collab.Handler {
	return s.deps.Collab
}
