package router

import (
	"net/http"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/endpoints"
	"codestudio-backend/internal/api/middleware"
)

func CollabRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		collabEndpoints := endpoints.NewCollabEndpoints(s.Collab())

		var authMiddleware []middleware.Middleware
		if s.Config().CollabAuthEnabled() {
			authMiddleware = append(authMiddleware, middleware.ValidateCollabToken(s.Config().CollabTokenSecret))
		}

		mux.HandleFunc(prefix+"/collab/ws", s.MakeHTTPHandleFunc(collabEndpoints.Websocket, authMiddleware...))
		mux.HandleFunc(prefix+"/collab/rooms", s.MakeHTTPHandleFunc(collabEndpoints.Rooms))
	}
}
