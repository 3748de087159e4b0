package router

import (
	"net/http"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/endpoints"
)

func SessionRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		sessionEndpoints := endpoints.NewSessionEndpoints(s.Config())
		mux.HandleFunc(prefix+"/session/token", s.MakeHTTPHandleFunc(sessionEndpoints.Token))
	}
}
