package router

import (
	"net/http"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/endpoints"
)

func UtilsRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		utilsEndpoints := endpoints.NewUtilsEndpoints(s.Config())
		mux.HandleFunc(prefix+"/health", s.MakeHTTPHandleFunc(utilsEndpoints.Health))
		mux.HandleFunc(prefix+"/info", s.MakeHTTPHandleFunc(utilsEndpoints.Info))
	}
}
