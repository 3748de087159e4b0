package router

import (
	"net/http"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/endpoints"
)

func ExecRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		execEndpoints := endpoints.NewExecEndpoints(s.Runner())

		mux.HandleFunc(prefix+"/exec/run", s.MakeHTTPHandleFunc(execEndpoints.Run))
		mux.HandleFunc(prefix+"/exec/languages", s.MakeHTTPHandleFunc(execEndpoints.Languages))
	}
}
