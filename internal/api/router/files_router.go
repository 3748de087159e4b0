package router

import (
	"net/http"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/endpoints"
)

func FilesRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		filesEndpoints := endpoints.NewFilesEndpoints(s.Workspace(), s.Watcher())

		mux.HandleFunc(prefix+"/files/tree", s.MakeHTTPHandleFunc(filesEndpoints.Tree))
		mux.HandleFunc(prefix+"/files/file", s.MakeHTTPHandleFunc(filesEndpoints.File))
		mux.HandleFunc(prefix+"/files/folder", s.MakeHTTPHandleFunc(filesEndpoints.Folder))
		mux.HandleFunc(prefix+"/files/events", s.MakeHTTPHandleFunc(filesEndpoints.EventsWebsocket))
	}
}
