package router

import (
	"net/http"
	"strings"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/api/endpoints"
	historyservice "codestudio-backend/internal/service/history"
)

func AIRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		var history *historyservice.Service
		if s.Database() != nil {
			history = historyservice.New(s.Database())
		}

		conversationPrefix := strings.TrimRight(prefix, "/") + "/ai/conversations/"
		aiEndpoints := endpoints.NewAIEndpoints(s.AI(), history, conversationPrefix)

		mux.HandleFunc(prefix+"/ai/generate", s.MakeHTTPHandleFunc(aiEndpoints.Generate))
		mux.HandleFunc(prefix+"/ai/models", s.MakeHTTPHandleFunc(aiEndpoints.Models))
		mux.HandleFunc(prefix+"/ai/status", s.MakeHTTPHandleFunc(aiEndpoints.Status))
		mux.HandleFunc(prefix+"/ai/conversations", s.MakeHTTPHandleFunc(aiEndpoints.Conversations))
		mux.HandleFunc(prefix+"/ai/conversations/", s.MakeHTTPHandleFunc(aiEndpoints.Conversation))
	}
}
