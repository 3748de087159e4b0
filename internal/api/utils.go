package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"codestudio-backend/internal/api/middleware"
	"codestudio-backend/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   s.deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "OPTIONS", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
	}

	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		s.requestQueueManager.EnqueueJob(job)

		err := <-errc
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				if httpErr.ErrorLog != nil {
					log.Println(httpErr.ErrorLog)
				}
				WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message, Code: httpErr.Code})
			} else {
				log.Println(err)
				WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
			}
		}
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(corsConfig),
		middleware.Logging(),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if len(authMiddleware) > 0 {
			authHandler := baseHandler
			for _, m := range authMiddleware {
				authHandler = m(authHandler)
			}
			authHandler(w, r)
		} else {
			baseHandler(w, r)
		}
	}

	return middleware.Chain(finalHandler, middlewares...)
}
