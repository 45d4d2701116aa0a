package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"quizlens/internal/app"
)

// NewRouter registers the REST API, the websocket endpoint and the health check.
func NewRouter(service *app.QuizService, store sessions.Store) *mux.Router {
	ids := NewSessionIdentifier(store)

	router := mux.NewRouter()
	NewQuizHandler(service, ids).RegisterRoutes(router)
	router.HandleFunc("/ws", NewWSHandler(service, ids).ServeWS).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return router
}
