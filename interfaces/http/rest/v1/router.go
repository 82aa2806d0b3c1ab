package v1

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/OpenClique85/openclique-sub009/interfaces/http/rest/handlers"
	"github.com/OpenClique85/openclique-sub009/interfaces/http/rest/middleware"
)

// NewRouter creates the legacy v1 API router. Paths are relative to the
// mount point, the parent router strips the /api/v1 prefix.
func NewRouter(squadHandler *handlers.SquadHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(versionHeaders)
	router.Use(mux.MiddlewareFunc(middleware.Authenticate()))

	router.HandleFunc("/events/{eventID}/squads", squadHandler.ListSquads).Methods("GET")
	router.HandleFunc("/events/{eventID}/squads/propose", squadHandler.ProposeSquads).Methods("POST")
	router.HandleFunc("/events/{eventID}/squads/confirm", squadHandler.ConfirmSquad).Methods("POST")
	router.HandleFunc("/squads/{squadID}", squadHandler.GetSquad).Methods("GET")

	router.HandleFunc("/health", healthCheck).Methods("GET")

	return router
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
