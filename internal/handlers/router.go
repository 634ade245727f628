package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API surface. Registration, login and the station
// catalog are public; profile and visit routes require authentication.
// Trailing slashes are tolerated on every route.
func NewRouter(account *AccountHandler, station *StationHandler, visit *VisitHandler, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/accounts/register", account.Register)
		r.Post("/accounts/login", account.Login)
		r.Get("/stations", station.ListStations)
		r.Get("/stations/{id}", station.GetStation)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Get("/accounts/profile", account.GetProfile)
			r.Put("/accounts/profile", account.UpdateProfile)
			r.Patch("/accounts/profile", account.UpdateProfile)
			r.Get("/accounts/profile/{id}", account.GetProfile)
			r.Put("/accounts/profile/{id}", account.UpdateProfile)
			r.Patch("/accounts/profile/{id}", account.UpdateProfile)

			r.Get("/visits", visit.ListVisits)
			r.Post("/visits", visit.CreateVisit)
			r.Get("/visits/stats", visit.VisitStats)
			r.Get("/visits/{id}", visit.GetVisit)
			r.Put("/visits/{id}", visit.UpdateVisit)
			r.Patch("/visits/{id}", visit.UpdateVisit)
			r.Delete("/visits/{id}", visit.DeleteVisit)
		})
	})

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
