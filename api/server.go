package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hrmslite/backend/hrms"
)

// NewRouter builds the HTTP router with all routes and middleware.
// allowedOrigins configures CORS; pass []string{"*"} to allow any origin.
func NewRouter(store hrms.Store, allowedOrigins []string) http.Handler {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/employees", func(r chi.Router) {
		r.Post("/", h.CreateEmployee)
		r.Get("/", h.ListEmployees)
		r.Get("/{id}", h.GetEmployee)
		r.Put("/{id}", h.UpdateEmployee)
		r.Delete("/{id}", h.DeleteEmployee)
	})

	r.Route("/attendance", func(r chi.Router) {
		r.Post("/", h.MarkAttendance)
		r.Get("/", h.ListAttendance)
		// GET's {id} is an employee id; PUT/DELETE take an attendance row id.
		r.Get("/{id}", h.ListEmployeeAttendance)
		r.Put("/{id}", h.UpdateAttendance)
		r.Delete("/{id}", h.DeleteAttendance)
	})

	r.Get("/dashboard/summary", h.DashboardSummary)

	return r
}
