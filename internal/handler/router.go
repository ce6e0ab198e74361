package handler

import (
	"net/http"

	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the API routes under prefix. authMW guards the mutating todo routes.
func NewRouter(h *Handler, authMW mux.MiddlewareFunc, log *logrus.Logger, prefix string) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recover(log), middleware.Logging(log))
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)

	api := r.PathPrefix(prefix).Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/todos", h.ListTodos).Methods(http.MethodGet)
	api.HandleFunc("/todos/{id}", h.GetTodo).Methods(http.MethodGet)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMW)
	protected.HandleFunc("/todos", h.CreateTodo).Methods(http.MethodPost)
	protected.HandleFunc("/todos/{id}", h.UpdateTodo).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id}", h.DeleteTodo).Methods(http.MethodDelete)

	return r
}
