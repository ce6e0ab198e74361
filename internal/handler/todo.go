package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/gorilla/mux"
)

// ListTodos returns todos matching the query filters
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r.URL.Query())
	todos := h.todos.List(r.Context(), filter)
	count := len(todos)
	h.writeJSON(w, http.StatusOK, response{Success: true, Data: todos, Count: &count})
}

// GetTodo returns a single todo
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.todos.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.todoError(w, err, "")
		return
	}
	h.writeJSON(w, http.StatusOK, response{Success: true, Data: todo})
}

// CreateTodo creates a todo owned by the authenticated caller
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	var req models.CreateTodoRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	data, err := req.ToNewTodo()
	if err != nil {
		h.todoError(w, err, "")
		return
	}

	todo, err := h.todos.Create(r.Context(), data, caller.ID)
	if err != nil {
		h.todoError(w, err, "")
		return
	}
	h.writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "Todo created successfully",
		Data:    todo,
	})
}

// UpdateTodo applies a partial update to a todo owned by the caller
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	var patch models.TodoPatch
	if err := decodeBody(r, &patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	todo, err := h.todos.Update(r.Context(), mux.Vars(r)["id"], patch, caller.ID)
	if err != nil {
		h.todoError(w, err, service.ActionUpdate)
		return
	}
	h.writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Todo updated successfully",
		Data:    todo,
	})
}

// DeleteTodo removes a todo owned by the caller
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	if err := h.todos.Delete(r.Context(), mux.Vars(r)["id"], caller.ID); err != nil {
		h.todoError(w, err, service.ActionDelete)
		return
	}
	h.writeJSON(w, http.StatusOK, response{Success: true, Message: "Todo deleted successfully"})
}

func (h *Handler) todoError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		h.writeError(w, http.StatusNotFound, "Todo not found")
	case errors.Is(err, service.ErrNotAuthorized):
		h.writeError(w, http.StatusForbidden, fmt.Sprintf("Not authorized to %s this todo", action))
	case errors.Is(err, service.ErrMissingTodoFields):
		h.writeError(w, http.StatusBadRequest, "Title and category are required")
	case errors.Is(err, service.ErrEmptyTodoField):
		h.writeError(w, http.StatusBadRequest, "Title and category cannot be empty")
	case errors.Is(err, models.ErrInvalidPriority):
		h.writeError(w, http.StatusBadRequest, "Priority must be one of: low, medium, high")
	case errors.Is(err, models.ErrInvalidDate):
		h.writeError(w, http.StatusBadRequest, "Invalid dueDate")
	default:
		h.log.WithError(err).Error("Todo request failed")
		h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// parseFilter builds a TodoFilter from list query parameters.
// completed is true only for the literal "true"; any other non-empty value means false.
// Unknown priorities and unparsable dates are kept as filters that match nothing.
func parseFilter(q url.Values) repository.TodoFilter {
	filter := repository.TodoFilter{
		OwnerID:  q.Get("ownerId"),
		Category: q.Get("category"),
		Priority: models.Priority(q.Get("priority")),
		Search:   q.Get("search"),
	}
	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}
	if v := q.Get("dueDate"); v != "" {
		due, err := models.ParseDate(v)
		if err != nil {
			filter.MatchNone = true
		} else {
			filter.DueDate = &due
		}
	}
	return filter
}
