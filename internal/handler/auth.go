package handler

import (
	"errors"
	"net/http"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/service"
)

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingUserFields):
			h.writeError(w, http.StatusBadRequest, "Email, name and password are required")
		case errors.Is(err, service.ErrUserExists):
			h.writeError(w, http.StatusBadRequest, "User already exists")
		default:
			h.log.WithError(err).Error("Registration failed")
			h.writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, response{Success: true, Data: user})
}

// Login handles user authentication. Unknown email and wrong password are
// reported differently; clients depend on the distinction.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			h.writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrUserNotFound):
			h.writeError(w, http.StatusUnauthorized, "User not found")
		case errors.Is(err, service.ErrInvalidPassword):
			h.writeError(w, http.StatusUnauthorized, "Invalid password")
		default:
			h.log.WithError(err).Error("Login failed")
			h.writeError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, response{
		Success: true,
		Data:    models.LoginResponse{User: user, Token: token},
	})
}
