package repository

import (
	"errors"
)

// ErrNotFound is returned when no record matches a lookup
var ErrNotFound = errors.New("not found")

// Repository groups the in-memory stores of the service
type Repository struct {
	Users *UserRepository
	Todos *TodoRepository
}

// NewRepository initializes empty stores
func NewRepository() *Repository {
	return &Repository{
		Users: NewUserRepository(),
		Todos: NewTodoRepository(),
	}
}
