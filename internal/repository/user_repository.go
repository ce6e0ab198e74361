package repository

import (
	"fmt"
	"sync"

	"github.com/Dan9191/todo-service/internal/models"
)

// UserRepository is an in-memory credential store.
// Uniqueness of email and name is checked by the caller before Insert.
type UserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

// NewUserRepository initializes an empty credential store
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Insert appends a user record
func (r *UserRepository) Insert(user models.User) error {
	if user.ID == "" {
		return fmt.Errorf("failed to insert user: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	return nil
}

// FindByEmailOrName returns the first user whose email or name matches
func (r *UserRepository) FindByEmailOrName(email, name string) (models.User, error) {
	return r.find(func(u models.User) bool {
		return u.Email == email || u.Name == name
	})
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

// FindByID retrieves a user by id
func (r *UserRepository) FindByID(id string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

// Count returns the number of stored users
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) find(match func(models.User) bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user: %w", ErrNotFound)
}
