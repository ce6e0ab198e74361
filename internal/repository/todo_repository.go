package repository

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Dan9191/todo-service/internal/models"
)

// TodoRepository is an in-memory todo store preserving insertion order.
// Records are copied in and out so callers never alias stored state.
type TodoRepository struct {
	mu    sync.RWMutex
	todos []models.Todo
}

// NewTodoRepository initializes an empty todo store
func NewTodoRepository() *TodoRepository {
	return &TodoRepository{}
}

// List returns every todo matching filter, in insertion order
func (r *TodoRepository) List(filter TodoFilter) []models.Todo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// GetByID retrieves a todo by id
func (r *TodoRepository) GetByID(id string) (models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.Todo{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return r.todos[i].Clone(), nil
}

// Insert appends a todo
func (r *TodoRepository) Insert(todo models.Todo) error {
	if todo.ID == "" {
		return fmt.Errorf("failed to insert todo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.todos = append(r.todos, todo.Clone())
	return nil
}

// Update runs fn on a copy of the stored todo while holding the write lock.
// The copy replaces the stored record only if fn returns nil.
func (r *TodoRepository) Update(id string, fn func(*models.Todo) error) (models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.Todo{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	updated := r.todos[i].Clone()
	if err := fn(&updated); err != nil {
		return models.Todo{}, err
	}
	r.todos[i] = updated
	return updated.Clone(), nil
}

// Delete removes a todo after check accepts it. Both run under the write lock.
func (r *TodoRepository) Delete(id string, check func(models.Todo) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if check != nil {
		if err := check(r.todos[i].Clone()); err != nil {
			return err
		}
	}
	r.todos = slices.Delete(r.todos, i, i+1)
	return nil
}

// Count returns the number of stored todos
func (r *TodoRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.todos)
}

func (r *TodoRepository) indexOf(id string) int {
	return slices.IndexFunc(r.todos, func(t models.Todo) bool { return t.ID == id })
}
