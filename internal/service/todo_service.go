package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TodoStore is the todo collection used by TodoService
type TodoStore interface {
	List(filter repository.TodoFilter) []models.Todo
	GetByID(id string) (models.Todo, error)
	Insert(todo models.Todo) error
	Update(id string, fn func(*models.Todo) error) (models.Todo, error)
	Delete(id string, check func(models.Todo) error) error
}

// TodoService handles todo lifecycle and ownership checks
type TodoService struct {
	todos TodoStore
	log   *logrus.Logger
	now   Clock
	newID func() string
}

// NewTodoService initializes a new todo service
func NewTodoService(todos TodoStore, log *logrus.Logger) *TodoService {
	return &TodoService{
		todos: todos,
		log:   log,
		now:   time.Now,
		newID: func() string { return "todo_" + uuid.NewString() },
	}
}

// List returns todos matching the filter
func (s *TodoService) List(ctx context.Context, filter repository.TodoFilter) []models.Todo {
	return s.todos.List(filter)
}

// Get returns a single todo
func (s *TodoService) Get(ctx context.Context, id string) (models.Todo, error) {
	todo, err := s.todos.GetByID(id)
	if err != nil {
		return models.Todo{}, mapTodoErr(err)
	}
	return todo, nil
}

// Create stores a new todo owned by ownerID
func (s *TodoService) Create(ctx context.Context, data models.NewTodo, ownerID string) (models.Todo, error) {
	if data.Title == "" || data.Category == "" {
		return models.Todo{}, ErrMissingTodoFields
	}
	if ownerID == "" {
		return models.Todo{}, fmt.Errorf("create todo: %w", ErrNotAuthorized)
	}

	now := s.now()
	todo := models.Todo{
		ID:          s.newID(),
		Title:       data.Title,
		Description: data.Description,
		Category:    data.Category,
		Completed:   false,
		Priority:    data.Priority,
		OwnerID:     ownerID,
		DueDate:     data.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.todos.Insert(todo); err != nil {
		return models.Todo{}, err
	}

	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"todo_id":  todo.ID,
		"owner_id": ownerID,
	}).Info("Todo created")
	return todo.Clone(), nil
}

// Update merges patch into the todo. Existence and ownership are checked
// before the patch is validated.
func (s *TodoService) Update(ctx context.Context, id string, patch models.TodoPatch, userID string) (models.Todo, error) {
	updated, err := s.todos.Update(id, func(todo *models.Todo) error {
		if err := authorizeOwner(*todo, userID, ActionUpdate); err != nil {
			return err
		}
		if patch.ClearsRequired() {
			return ErrEmptyTodoField
		}
		if err := patch.Apply(todo); err != nil {
			return err
		}
		todo.UpdatedAt = nextTimestamp(s.now(), todo.UpdatedAt)
		return nil
	})
	if err != nil {
		s.logRejected(ctx, err, id, userID, ActionUpdate)
		return models.Todo{}, mapTodoErr(err)
	}

	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"todo_id": id,
		"user_id": userID,
	}).Info("Todo updated")
	return updated, nil
}

// Delete removes the todo after the ownership check
func (s *TodoService) Delete(ctx context.Context, id, userID string) error {
	err := s.todos.Delete(id, func(todo models.Todo) error {
		return authorizeOwner(todo, userID, ActionDelete)
	})
	if err != nil {
		s.logRejected(ctx, err, id, userID, ActionDelete)
		return mapTodoErr(err)
	}

	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"todo_id": id,
		"user_id": userID,
	}).Info("Todo deleted")
	return nil
}

func (s *TodoService) logRejected(ctx context.Context, err error, id, userID, action string) {
	if errors.Is(err, ErrNotAuthorized) {
		s.log.WithContext(ctx).WithFields(logrus.Fields{
			"todo_id": id,
			"user_id": userID,
			"action":  action,
		}).Warn("Todo mutation rejected: caller is not the owner")
	}
}

func mapTodoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}
