package service

import (
	"fmt"

	"github.com/Dan9191/todo-service/internal/models"
)

// Todo mutations guarded by the ownership policy
const (
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// authorizeOwner allows a mutation only when the acting user owns the todo.
// Callers must have established that the todo exists.
func authorizeOwner(todo models.Todo, userID, action string) error {
	if todo.OwnerID != userID {
		return fmt.Errorf("%w to %s todo %s", ErrNotAuthorized, action, todo.ID)
	}
	return nil
}
