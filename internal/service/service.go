// Package service holds the business rules of the todo API: registration and
// login, todo lifecycle and the ownership policy guarding mutations.
package service

import (
	"errors"
	"time"
)

var (
	// auth errors
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")

	// todo errors
	ErrTodoNotFound  = errors.New("todo not found")
	ErrNotAuthorized = errors.New("not authorized")

	// validation errors
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingUserFields  = errors.New("email, name and password are required")
	ErrMissingTodoFields  = errors.New("title and category are required")
	ErrEmptyTodoField     = errors.New("title and category cannot be empty")
)

// Clock returns the current time
type Clock func() time.Time

// nextTimestamp returns now, nudged past prev so successive stamps strictly increase
func nextTimestamp(now, prev time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
