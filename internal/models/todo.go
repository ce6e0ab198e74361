package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/oapi-codegen/nullable"
)

// Priority is the urgency of a todo
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDate     = errors.New("invalid date")
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo represents a task owned by a user
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority,omitempty"`
	OwnerID     string     `json:"ownerId"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Clone returns a copy that shares no pointers with t
func (t Todo) Clone() Todo {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// NewTodo holds the caller-supplied fields of a todo being created
type NewTodo struct {
	Title       string
	Description string
	Category    string
	Priority    Priority
	DueDate     *time.Time
}

// TodoPatch is the body of PATCH /todos/{id}. Absent fields are left untouched
// and null resets a field to its zero value. id and ownerId are not accepted.
type TodoPatch struct {
	Title       nullable.Nullable[string]   `json:"title,omitempty"`
	Description nullable.Nullable[string]   `json:"description,omitempty"`
	Category    nullable.Nullable[string]   `json:"category,omitempty"`
	Completed   nullable.Nullable[bool]     `json:"completed,omitempty"`
	Priority    nullable.Nullable[Priority] `json:"priority,omitempty"`
	DueDate     nullable.Nullable[string]   `json:"dueDate,omitempty"`
}

// ClearsRequired reports whether p empties the title or the category
func (p TodoPatch) ClearsRequired() bool {
	return (p.Title.IsSpecified() && valueOrZero(p.Title) == "") ||
		(p.Category.IsSpecified() && valueOrZero(p.Category) == "")
}

// Apply validates p and merges the present fields into t.
// t is unchanged when p is invalid.
func (p TodoPatch) Apply(t *Todo) error {
	priority := valueOrZero(p.Priority)
	if priority != "" && !priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	var due *time.Time
	if raw := valueOrZero(p.DueDate); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			return err
		}
		due = &d
	}

	if p.Title.IsSpecified() {
		t.Title = valueOrZero(p.Title)
	}
	if p.Description.IsSpecified() {
		t.Description = valueOrZero(p.Description)
	}
	if p.Category.IsSpecified() {
		t.Category = valueOrZero(p.Category)
	}
	if p.Completed.IsSpecified() {
		t.Completed = valueOrZero(p.Completed)
	}
	if p.Priority.IsSpecified() {
		t.Priority = priority
	}
	if p.DueDate.IsSpecified() {
		t.DueDate = due
	}
	return nil
}

// valueOrZero returns the value of n, or the zero value when n is null or absent
func valueOrZero[T any](n nullable.Nullable[T]) T {
	v, _ := n.Get()
	return v
}

// CreateTodoRequest is the body of POST /todos. Any ownerId in the body is ignored.
type CreateTodoRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
}

// ToNewTodo validates the optional fields and converts the request
func (r CreateTodoRequest) ToNewTodo() (NewTodo, error) {
	out := NewTodo{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
	}
	if r.Priority != "" && !r.Priority.Valid() {
		return NewTodo{}, fmt.Errorf("%w: %q", ErrInvalidPriority, r.Priority)
	}
	if r.DueDate != "" {
		due, err := ParseDate(r.DueDate)
		if err != nil {
			return NewTodo{}, err
		}
		out.DueDate = &due
	}
	return out, nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Calendar dates are interpreted as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
