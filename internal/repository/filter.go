package repository

import (
	"strings"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
)

// TodoFilter is a conjunction of optional predicates. Zero values are absent filters.
type TodoFilter struct {
	OwnerID   string
	Category  string
	Completed *bool
	Priority  models.Priority
	// DueDate keeps todos due on or before the end of this calendar day
	DueDate *time.Time
	Search  string

	// MatchNone rejects every todo, for filters built from values that can never match
	MatchNone bool
}

// Matches reports whether t passes every set predicate
func (f TodoFilter) Matches(t models.Todo) bool {
	if f.MatchNone {
		return false
	}
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.DueDate != nil {
		// todos without a due date never satisfy a due date bound
		if t.DueDate == nil || t.DueDate.After(EndOfDay(*f.DueDate)) {
			return false
		}
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

// EndOfDay returns 23:59:59.999 of the day containing d, in d's location
func EndOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, int(999*time.Millisecond), d.Location())
}
