package repository

import (
	"testing"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	r := NewUserRepository()
	require.NoError(t, r.Insert(models.User{ID: "u1", Email: "a@example.com", Name: "Alice"}))
	require.NoError(t, r.Insert(models.User{ID: "u2", Email: "b@example.com", Name: "Bob"}))
	assert.Equal(t, 2, r.Count())

	u, err := r.FindByID("u2")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)

	u, err = r.FindByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u, err = r.FindByEmailOrName("other@example.com", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)

	u, err = r.FindByEmailOrName("a@example.com", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = r.FindByEmailOrName("c@example.com", "Carol")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindByID("u3")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindByEmail("c@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, r.Insert(models.User{Email: "x@example.com"}))
}
