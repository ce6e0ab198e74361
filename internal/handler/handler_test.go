package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
}

type testTodo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	OwnerID     string `json:"ownerId"`
	DueDate     string `json:"dueDate"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type testServer struct {
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := repository.NewRepository()
	require.NoError(t, service.SeedDemoData(repo, log))
	tokens, err := auth.NewTokenService("handler-test-secret", time.Hour)
	require.NoError(t, err)
	authSvc := service.NewAuthService(repo.Users, tokens, log)
	todoSvc := service.NewTodoService(repo.Todos, log)

	h := NewHandler(authSvc, todoSvc, log, "test")
	router := NewRouter(h, middleware.AuthMiddleware(tokens, authSvc, log), log, "/api")
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Error)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func decodeTodo(t *testing.T, env envelope) testTodo {
	t.Helper()
	var todo testTodo
	require.NoError(t, json.Unmarshal(env.Data, &todo))
	return todo
}

func decodeTodos(t *testing.T, env envelope) []testTodo {
	t.Helper()
	var todos []testTodo
	require.NoError(t, json.Unmarshal(env.Data, &todos))
	return todos
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", env.Error)

	code, env = s.do(t, http.MethodPut, "/api/todos/todo_1", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", env.Error)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "user1@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var data struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, strings.Split(data.Token, "."), 3)

	user := data.User
	assert.Equal(t, "user1@example.com", user["email"])
	assert.Equal(t, "User One", user["name"])
	assert.Contains(t, user, "id")
	assert.Contains(t, user, "createdAt")
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
}

func TestLogin_Errors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"unknown user", map[string]string{"email": "nonexistent@example.com", "password": "password123"}, http.StatusUnauthorized, "User not found"},
		{"wrong password", map[string]string{"email": "user1@example.com", "password": "wrongpassword"}, http.StatusUnauthorized, "Invalid password"},
		{"missing email", map[string]string{"password": "password123"}, http.StatusBadRequest, "Email and password are required"},
		{"missing password", map[string]string{"email": "user1@example.com"}, http.StatusBadRequest, "Email and password are required"},
		{"empty body", map[string]string{}, http.StatusBadRequest, "Email and password are required"},
		{"empty email", map[string]string{"email": "", "password": "password123"}, http.StatusBadRequest, "Email and password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@example.com", "name": "New User", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, code)
	var user map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "new@example.com", user["email"])
	assert.NotContains(t, user, "password")

	code, env = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "user1@example.com", "name": "Another", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already exists", env.Error)

	code, env = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "x@example.com", "name": "User Two", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already exists", env.Error)

	code, env = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "y@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email, name and password are required", env.Error)
}

func TestListTodos(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/todos", "", nil)
	require.Equal(t, http.StatusOK, code)
	todos := decodeTodos(t, env)
	require.NotNil(t, env.Count)
	assert.Equal(t, len(todos), *env.Count)
	assert.Len(t, todos, 3)

	tests := []struct {
		query string
		want  []string
	}{
		{"category=WORK", []string{"todo_1"}},
		{"completed=true", []string{"todo_2"}},
		{"completed=false", []string{"todo_1", "todo_3"}},
		{"completed=yes", []string{"todo_1", "todo_3"}},
		{"priority=high", []string{"todo_1"}},
		{"ownerId=user_1", []string{"todo_1", "todo_2", "todo_3"}},
		{"ownerId=user_2", []string{}},
		{"search=backend", []string{"todo_1"}},
		{"search=MILK", []string{"todo_2"}},
		{"dueDate=2024-09-01", []string{"todo_1"}},
		{"dueDate=2024-09-02", []string{"todo_1", "todo_2"}},
		{"category=personal&completed=false", []string{"todo_3"}},
		{"category=personal&priority=medium", []string{"todo_2"}},
		{"priority=urgent", []string{}},
		{"dueDate=someday", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			code, env := s.do(t, http.MethodGet, "/api/todos?"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, code)
			got := []string{}
			for _, todo := range decodeTodos(t, env) {
				got = append(got, todo.ID)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), *env.Count)
		})
	}
}

func TestGetTodo(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/todos/todo_1", "", nil)
	require.Equal(t, http.StatusOK, code)
	todo := decodeTodo(t, env)
	assert.Equal(t, "Complete backend API", todo.Title)
	assert.Equal(t, "user_1", todo.OwnerID)
	assert.Equal(t, "high", todo.Priority)

	code, env = s.do(t, http.MethodGet, "/api/todos/todo_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Todo not found", env.Error)
}

func TestCreateTodo(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user1@example.com", "password123")

	code, env := s.do(t, http.MethodPost, "/api/todos", token, map[string]any{
		"title":       "Test Todo",
		"description": "Test description",
		"category":    "work",
		"priority":    "high",
		"dueDate":     "2024-12-31",
		"ownerId":     "user_2",
		"completed":   true,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.Equal(t, "Todo created successfully", env.Message)
	todo := decodeTodo(t, env)
	assert.Equal(t, "user_1", todo.OwnerID)
	assert.False(t, todo.Completed)
	assert.Equal(t, "Test description", todo.Description)
	assert.True(t, strings.HasPrefix(todo.DueDate, "2024-12-31"))

	code, env = s.do(t, http.MethodPost, "/api/todos", token, map[string]string{"title": "Minimal", "category": "personal"})
	require.Equal(t, http.StatusCreated, code)
	minimal := decodeTodo(t, env)
	assert.Empty(t, minimal.Priority)
	assert.Empty(t, minimal.DueDate)
}

func TestCreateTodo_Errors(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user1@example.com", "password123")

	tests := []struct {
		name       string
		token      string
		body       map[string]string
		wantStatus int
		wantError  string
	}{
		{"no token", "", map[string]string{"title": "t", "category": "c"}, http.StatusUnauthorized, "Authentication failed"},
		{"invalid token", "invalid-token", map[string]string{"title": "t", "category": "c"}, http.StatusUnauthorized, "Invalid or expired token"},
		{"missing title", token, map[string]string{"category": "c"}, http.StatusBadRequest, "Title and category are required"},
		{"missing category", token, map[string]string{"title": "t"}, http.StatusBadRequest, "Title and category are required"},
		{"empty title", token, map[string]string{"title": "", "category": "c"}, http.StatusBadRequest, "Title and category are required"},
		{"bad priority", token, map[string]string{"title": "t", "category": "c", "priority": "urgent"}, http.StatusBadRequest, "Priority must be one of: low, medium, high"},
		{"bad due date", token, map[string]string{"title": "t", "category": "c", "dueDate": "tomorrow"}, http.StatusBadRequest, "Invalid dueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPost, "/api/todos", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}
}

func TestUpdateTodo(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user1@example.com", "password123")

	code, env := s.do(t, http.MethodPatch, "/api/todos/todo_1", token, map[string]any{
		"title":     "Updated title",
		"completed": true,
		"ownerId":   "user_2",
		"id":        "todo_hijack",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "Todo updated successfully", env.Message)
	todo := decodeTodo(t, env)
	assert.Equal(t, "todo_1", todo.ID)
	assert.Equal(t, "Updated title", todo.Title)
	assert.Equal(t, "Build the todo CRUD API with authentication", todo.Description)
	assert.True(t, todo.Completed)
	assert.Equal(t, "user_1", todo.OwnerID)

	updatedAt, err := time.Parse(time.RFC3339Nano, todo.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, updatedAt.After(time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)))

	code, env = s.do(t, http.MethodPatch, "/api/todos/todo_missing", token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, env.Error, "not found")

	code, env = s.do(t, http.MethodPatch, "/api/todos/todo_1", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authentication failed", env.Error)
}

func TestUpdateTodo_ChecksOwnershipBeforeBody(t *testing.T) {
	s := newTestServer(t)
	owner := s.login(t, "user1@example.com", "password123")
	other := s.login(t, "user2@example.com", "password456")

	tests := []struct {
		name       string
		token      string
		path       string
		body       map[string]any
		wantStatus int
		wantError  string
	}{
		{"non-owner bad priority", other, "/api/todos/todo_1", map[string]any{"priority": "urgent"}, http.StatusForbidden, "Not authorized to update this todo"},
		{"non-owner empty title", other, "/api/todos/todo_1", map[string]any{"title": ""}, http.StatusForbidden, "Not authorized to update this todo"},
		{"non-owner bad due date", other, "/api/todos/todo_1", map[string]any{"dueDate": "soon"}, http.StatusForbidden, "Not authorized to update this todo"},
		{"missing todo bad due date", other, "/api/todos/nope", map[string]any{"dueDate": "soon"}, http.StatusNotFound, "Todo not found"},
		{"missing todo empty category", owner, "/api/todos/nope", map[string]any{"category": ""}, http.StatusNotFound, "Todo not found"},
		{"owner bad priority", owner, "/api/todos/todo_1", map[string]any{"priority": "urgent"}, http.StatusBadRequest, "Priority must be one of: low, medium, high"},
		{"owner empty title", owner, "/api/todos/todo_1", map[string]any{"title": ""}, http.StatusBadRequest, "Title and category cannot be empty"},
		{"owner null category", owner, "/api/todos/todo_1", map[string]any{"category": nil}, http.StatusBadRequest, "Title and category cannot be empty"},
		{"owner bad due date", owner, "/api/todos/todo_1", map[string]any{"dueDate": "soon"}, http.StatusBadRequest, "Invalid dueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPatch, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}

	code, env := s.do(t, http.MethodGet, "/api/todos/todo_1", "", nil)
	require.Equal(t, http.StatusOK, code)
	todo := decodeTodo(t, env)
	assert.Equal(t, "Complete backend API", todo.Title)
	assert.Equal(t, "high", todo.Priority)
}

func TestUpdateTodo_NullClearsOptionalFields(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user1@example.com", "password123")

	code, env := s.do(t, http.MethodPatch, "/api/todos/todo_1", token, map[string]any{
		"description": nil,
		"dueDate":     nil,
		"priority":    nil,
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	todo := decodeTodo(t, env)
	assert.Empty(t, todo.Description)
	assert.Empty(t, todo.DueDate)
	assert.Empty(t, todo.Priority)
	assert.Equal(t, "Complete backend API", todo.Title)
	assert.Equal(t, "work", todo.Category)

	code, env = s.do(t, http.MethodGet, "/api/todos?dueDate=2024-12-31", "", nil)
	require.Equal(t, http.StatusOK, code)
	for _, listed := range decodeTodos(t, env) {
		assert.NotEqual(t, "todo_1", listed.ID)
	}
}

func TestDeleteTodo(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user1@example.com", "password123")

	code, env := s.do(t, http.MethodDelete, "/api/todos/todo_3", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Todo deleted successfully", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/todos/todo_3", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Todo not found", env.Error)

	code, _ = s.do(t, http.MethodDelete, "/api/todos/todo_3", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEndToEnd_OwnershipAcrossUsers(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "e@example.com", "name": "Eve", "password": "p",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var registered struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &registered))

	ownerToken := s.login(t, "e@example.com", "p")
	code, env = s.do(t, http.MethodPost, "/api/todos", ownerToken, map[string]string{"title": "Mine", "category": "work"})
	require.Equal(t, http.StatusCreated, code)
	todo := decodeTodo(t, env)
	assert.Equal(t, registered.ID, todo.OwnerID)

	otherToken := s.login(t, "user2@example.com", "password456")
	code, env = s.do(t, http.MethodPatch, "/api/todos/"+todo.ID, otherToken, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not authorized to update this todo", env.Error)

	code, env = s.do(t, http.MethodDelete, "/api/todos/"+todo.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not authorized to delete this todo", env.Error)

	code, env = s.do(t, http.MethodGet, "/api/todos/"+todo.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Mine", decodeTodo(t, env).Title)

	code, _ = s.do(t, http.MethodDelete, "/api/todos/"+todo.ID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, code)
}
