package service

import (
	"fmt"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type demoUser struct {
	id, email, name, password string
}

var demoUsers = []demoUser{
	{id: "user_1", email: "user1@example.com", name: "User One", password: "password123"},
	{id: "user_2", email: "user2@example.com", name: "User Two", password: "password456"},
}

func demoTodos() []models.Todo {
	day := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	}
	due := func(s string) *time.Time {
		t := day(s)
		return &t
	}
	created := day("2024-08-30")
	return []models.Todo{
		{
			ID:          "todo_1",
			Title:       "Complete backend API",
			Description: "Build the todo CRUD API with authentication",
			Category:    "work",
			Priority:    models.PriorityHigh,
			OwnerID:     "user_1",
			DueDate:     due("2024-09-01"),
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          "todo_2",
			Title:       "Buy groceries",
			Description: "Milk, bread, eggs, vegetables",
			Category:    "personal",
			Completed:   true,
			Priority:    models.PriorityMedium,
			OwnerID:     "user_1",
			DueDate:     due("2024-09-02"),
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          "todo_3",
			Title:       "Plan weekend trip",
			Description: "Research destinations and book accommodation",
			Category:    "personal",
			Priority:    models.PriorityLow,
			OwnerID:     "user_1",
			DueDate:     due("2024-09-05"),
			CreatedAt:   created,
			UpdatedAt:   created,
		},
	}
}

// SeedDemoData loads the demo users and todos into empty stores
func SeedDemoData(repo *repository.Repository, log *logrus.Logger) error {
	now := time.Now()
	for _, d := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), PasswordCost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		user := models.User{
			ID:           d.id,
			Email:        d.email,
			Name:         d.name,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.Users.Insert(user); err != nil {
			return err
		}
		log.WithField("email", d.email).Info("Demo user created")
	}

	todos := demoTodos()
	for _, t := range todos {
		if err := repo.Todos.Insert(t); err != nil {
			return err
		}
	}
	log.Infof("%d demo todos initialized for user_1", len(todos))
	return nil
}
