package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords
const PasswordCost = 10

// UserStore is the credential store used by AuthService
type UserStore interface {
	FindByEmailOrName(email, name string) (models.User, error)
	FindByEmail(email string) (models.User, error)
	FindByID(id string) (models.User, error)
	Insert(user models.User) error
}

// TokenIssuer mints access tokens
type TokenIssuer interface {
	Issue(user models.PublicUser) (string, error)
}

// AuthService handles registration, login and caller resolution
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	log    *logrus.Logger
	now    Clock
	newID  func() string

	// serializes the uniqueness check with the insert
	registerMu sync.Mutex
}

// NewAuthService initializes a new auth service
func NewAuthService(users UserStore, tokens TokenIssuer, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
		newID:  func() string { return "user_" + uuid.NewString() },
	}
}

// Register creates a new user with a hashed password
func (s *AuthService) Register(ctx context.Context, email, name, password string) (models.PublicUser, error) {
	if email == "" || name == "" || password == "" {
		return models.PublicUser{}, ErrMissingUserFields
	}
	if err := s.checkAvailable(email, name); err != nil {
		return models.PublicUser{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()
	// another registration may have won the race while hashing
	if err := s.checkAvailable(email, name); err != nil {
		return models.PublicUser{}, err
	}

	now := s.now()
	user := models.User{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(user); err != nil {
		return models.PublicUser{}, err
	}

	s.log.WithContext(ctx).WithField("user_id", user.ID).Infof("User registered: %s", user.Email)
	return user.Public(), nil
}

// Login authenticates a user and returns a signed token.
// Unknown email and wrong password yield different errors.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.PublicUser, error) {
	if email == "" || password == "" {
		return "", models.PublicUser{}, ErrMissingCredentials
	}
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", models.PublicUser{}, ErrUserNotFound
		}
		return "", models.PublicUser{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.WithContext(ctx).WithField("user_id", user.ID).Warn("Login rejected: invalid password")
		return "", models.PublicUser{}, ErrInvalidPassword
	}

	public := user.Public()
	token, err := s.tokens.Issue(public)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.WithContext(ctx).WithField("user_id", user.ID).Infof("User logged in: %s", user.Email)
	return token, public, nil
}

// ResolveCaller returns the public view of the user with the given id
func (s *AuthService) ResolveCaller(ctx context.Context, id string) (models.PublicUser, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.PublicUser{}, ErrUserNotFound
		}
		return models.PublicUser{}, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.Public(), nil
}

func (s *AuthService) checkAvailable(email, name string) error {
	_, err := s.users.FindByEmailOrName(email, name)
	switch {
	case err == nil:
		return ErrUserExists
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check existing user: %w", err)
	}
}
