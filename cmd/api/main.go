package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/handler"
	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/notify"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/Dan9191/todo-service/internal/scheduler"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := run(logger); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}

func run(logger *logrus.Logger) error {
	flags := pflag.NewFlagSet("todo-api", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to a .env file loaded before reading the environment")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Load configuration
	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize layers
	repo := repository.NewRepository()
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		return err
	}
	authSvc := service.NewAuthService(repo.Users, tokens, logger)
	todoSvc := service.NewTodoService(repo.Todos, logger)

	if cfg.SeedDemoData {
		if err := service.SeedDemoData(repo, logger); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	logger.WithFields(logrus.Fields{
		"users": repo.Users.Count(),
		"todos": repo.Todos.Count(),
	}).Info("Stores initialized")

	h := handler.NewHandler(authSvc, todoSvc, logger, cfg.Environment)
	router := handler.NewRouter(h, middleware.AuthMiddleware(tokens, authSvc, logger), logger, cfg.APIPrefix)

	// Overdue reminders
	if cfg.ReminderSchedule != "" {
		var notifier scheduler.Notifier = notify.NewLogNotifier(logger)
		if cfg.SMTPEnabled() {
			notifier = notify.NewSender(cfg, logger)
		}
		job := scheduler.NewReminderJob(repo.Todos, repo.Users, notifier, logger)
		sched, err := scheduler.New(cfg.ReminderSchedule, job, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting server on %s (API base %s, environment %s)", addr, cfg.APIPrefix, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal, closing server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server closed successfully")
	return nil
}
