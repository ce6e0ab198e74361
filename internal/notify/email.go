// Package notify delivers overdue-todo reminders to todo owners.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendOverdueReminder e-mails the owner about a todo past its due date
func (s *Sender) SendOverdueReminder(owner models.PublicUser, todo models.Todo) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{owner.Email}
	e.Subject, e.Text = reminderMessage(owner, todo)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send reminder to %s: %v", owner.Email, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", owner.Email, e.Subject)
	return nil
}

func reminderMessage(owner models.PublicUser, todo models.Todo) (string, []byte) {
	subject := fmt.Sprintf("Overdue todo: %s", todo.Title)

	body := fmt.Sprintf("Dear %s,\n\n", owner.Name)
	body += fmt.Sprintf("Your todo %q in category %q was due on %s and is not completed yet.\n",
		todo.Title, todo.Category, todo.DueDate.Format(time.DateOnly))
	if todo.Priority != "" {
		body += fmt.Sprintf("Priority: %s\n", todo.Priority)
	}
	if todo.Description != "" {
		body += fmt.Sprintf("Description: %s\n", todo.Description)
	}
	body += "\nBest regards,\nTodo Service"
	return subject, []byte(body)
}

// LogNotifier records reminders in the log when SMTP is not configured
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendOverdueReminder(owner models.PublicUser, todo models.Todo) error {
	n.logger.WithFields(logrus.Fields{
		"todo_id":  todo.ID,
		"owner_id": owner.ID,
		"email":    owner.Email,
		"due_date": todo.DueDate.Format(time.DateOnly),
	}).Info("Todo overdue")
	return nil
}
