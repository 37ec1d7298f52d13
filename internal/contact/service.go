package contact

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/mailer"
)

// Repository defines the data access methods for contact messages.
type Repository interface {
	Create(m *ContactMessage) error
	List() ([]*ContactMessage, error)
}

// Service stores contact form submissions and notifies the administrator.
type Service struct {
	repo       Repository
	mail       mailer.Mailer
	adminEmail string
	logger     *slog.Logger
}

func NewService(repo Repository, mail mailer.Mailer, adminEmail string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		mail:       mail,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Submit validates and persists the message, then tries to notify the
// administrator by email. The mail step never fails the submission; its
// outcome shows up in the status message only.
func (s *Service) Submit(dto SubmitContactDTO) (*SubmitResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	msg := &ContactMessage{
		ID:         uuid.NewString(),
		Name:       dto.Name,
		Email:      dto.Email,
		Phone:      dto.Phone,
		Subject:    dto.Subject,
		Message:    dto.Message,
		ReceivedAt: time.Now(),
	}

	if err := s.repo.Create(msg); err != nil {
		s.logger.Error("failed to store contact message", "error", err)
		return nil, apperrors.NewInternalError("failed to store the message", err)
	}

	s.logger.Info("contact message received", "contact_message_id", msg.ID, "email", msg.Email)

	statusMsg := "message received"
	if s.adminEmail != "" {
		subject := "New contact form message"
		if msg.Subject != nil && *msg.Subject != "" {
			subject = fmt.Sprintf("New contact form message: %s", *msg.Subject)
		}
		body := fmt.Sprintf("<p>From: %s (%s)</p><p>%s</p>", msg.Name, msg.Email, msg.Message)
		if err := s.mail.Send(s.adminEmail, subject, body); err != nil {
			statusMsg = "message received, but the notification email could not be sent"
		}
	}

	return &SubmitResult{
		Message:       ToContactMessageResponse(msg),
		StatusMessage: statusMsg,
	}, nil
}

func (s *Service) List() ([]*ContactMessage, error) {
	messages, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list contact messages", "error", err)
		return nil, apperrors.NewInternalError("failed to load contact messages", err)
	}
	return messages, nil
}
