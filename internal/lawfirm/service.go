package lawfirm

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/mailer"
	"gorm.io/gorm"
)

// Repository defines the data access methods for firm clients and their
// case log.
type Repository interface {
	Create(c *FirmClient) error
	GetByID(id string) (*FirmClient, error)
	GetWithCaseLog(id string) (*FirmClient, error)
	List() ([]*FirmClient, error)
	Update(c *FirmClient) error
	// DeleteCascade removes the client's case log entries and then the
	// client row, in one transaction.
	DeleteCascade(id string) error

	CreateLogEntry(e *CaseLogEntry) error
	GetLogEntry(id string) (*CaseLogEntry, error)
	ListLogEntries(firmClientID string) ([]*CaseLogEntry, error)
	UpdateLogEntry(e *CaseLogEntry) error
	DeleteLogEntry(id string) error
}

// Service manages the firm's legal clients and their case history.
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

// Register creates a firm client from the intake form. The optional message
// becomes the first case log entry. Confirmation and admin notification
// emails are attempted afterwards; their failure never fails the
// registration, it only shows up in the status message.
func (s *Service) Register(dto RegisterFirmClientDTO) (*RegisterResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	client := &FirmClient{
		ID:           uuid.NewString(),
		FullName:     dto.FullName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		NationalID:   dto.NationalID,
		Workplace:    dto.Workplace,
		CaseType:     dto.CaseType,
		Status:       StatusConsultation,
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(client); err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to register firm client", "error", err)
		return nil, apperrors.NewInternalError("failed to register the client", err)
	}

	if dto.Message != nil && *dto.Message != "" {
		entry := &CaseLogEntry{
			ID:           uuid.NewString(),
			FirmClientID: client.ID,
			Description:  *dto.Message,
			EntryDate:    now,
			CreatedAt:    now,
		}
		if err := s.repo.CreateLogEntry(entry); err != nil {
			s.logger.Error("failed to store intake message as case log entry", "error", err, "firm_client_id", client.ID)
		}
	}

	s.logger.Info("firm client registered", "firm_client_id", client.ID, "case_type", client.CaseType)

	statusMsg := "registration received"
	if err := s.mail.Send(client.Email,
		"We received your consultation request",
		fmt.Sprintf("<p>Hello %s,</p><p>Your %s consultation request was received. We will contact you shortly.</p>", client.FullName, client.CaseType),
	); err != nil {
		statusMsg = "registration received, but the confirmation email could not be sent"
	}
	if s.adminEmail != "" {
		if err := s.mail.Send(s.adminEmail,
			"New consultation request",
			fmt.Sprintf("<p>New firm client: %s (%s), case type: %s.</p>", client.FullName, client.Email, client.CaseType),
		); err != nil {
			s.logger.Error("failed to notify admin of new firm client", "error", err, "firm_client_id", client.ID)
		}
	}

	return &RegisterResult{
		Client:        ToFirmClientResponse(client),
		StatusMessage: statusMsg,
	}, nil
}

func (s *Service) List() ([]*FirmClient, error) {
	clients, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list firm clients", "error", err)
		return nil, apperrors.NewInternalError("failed to load firm clients", err)
	}
	return clients, nil
}

func (s *Service) Get(id string) (*FirmClient, error) {
	client, err := s.repo.GetWithCaseLog(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFirmClientNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the firm client", err)
	}
	return client, nil
}

func (s *Service) Update(id string, dto UpdateFirmClientDTO) (*FirmClient, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	client, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFirmClientNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the firm client", err)
	}

	if dto.FullName != nil {
		client.FullName = *dto.FullName
	}
	if dto.Email != nil {
		client.Email = *dto.Email
	}
	if dto.Phone != nil {
		client.Phone = dto.Phone
	}
	if dto.NationalID != nil {
		client.NationalID = dto.NationalID
	}
	if dto.Workplace != nil {
		client.Workplace = dto.Workplace
	}
	if dto.CaseType != nil {
		client.CaseType = *dto.CaseType
	}
	client.UpdatedAt = time.Now()

	if err := s.repo.Update(client); err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update firm client", "error", err, "firm_client_id", id)
		return nil, apperrors.NewInternalError("failed to update the firm client", err)
	}

	return client, nil
}

// ChangeStatus moves the client through the case lifecycle. Only statuses
// from the closed set are accepted.
func (s *Service) ChangeStatus(id, status string) (*FirmClient, error) {
	if !ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid firm client status", apperrors.ErrCodeInvalidStatus)
	}

	client, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFirmClientNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the firm client", err)
	}

	previous := client.Status
	client.Status = status
	client.UpdatedAt = time.Now()

	if err := s.repo.Update(client); err != nil {
		s.logger.Error("failed to change firm client status", "error", err, "firm_client_id", id)
		return nil, apperrors.NewInternalError("failed to change the client status", err)
	}

	s.logger.Info("firm client status changed",
		"firm_client_id", id,
		"previous_status", previous,
		"new_status", status)
	return client, nil
}

// Delete removes the client together with their case log.
func (s *Service) Delete(id string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrFirmClientNotFound
		}
		return apperrors.NewInternalError("failed to load the firm client", err)
	}

	if err := s.repo.DeleteCascade(id); err != nil {
		s.logger.Error("failed to delete firm client", "error", err, "firm_client_id", id)
		return apperrors.NewInternalError("failed to delete the firm client", err)
	}

	s.logger.Info("firm client deleted with case log", "firm_client_id", id)
	return nil
}

func (s *Service) AddLogEntry(firmClientID string, dto CaseLogEntryDTO) (*CaseLogEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(firmClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFirmClientNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the firm client", err)
	}

	now := time.Now()
	entry := &CaseLogEntry{
		ID:           uuid.NewString(),
		FirmClientID: firmClientID,
		Description:  dto.Description,
		ActionType:   dto.ActionType,
		EntryDate:    now,
		CreatedAt:    now,
	}
	if dto.EntryDate != nil {
		entry.EntryDate = *dto.EntryDate
	}

	if err := s.repo.CreateLogEntry(entry); err != nil {
		s.logger.Error("failed to create case log entry", "error", err, "firm_client_id", firmClientID)
		return nil, apperrors.NewInternalError("failed to create the case log entry", err)
	}

	return entry, nil
}

func (s *Service) ListLogEntries(firmClientID string) ([]*CaseLogEntry, error) {
	if _, err := s.repo.GetByID(firmClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFirmClientNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the firm client", err)
	}

	entries, err := s.repo.ListLogEntries(firmClientID)
	if err != nil {
		s.logger.Error("failed to list case log entries", "error", err, "firm_client_id", firmClientID)
		return nil, apperrors.NewInternalError("failed to load case log entries", err)
	}
	return entries, nil
}

func (s *Service) UpdateLogEntry(entryID string, dto CaseLogEntryDTO) (*CaseLogEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetLogEntry(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCaseLogNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the case log entry", err)
	}

	entry.Description = dto.Description
	if dto.ActionType != nil {
		entry.ActionType = dto.ActionType
	}
	if dto.EntryDate != nil {
		entry.EntryDate = *dto.EntryDate
	}

	if err := s.repo.UpdateLogEntry(entry); err != nil {
		s.logger.Error("failed to update case log entry", "error", err, "entry_id", entryID)
		return nil, apperrors.NewInternalError("failed to update the case log entry", err)
	}

	return entry, nil
}

func (s *Service) DeleteLogEntry(entryID string) error {
	if err := s.repo.DeleteLogEntry(entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCaseLogNotFound
		}
		s.logger.Error("failed to delete case log entry", "error", err, "entry_id", entryID)
		return apperrors.NewInternalError("failed to delete the case log entry", err)
	}
	return nil
}
