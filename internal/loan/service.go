package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/events"
	"gorm.io/gorm"
)

// ClientRepository defines the data access methods for loan-company clients.
type ClientRepository interface {
	CreateWithApplication(c *Client, a *Application) error
	GetByID(id string) (*Client, error)
	GetWithApplications(id string) (*Client, error)
	ListWithApplications() ([]*Client, error)
	Update(c *Client) error
	// DeleteCascade removes the client's documents, payments and
	// applications before the client itself, in one transaction.
	DeleteCascade(id string) error
}

// ApplicationRepository defines the data access methods for applications.
type ApplicationRepository interface {
	Create(a *Application) error
	GetByID(id string) (*Application, error)
	GetWithDetails(id string) (*Application, error)
	GetLatestByClient(clientID string) (*Application, error)
	Update(a *Application) error
	UpdateStatus(id, status string) error
	Exists(id string) (bool, error)
}

// EventPublisher decouples the service from the event bus for testing.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Service orchestrates client and application operations. Payment-driven
// status changes live in the payment package; the only status write here is
// the administrator's direct override.
type Service struct {
	clients ClientRepository
	apps    ApplicationRepository
	bus     EventPublisher
	logger  *slog.Logger
}

func NewService(clients ClientRepository, apps ApplicationRepository, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		clients: clients,
		apps:    apps,
		bus:     bus,
		logger:  logger,
	}
}

// CreateClientWithApplication registers a new client together with their
// first application. The application always starts pending approval with no
// approved amount.
func (s *Service) CreateClientWithApplication(dto CreateClientWithApplicationDTO) (*Client, *Application, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("client intake validation failed", "error", err)
		return nil, nil, err
	}

	now := time.Now()
	client := &Client{
		ID:               uuid.NewString(),
		FirstNames:       dto.FirstNames,
		LastNames:        dto.LastNames,
		NationalID:       dto.NationalID,
		Phone:            dto.Phone,
		Email:            dto.Email,
		TaxID:            dto.TaxID,
		Workplace:        dto.Workplace,
		WorkplaceAddress: dto.WorkplaceAddress,
		HomeAddress:      dto.HomeAddress,
		RegisteredAt:     now,
	}

	app := &Application{
		ID:                    uuid.NewString(),
		ClientID:              client.ID,
		RequestedAmount:       dto.RequestedAmount,
		Status:                StatusPendingApproval,
		CollateralType:        dto.CollateralType,
		CollateralDescription: dto.CollateralDescription,
		TermMonths:            dto.TermMonths,
		PaymentNotes:          dto.PaymentNotes,
		RequestDate:           dto.RequestDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if dto.AnnualInterestRate != nil {
		app.AnnualInterestRate.Decimal = *dto.AnnualInterestRate
		app.AnnualInterestRate.Valid = true
	}

	if err := s.clients.CreateWithApplication(client, app); err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok {
			return nil, nil, appErr
		}
		s.logger.Error("failed to create client with application", "error", err)
		return nil, nil, apperrors.NewInternalError("failed to register the client", err)
	}

	s.logger.Info("loan client registered",
		"client_id", client.ID,
		"application_id", app.ID,
		"requested_amount", dto.RequestedAmount.String())

	return client, app, nil
}

func (s *Service) ListClientsWithApplications() ([]*Client, error) {
	clients, err := s.clients.ListWithApplications()
	if err != nil {
		s.logger.Error("failed to list loan clients", "error", err)
		return nil, apperrors.NewInternalError("failed to load loan clients", err)
	}
	return clients, nil
}

func (s *Service) GetClientWithApplications(id string) (*Client, error) {
	client, err := s.clients.GetWithApplications(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		s.logger.Error("failed to load loan client", "error", err, "client_id", id)
		return nil, apperrors.NewInternalError("failed to load the client", err)
	}
	return client, nil
}

// UpdateClientAndLatestApplication applies a partial update to the client
// and, when application fields are present, to their most recent application
// (creating one when the client has none and enough fields were supplied).
func (s *Service) UpdateClientAndLatestApplication(clientID string, dto UpdateClientWithApplicationDTO) (*Client, *Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := s.clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrClientNotFound
		}
		return nil, nil, apperrors.NewInternalError("failed to load the client", err)
	}

	applyClientUpdate(client, dto)
	if err := s.clients.Update(client); err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok {
			return nil, nil, appErr
		}
		s.logger.Error("failed to update loan client", "error", err, "client_id", clientID)
		return nil, nil, apperrors.NewInternalError("failed to update the client", err)
	}

	if !dto.hasApplicationFields() {
		return client, nil, nil
	}

	app, err := s.apps.GetLatestByClient(clientID)
	switch {
	case err == nil:
		applyApplicationUpdate(app, dto)
		app.UpdatedAt = time.Now()
		if err := s.apps.Update(app); err != nil {
			s.logger.Error("failed to update application", "error", err, "application_id", app.ID)
			return nil, nil, apperrors.NewInternalError("failed to update the application", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound) && dto.canCreateApplication():
		now := time.Now()
		app = &Application{
			ID:                    uuid.NewString(),
			ClientID:              clientID,
			RequestedAmount:       *dto.RequestedAmount,
			Status:                StatusPendingApproval,
			CollateralType:        *dto.CollateralType,
			CollateralDescription: dto.CollateralDescription,
			TermMonths:            dto.TermMonths,
			PaymentNotes:          dto.PaymentNotes,
			RequestDate:           *dto.RequestDate,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if dto.AnnualInterestRate != nil {
			app.AnnualInterestRate.Decimal = *dto.AnnualInterestRate
			app.AnnualInterestRate.Valid = true
		}
		if err := s.apps.Create(app); err != nil {
			s.logger.Error("failed to create application during client update", "error", err, "client_id", clientID)
			return nil, nil, apperrors.NewInternalError("failed to create the application", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Not enough fields to create one; the client update still counts.
		return client, nil, nil
	default:
		return nil, nil, apperrors.NewInternalError("failed to load the application", err)
	}

	return client, app, nil
}

// DeleteClient removes the client and everything hanging off them:
// documents, payments, applications, then the client row.
func (s *Service) DeleteClient(id string) error {
	if _, err := s.clients.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrClientNotFound
		}
		return apperrors.NewInternalError("failed to load the client", err)
	}

	if err := s.clients.DeleteCascade(id); err != nil {
		s.logger.Error("cascade delete failed", "error", err, "client_id", id)
		return apperrors.NewInternalError("failed to delete the client and associated records", err)
	}

	s.logger.Info("loan client deleted with applications, payments and documents", "client_id", id)
	return nil
}

func (s *Service) GetApplication(id string) (*Application, error) {
	app, err := s.apps.GetWithDetails(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		s.logger.Error("failed to load application", "error", err, "application_id", id)
		return nil, apperrors.NewInternalError("failed to load the application", err)
	}
	return app, nil
}

// AddApplication creates an additional application for an existing client.
func (s *Service) AddApplication(clientID string, dto AddApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.clients.GetByID(clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the client", err)
	}

	now := time.Now()
	app := &Application{
		ID:                    uuid.NewString(),
		ClientID:              clientID,
		RequestedAmount:       dto.RequestedAmount,
		Status:                StatusPendingApproval,
		CollateralType:        dto.CollateralType,
		CollateralDescription: dto.CollateralDescription,
		TermMonths:            dto.TermMonths,
		PaymentNotes:          dto.PaymentNotes,
		RequestDate:           dto.RequestDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if dto.AnnualInterestRate != nil {
		app.AnnualInterestRate.Decimal = *dto.AnnualInterestRate
		app.AnnualInterestRate.Valid = true
	}

	if err := s.apps.Create(app); err != nil {
		s.logger.Error("failed to create application", "error", err, "client_id", clientID)
		return nil, apperrors.NewInternalError("failed to create the application", err)
	}

	s.logger.Info("application added", "application_id", app.ID, "client_id", clientID)
	return app, nil
}

// UpdateApplication edits administrator-mutable attributes, including the
// approved amount. The requested amount and status are untouched here.
func (s *Service) UpdateApplication(id string, dto UpdateApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the application", err)
	}

	if dto.ApprovedAmount != nil {
		app.ApprovedAmount.Decimal = *dto.ApprovedAmount
		app.ApprovedAmount.Valid = true
	}
	if dto.CollateralType != nil {
		app.CollateralType = *dto.CollateralType
	}
	if dto.CollateralDescription != nil {
		app.CollateralDescription = dto.CollateralDescription
	}
	if dto.TermMonths != nil {
		app.TermMonths = dto.TermMonths
	}
	if dto.AnnualInterestRate != nil {
		app.AnnualInterestRate.Decimal = *dto.AnnualInterestRate
		app.AnnualInterestRate.Valid = true
	}
	if dto.PaymentNotes != nil {
		app.PaymentNotes = dto.PaymentNotes
	}
	app.UpdatedAt = time.Now()

	if err := s.apps.Update(app); err != nil {
		s.logger.Error("failed to update application", "error", err, "application_id", id)
		return nil, apperrors.NewInternalError("failed to update the application", err)
	}

	return app, nil
}

// SetStatus is the administrator's direct override: it writes the chosen
// status without consulting the payment history, stamping the approval and
// disbursement dates the first time those milestones are reached.
func (s *Service) SetStatus(id, status string) (*Application, error) {
	if !ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid application status", apperrors.ErrCodeInvalidStatus)
	}

	app, err := s.apps.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the application", err)
	}

	previous := app.Status
	now := time.Now()
	app.Status = status
	if status == StatusApproved && app.ApprovalDate == nil {
		app.ApprovalDate = &now
	}
	if status == StatusDisbursed && app.DisbursementDate == nil {
		app.DisbursementDate = &now
	}
	app.UpdatedAt = now

	if err := s.apps.Update(app); err != nil {
		s.logger.Error("failed to write status override", "error", err, "application_id", id, "status", status)
		return nil, apperrors.NewInternalError("failed to update the application status", err)
	}

	s.logger.Info("application status overridden",
		"application_id", id,
		"previous_status", previous,
		"new_status", status)

	if s.bus != nil && previous != status {
		s.bus.Publish(context.Background(), events.NewLoanStatusChangedEvent(id, previous, status, "override"))
	}

	return app, nil
}

func applyClientUpdate(client *Client, dto UpdateClientWithApplicationDTO) {
	if dto.FirstNames != nil {
		client.FirstNames = *dto.FirstNames
	}
	if dto.LastNames != nil {
		client.LastNames = *dto.LastNames
	}
	if dto.NationalID != nil {
		client.NationalID = *dto.NationalID
	}
	if dto.Phone != nil {
		client.Phone = *dto.Phone
	}
	if dto.Email != nil {
		client.Email = *dto.Email
	}
	if dto.TaxID != nil {
		client.TaxID = dto.TaxID
	}
	if dto.Workplace != nil {
		client.Workplace = *dto.Workplace
	}
	if dto.WorkplaceAddress != nil {
		client.WorkplaceAddress = dto.WorkplaceAddress
	}
	if dto.HomeAddress != nil {
		client.HomeAddress = *dto.HomeAddress
	}
}

func applyApplicationUpdate(app *Application, dto UpdateClientWithApplicationDTO) {
	// The requested amount of an existing application is immutable; a new
	// amount only matters when a fresh application is created.
	if dto.CollateralType != nil {
		app.CollateralType = *dto.CollateralType
	}
	if dto.CollateralDescription != nil {
		app.CollateralDescription = dto.CollateralDescription
	}
	if dto.RequestDate != nil {
		app.RequestDate = *dto.RequestDate
	}
	if dto.PaymentNotes != nil {
		app.PaymentNotes = dto.PaymentNotes
	}
	if dto.TermMonths != nil {
		app.TermMonths = dto.TermMonths
	}
	if dto.AnnualInterestRate != nil {
		app.AnnualInterestRate.Decimal = *dto.AnnualInterestRate
		app.AnnualInterestRate.Valid = true
	}
}
