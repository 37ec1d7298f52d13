package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/events"
	"github.com/sierrasilva/backoffice/internal/loan"
	"gorm.io/gorm"
)

// Repository defines the data access methods for payments.
type Repository interface {
	Create(p *Payment) error
	GetByID(id string) (*Payment, error)
	ListByApplication(applicationID string) ([]*Payment, error)
	Update(p *Payment) error
	Delete(id string) error
}

// ApplicationStore is the slice of the application repository this package
// needs: load one application and write its status.
type ApplicationStore interface {
	GetByID(id string) (*loan.Application, error)
	UpdateStatus(id, status string) error
}

// EventPublisher decouples the service from the event bus for testing.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Service records, edits and removes payments, and re-derives the owning
// application's status after every mutation.
type Service struct {
	payments Repository
	apps     ApplicationStore
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(payments Repository, apps ApplicationStore, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		payments: payments,
		apps:     apps,
		bus:      bus,
		logger:   logger,
	}
}

// Record registers a payment against an application. The application must be
// in a status that admits payments; partial and over-payments are both legal.
func (s *Service) Record(applicationID string, dto RecordPaymentDTO) (*RecordResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	app, err := s.loadApplication(applicationID)
	if err != nil {
		return nil, err
	}

	if !loan.StatusAllowsPayments(app.Status) {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("payments cannot be recorded while the application is %s", app.Status),
			apperrors.ErrCodePaymentNotAllowed)
	}

	p := &Payment{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		AmountPaid:    dto.AmountPaid,
		PaymentDate:   dto.PaymentDate,
		Method:        dto.Method,
		Reference:     dto.Reference,
		Notes:         dto.Notes,
		RecordedAt:    time.Now(),
	}

	if err := s.payments.Create(p); err != nil {
		s.logger.Error("failed to record payment", "error", err, "application_id", applicationID)
		return nil, apperrors.NewInternalError("failed to record the payment", err)
	}

	s.logger.Info("payment recorded",
		"payment_id", p.ID,
		"application_id", applicationID,
		"amount_paid", dto.AmountPaid.String())

	status, err := s.rederiveStatus(app)
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewPaymentRecordedEvent(p.ID, applicationID, p.AmountPaid.InexactFloat64()))
	}

	return &RecordResult{
		Payment:           ToPaymentResponse(p),
		ApplicationStatus: status,
	}, nil
}

// Update applies a partial edit to a payment. An empty patch is a no-op that
// still succeeds. Any change triggers status re-derivation.
func (s *Service) Update(paymentID string, dto UpdatePaymentDTO) (*RecordResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.loadPayment(paymentID)
	if err != nil {
		return nil, err
	}

	app, err := s.loadApplication(p.ApplicationID)
	if err != nil {
		return nil, err
	}

	if dto.IsEmpty() {
		return &RecordResult{
			Payment:           ToPaymentResponse(p),
			ApplicationStatus: app.Status,
		}, nil
	}

	if dto.AmountPaid != nil {
		p.AmountPaid = *dto.AmountPaid
	}
	if dto.PaymentDate != nil {
		p.PaymentDate = *dto.PaymentDate
	}
	if dto.Method != nil {
		p.Method = dto.Method
	}
	if dto.Reference != nil {
		p.Reference = dto.Reference
	}
	if dto.Notes != nil {
		p.Notes = dto.Notes
	}

	if err := s.payments.Update(p); err != nil {
		s.logger.Error("failed to update payment", "error", err, "payment_id", paymentID)
		return nil, apperrors.NewInternalError("failed to update the payment", err)
	}

	status, err := s.rederiveStatus(app)
	if err != nil {
		return nil, err
	}

	return &RecordResult{
		Payment:           ToPaymentResponse(p),
		ApplicationStatus: status,
	}, nil
}

// Delete removes a payment and re-derives the application's status. Removing
// the last payment walks the status back to the latest milestone, except for
// rejected and cancelled applications which stay put.
func (s *Service) Delete(paymentID string) (string, error) {
	p, err := s.loadPayment(paymentID)
	if err != nil {
		return "", err
	}

	app, err := s.loadApplication(p.ApplicationID)
	if err != nil {
		return "", err
	}

	if err := s.payments.Delete(paymentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrPaymentNotFound
		}
		s.logger.Error("failed to delete payment", "error", err, "payment_id", paymentID)
		return "", apperrors.NewInternalError("failed to delete the payment", err)
	}

	s.logger.Info("payment deleted", "payment_id", paymentID, "application_id", p.ApplicationID)

	status, err := s.rederiveStatus(app)
	if err != nil {
		return "", err
	}

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewPaymentDeletedEvent(paymentID, p.ApplicationID))
	}

	return status, nil
}

// ListByApplication returns an application's payments, most recent first.
func (s *Service) ListByApplication(applicationID string) ([]PaymentResponse, error) {
	if _, err := s.loadApplication(applicationID); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByApplication(applicationID)
	if err != nil {
		s.logger.Error("failed to list payments", "error", err, "application_id", applicationID)
		return nil, apperrors.NewInternalError("failed to load payments", err)
	}

	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = ToPaymentResponse(p)
	}
	return resp, nil
}

func (s *Service) loadPayment(id string) (*Payment, error) {
	p, err := s.payments.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the payment", err)
	}
	return p, nil
}

func (s *Service) loadApplication(id string) (*loan.Application, error) {
	app, err := s.apps.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.NewInternalError("failed to load the application", err)
	}
	return app, nil
}

// rederiveStatus recomputes the application's status from its full payment
// history and persists it when it changed. The payment mutation that led here
// is never rolled back; a failed status write is reported on its own.
func (s *Service) rederiveStatus(app *loan.Application) (string, error) {
	payments, err := s.payments.ListByApplication(app.ID)
	if err != nil {
		s.logger.Error("status derivation: failed to load payments", "error", err, "application_id", app.ID)
		return "", apperrors.NewInternalError("payment saved but the application status could not be recomputed", err)
	}

	amounts := make([]decimal.Decimal, len(payments))
	for i, p := range payments {
		amounts[i] = p.AmountPaid
	}

	derived, ok := loan.DeriveStatus(loan.DerivationInput{
		CurrentStatus:    app.Status,
		RequestedAmount:  app.RequestedAmount,
		ApprovedAmount:   app.ApprovedAmount,
		ApprovalDate:     app.ApprovalDate,
		DisbursementDate: app.DisbursementDate,
		Payments:         amounts,
	})
	if !ok {
		s.logger.Warn("status derivation skipped: no positive base amount",
			"application_id", app.ID,
			"status", app.Status)
		return app.Status, nil
	}

	if derived == app.Status {
		return derived, nil
	}

	if err := s.apps.UpdateStatus(app.ID, derived); err != nil {
		s.logger.Error("status derivation: failed to write status",
			"error", err,
			"application_id", app.ID,
			"derived_status", derived)
		return "", apperrors.NewInternalError("payment saved but the application status could not be updated", err)
	}

	s.logger.Info("application status derived from payments",
		"application_id", app.ID,
		"previous_status", app.Status,
		"new_status", derived)

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewLoanStatusChangedEvent(app.ID, app.Status, derived, "payment"))
	}

	app.Status = derived
	return derived, nil
}
