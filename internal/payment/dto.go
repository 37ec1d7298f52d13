package payment

import (
	"time"

	"github.com/shopspring/decimal"
	errors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/validation"
)

// RecordPaymentDTO registers a new payment against an application.
type RecordPaymentDTO struct {
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      *string         `json:"method,omitempty"`
	Reference   *string         `json:"reference,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

func (dto RecordPaymentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("amount_paid", dto.AmountPaid).PositiveDecimal()
	v.Field("payment_date", dto.PaymentDate).Required().NotFuture()
	return v.Validate()
}

// UpdatePaymentDTO carries a partial edit of an existing payment. An empty
// patch is accepted and leaves the payment untouched.
type UpdatePaymentDTO struct {
	AmountPaid  *decimal.Decimal `json:"amount_paid,omitempty"`
	PaymentDate *time.Time       `json:"payment_date,omitempty"`
	Method      *string          `json:"method,omitempty"`
	Reference   *string          `json:"reference,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

func (dto UpdatePaymentDTO) Validate() *errors.AppError {
	if dto.AmountPaid != nil && !dto.AmountPaid.IsPositive() {
		return errors.NewValidationFieldError("amount_paid", "amount paid must be positive", errors.ErrCodeInvalidAmount)
	}
	if dto.PaymentDate != nil {
		v := validation.NewValidator()
		v.Field("payment_date", *dto.PaymentDate).Required().NotFuture()
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (dto UpdatePaymentDTO) IsEmpty() bool {
	return dto.AmountPaid == nil &&
		dto.PaymentDate == nil &&
		dto.Method == nil &&
		dto.Reference == nil &&
		dto.Notes == nil
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	AmountPaid    float64   `json:"amount_paid"`
	PaymentDate   time.Time `json:"payment_date"`
	Method        *string   `json:"method,omitempty"`
	Reference     *string   `json:"reference,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// RecordResult pairs the stored payment with the application status after
// re-derivation, so callers see the effect of the mutation immediately.
type RecordResult struct {
	Payment           PaymentResponse `json:"payment"`
	ApplicationStatus string          `json:"application_status"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		ApplicationID: p.ApplicationID,
		AmountPaid:    p.AmountPaid.InexactFloat64(),
		PaymentDate:   p.PaymentDate,
		Method:        p.Method,
		Reference:     p.Reference,
		Notes:         p.Notes,
		RecordedAt:    p.RecordedAt,
	}
}
