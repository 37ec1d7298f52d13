package loan

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	errors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/validation"
	"github.com/sierrasilva/backoffice/internal/document"
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{8,13}$`)
	phonePattern      = regexp.MustCompile(`^\+?\d{8,15}$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// CreateClientWithApplicationDTO is the combined intake payload: a new
// client together with their first loan application.
type CreateClientWithApplicationDTO struct {
	FirstNames       string  `json:"first_names"`
	LastNames        string  `json:"last_names"`
	NationalID       string  `json:"national_id"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	TaxID            *string `json:"tax_id,omitempty"`
	Workplace        string  `json:"workplace"`
	WorkplaceAddress *string `json:"workplace_address,omitempty"`
	HomeAddress      string  `json:"home_address"`

	RequestedAmount       decimal.Decimal  `json:"requested_amount"`
	CollateralType        string           `json:"collateral_type"`
	CollateralDescription *string          `json:"collateral_description,omitempty"`
	RequestDate           time.Time        `json:"request_date"`
	PaymentNotes          *string          `json:"payment_notes,omitempty"`
	TermMonths            *int             `json:"term_months,omitempty"`
	AnnualInterestRate    *decimal.Decimal `json:"annual_interest_rate,omitempty"`
}

func (dto CreateClientWithApplicationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("first_names", dto.FirstNames).Required().MinLength(2)
	v.Field("last_names", dto.LastNames).Required().MinLength(2)
	v.Field("national_id", dto.NationalID).Required().
		Matches(nationalIDPattern, "national ID must be 8-13 digits", errors.ErrCodeInvalidNationalID)
	v.Field("phone", dto.Phone).Required().
		Matches(phonePattern, "phone number must be 8-15 digits", errors.ErrCodeInvalidPhone)
	v.Field("email", dto.Email).Required().
		Matches(emailPattern, "invalid email address", errors.ErrCodeInvalidEmail)
	v.Field("workplace", dto.Workplace).Required().MinLength(2)
	v.Field("home_address", dto.HomeAddress).Required().MinLength(5)
	v.Field("requested_amount", dto.RequestedAmount).PositiveDecimal()
	v.Field("request_date", dto.RequestDate).Required()

	if err := v.Validate(); err != nil {
		return err
	}
	if !ValidCollateralType(dto.CollateralType) {
		return errors.NewValidationFieldError("collateral_type", "select a valid collateral type", errors.ErrCodeValidationFailed)
	}
	if dto.TermMonths != nil && *dto.TermMonths <= 0 {
		return errors.NewValidationFieldError("term_months", "term must be a positive number of months", errors.ErrCodeValidationFailed)
	}
	if dto.AnnualInterestRate != nil && dto.AnnualInterestRate.IsNegative() {
		return errors.NewValidationFieldError("annual_interest_rate", "interest rate cannot be negative", errors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateClientWithApplicationDTO carries partial updates for a client and,
// optionally, their most recent application. Nil fields are left untouched.
type UpdateClientWithApplicationDTO struct {
	FirstNames       *string `json:"first_names,omitempty"`
	LastNames        *string `json:"last_names,omitempty"`
	NationalID       *string `json:"national_id,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Email            *string `json:"email,omitempty"`
	TaxID            *string `json:"tax_id,omitempty"`
	Workplace        *string `json:"workplace,omitempty"`
	WorkplaceAddress *string `json:"workplace_address,omitempty"`
	HomeAddress      *string `json:"home_address,omitempty"`

	RequestedAmount       *decimal.Decimal `json:"requested_amount,omitempty"`
	CollateralType        *string          `json:"collateral_type,omitempty"`
	CollateralDescription *string          `json:"collateral_description,omitempty"`
	RequestDate           *time.Time       `json:"request_date,omitempty"`
	PaymentNotes          *string          `json:"payment_notes,omitempty"`
	TermMonths            *int             `json:"term_months,omitempty"`
	AnnualInterestRate    *decimal.Decimal `json:"annual_interest_rate,omitempty"`
}

func (dto UpdateClientWithApplicationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.FirstNames != nil {
		v.Field("first_names", *dto.FirstNames).Required().MinLength(2)
	}
	if dto.LastNames != nil {
		v.Field("last_names", *dto.LastNames).Required().MinLength(2)
	}
	if dto.NationalID != nil {
		v.Field("national_id", *dto.NationalID).Required().
			Matches(nationalIDPattern, "national ID must be 8-13 digits", errors.ErrCodeInvalidNationalID)
	}
	if dto.Phone != nil {
		v.Field("phone", *dto.Phone).Required().
			Matches(phonePattern, "phone number must be 8-15 digits", errors.ErrCodeInvalidPhone)
	}
	if dto.Email != nil {
		v.Field("email", *dto.Email).Required().
			Matches(emailPattern, "invalid email address", errors.ErrCodeInvalidEmail)
	}
	if dto.HomeAddress != nil {
		v.Field("home_address", *dto.HomeAddress).Required().MinLength(5)
	}
	if dto.RequestedAmount != nil {
		v.Field("requested_amount", *dto.RequestedAmount).PositiveDecimal()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if dto.CollateralType != nil && !ValidCollateralType(*dto.CollateralType) {
		return errors.NewValidationFieldError("collateral_type", "select a valid collateral type", errors.ErrCodeValidationFailed)
	}
	if dto.TermMonths != nil && *dto.TermMonths <= 0 {
		return errors.NewValidationFieldError("term_months", "term must be a positive number of months", errors.ErrCodeValidationFailed)
	}
	if dto.AnnualInterestRate != nil && dto.AnnualInterestRate.IsNegative() {
		return errors.NewValidationFieldError("annual_interest_rate", "interest rate cannot be negative", errors.ErrCodeValidationFailed)
	}
	return nil
}

// hasApplicationFields reports whether any application-level field was
// supplied, which decides whether the latest application is touched at all.
func (dto UpdateClientWithApplicationDTO) hasApplicationFields() bool {
	return dto.RequestedAmount != nil ||
		dto.CollateralType != nil ||
		dto.CollateralDescription != nil ||
		dto.RequestDate != nil ||
		dto.PaymentNotes != nil ||
		dto.TermMonths != nil ||
		dto.AnnualInterestRate != nil
}

// canCreateApplication reports whether enough fields are present to create a
// fresh application when the client has none.
func (dto UpdateClientWithApplicationDTO) canCreateApplication() bool {
	return dto.RequestedAmount != nil && dto.CollateralType != nil && dto.RequestDate != nil
}

// AddApplicationDTO creates an additional application for an existing client.
type AddApplicationDTO struct {
	RequestedAmount       decimal.Decimal  `json:"requested_amount"`
	CollateralType        string           `json:"collateral_type"`
	CollateralDescription *string          `json:"collateral_description,omitempty"`
	RequestDate           time.Time        `json:"request_date"`
	PaymentNotes          *string          `json:"payment_notes,omitempty"`
	TermMonths            *int             `json:"term_months,omitempty"`
	AnnualInterestRate    *decimal.Decimal `json:"annual_interest_rate,omitempty"`
}

func (dto AddApplicationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("requested_amount", dto.RequestedAmount).PositiveDecimal()
	v.Field("request_date", dto.RequestDate).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if !ValidCollateralType(dto.CollateralType) {
		return errors.NewValidationFieldError("collateral_type", "select a valid collateral type", errors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateApplicationDTO edits the administrator-mutable attributes of one
// application. The requested amount is immutable and absent on purpose.
type UpdateApplicationDTO struct {
	ApprovedAmount        *decimal.Decimal `json:"approved_amount,omitempty"`
	CollateralType        *string          `json:"collateral_type,omitempty"`
	CollateralDescription *string          `json:"collateral_description,omitempty"`
	TermMonths            *int             `json:"term_months,omitempty"`
	AnnualInterestRate    *decimal.Decimal `json:"annual_interest_rate,omitempty"`
	PaymentNotes          *string          `json:"payment_notes,omitempty"`
}

func (dto UpdateApplicationDTO) Validate() *errors.AppError {
	if dto.ApprovedAmount != nil && !dto.ApprovedAmount.IsPositive() {
		return errors.NewValidationFieldError("approved_amount", "approved amount must be positive", errors.ErrCodeInvalidAmount)
	}
	if dto.CollateralType != nil && !ValidCollateralType(*dto.CollateralType) {
		return errors.NewValidationFieldError("collateral_type", "select a valid collateral type", errors.ErrCodeValidationFailed)
	}
	if dto.TermMonths != nil && *dto.TermMonths <= 0 {
		return errors.NewValidationFieldError("term_months", "term must be a positive number of months", errors.ErrCodeValidationFailed)
	}
	if dto.AnnualInterestRate != nil && dto.AnnualInterestRate.IsNegative() {
		return errors.NewValidationFieldError("annual_interest_rate", "interest rate cannot be negative", errors.ErrCodeValidationFailed)
	}
	return nil
}

type SetStatusDTO struct {
	Status string `json:"status"`
}

// ---- Response projections ----
//
// Monetary decimals are exposed as plain numbers at the service boundary;
// the decimal type never leaks into JSON.

type ApplicationResponse struct {
	ID                    string              `json:"id"`
	ClientID              string              `json:"client_id"`
	RequestedAmount       float64             `json:"requested_amount"`
	ApprovedAmount        *float64            `json:"approved_amount,omitempty"`
	Status                string              `json:"status"`
	CollateralType        string              `json:"collateral_type"`
	CollateralDescription *string             `json:"collateral_description,omitempty"`
	TermMonths            *int                `json:"term_months,omitempty"`
	AnnualInterestRate    *float64            `json:"annual_interest_rate,omitempty"`
	PaymentNotes          *string             `json:"payment_notes,omitempty"`
	RequestDate           time.Time           `json:"request_date"`
	ApprovalDate          *time.Time          `json:"approval_date,omitempty"`
	DisbursementDate      *time.Time          `json:"disbursement_date,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Documents             []document.Document `json:"documents,omitempty"`
}

type ClientResponse struct {
	ID               string                `json:"id"`
	FirstNames       string                `json:"first_names"`
	LastNames        string                `json:"last_names"`
	NationalID       string                `json:"national_id"`
	Phone            string                `json:"phone"`
	Email            string                `json:"email"`
	TaxID            *string               `json:"tax_id,omitempty"`
	Workplace        string                `json:"workplace"`
	WorkplaceAddress *string               `json:"workplace_address,omitempty"`
	HomeAddress      string                `json:"home_address"`
	RegisteredAt     time.Time             `json:"registered_at"`
	Applications     []ApplicationResponse `json:"applications"`
}

type ApplicationDetailResponse struct {
	ApplicationResponse
	Client *ClientResponse `json:"client,omitempty"`
}

func ToApplicationResponse(a *Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                    a.ID,
		ClientID:              a.ClientID,
		RequestedAmount:       a.RequestedAmount.InexactFloat64(),
		Status:                a.Status,
		CollateralType:        a.CollateralType,
		CollateralDescription: a.CollateralDescription,
		TermMonths:            a.TermMonths,
		PaymentNotes:          a.PaymentNotes,
		RequestDate:           a.RequestDate,
		ApprovalDate:          a.ApprovalDate,
		DisbursementDate:      a.DisbursementDate,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
		Documents:             a.Documents,
	}
	if a.ApprovedAmount.Valid {
		v := a.ApprovedAmount.Decimal.InexactFloat64()
		resp.ApprovedAmount = &v
	}
	if a.AnnualInterestRate.Valid {
		v := a.AnnualInterestRate.Decimal.InexactFloat64()
		resp.AnnualInterestRate = &v
	}
	return resp
}

func ToClientResponse(c *Client) ClientResponse {
	apps := make([]ApplicationResponse, len(c.Applications))
	for i := range c.Applications {
		apps[i] = ToApplicationResponse(&c.Applications[i])
	}
	return ClientResponse{
		ID:               c.ID,
		FirstNames:       c.FirstNames,
		LastNames:        c.LastNames,
		NationalID:       c.NationalID,
		Phone:            c.Phone,
		Email:            c.Email,
		TaxID:            c.TaxID,
		Workplace:        c.Workplace,
		WorkplaceAddress: c.WorkplaceAddress,
		HomeAddress:      c.HomeAddress,
		RegisteredAt:     c.RegisteredAt,
		Applications:     apps,
	}
}
