package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sierrasilva/backoffice/internal/document"
)

// Client is a loan-company customer. One client owns any number of
// applications; the first one is created together with the client.
type Client struct {
	ID               string        `gorm:"primaryKey"`
	FirstNames       string        `gorm:"column:first_names;not null"`
	LastNames        string        `gorm:"column:last_names;not null"`
	NationalID       string        `gorm:"column:national_id;not null;uniqueIndex"`
	Phone            string        `gorm:"column:phone;not null"`
	Email            string        `gorm:"column:email;not null;uniqueIndex"`
	TaxID            *string       `gorm:"column:tax_id;uniqueIndex"`
	Workplace        string        `gorm:"column:workplace"`
	WorkplaceAddress *string       `gorm:"column:workplace_address"`
	HomeAddress      string        `gorm:"column:home_address"`
	RegisteredAt     time.Time     `gorm:"column:registered_at"`
	Applications     []Application `gorm:"foreignKey:ClientID"`
}

func (Client) TableName() string {
	return "loan_clients"
}

// Application is a single loan request. RequestedAmount is immutable after
// creation; ApprovedAmount is set by administrator action only. Status is
// written either by a direct override or by the derivation engine after
// payment mutations.
type Application struct {
	ID                    string              `gorm:"primaryKey"`
	ClientID              string              `gorm:"column:client_id;not null;index"`
	RequestedAmount       decimal.Decimal     `gorm:"column:requested_amount;type:numeric(14,2);not null"`
	ApprovedAmount        decimal.NullDecimal `gorm:"column:approved_amount;type:numeric(14,2)"`
	Status                string              `gorm:"column:status;not null;default:pending_approval"`
	CollateralType        string              `gorm:"column:collateral_type;not null"`
	CollateralDescription *string             `gorm:"column:collateral_description"`
	TermMonths            *int                `gorm:"column:term_months"`
	AnnualInterestRate    decimal.NullDecimal `gorm:"column:annual_interest_rate;type:numeric(6,3)"`
	PaymentNotes          *string             `gorm:"column:payment_notes"`
	RequestDate           time.Time           `gorm:"column:request_date;not null"`
	ApprovalDate          *time.Time          `gorm:"column:approval_date"`
	DisbursementDate      *time.Time          `gorm:"column:disbursement_date"`
	CreatedAt             time.Time           `gorm:"column:created_at"`
	UpdatedAt             time.Time           `gorm:"column:updated_at"`
	Documents             []document.Document `gorm:"foreignKey:ApplicationID"`
	Client                *Client             `gorm:"foreignKey:ClientID"`
}

func (Application) TableName() string {
	return "loan_applications"
}

// Application status enumeration. Closed set: the engine and the override
// path never write anything outside it.
const (
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusDisbursed       = "disbursed"
	StatusInRepayment     = "in_repayment"
	StatusPaidInFull      = "paid_in_full"
	StatusDefaulted       = "defaulted"
	StatusRejected        = "rejected"
	StatusCancelled       = "cancelled"
)

var allStatuses = map[string]bool{
	StatusPendingApproval: true,
	StatusApproved:        true,
	StatusDisbursed:       true,
	StatusInRepayment:     true,
	StatusPaidInFull:      true,
	StatusDefaulted:       true,
	StatusRejected:        true,
	StatusCancelled:       true,
}

func ValidStatus(s string) bool {
	return allStatuses[s]
}

// Collateral types accepted on an application.
const (
	CollateralVehicle   = "vehicle"
	CollateralProperty  = "property"
	CollateralGuarantor = "guarantor"
	CollateralOther     = "other"
)

var collateralTypes = map[string]bool{
	CollateralVehicle:   true,
	CollateralProperty:  true,
	CollateralGuarantor: true,
	CollateralOther:     true,
}

func ValidCollateralType(s string) bool {
	return collateralTypes[s]
}

// BaseAmount is the denominator for "paid in full": the approved amount when
// set and positive, otherwise the requested amount.
func (a *Application) BaseAmount() decimal.Decimal {
	if a.ApprovedAmount.Valid && a.ApprovedAmount.Decimal.IsPositive() {
		return a.ApprovedAmount.Decimal
	}
	return a.RequestedAmount
}
