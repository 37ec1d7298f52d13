package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a single repayment recorded against a loan application.
// AmountPaid is always positive; partial and over-payments are both legal.
type Payment struct {
	ID            string          `gorm:"primaryKey"`
	ApplicationID string          `gorm:"column:application_id;not null;index"`
	AmountPaid    decimal.Decimal `gorm:"column:amount_paid;type:numeric(14,2);not null"`
	PaymentDate   time.Time       `gorm:"column:payment_date;not null"`
	Method        *string         `gorm:"column:method"`
	Reference     *string         `gorm:"column:reference"`
	Notes         *string         `gorm:"column:notes"`
	RecordedAt    time.Time       `gorm:"column:recorded_at"`
}

func (Payment) TableName() string {
	return "loan_payments"
}
