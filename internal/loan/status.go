package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// paymentAdmissionStatuses are the statuses in which new payments may be
// recorded against an application.
var paymentAdmissionStatuses = map[string]bool{
	StatusApproved:    true,
	StatusDisbursed:   true,
	StatusInRepayment: true,
	StatusPaidInFull:  true,
	StatusDefaulted:   true,
}

// moneyMovedStatuses are the statuses from which a partial payment balance
// may move an application into in_repayment. An application that was never
// approved is left alone even if a stray payment exists.
var moneyMovedStatuses = map[string]bool{
	StatusApproved:    true,
	StatusDisbursed:   true,
	StatusInRepayment: true,
	StatusPaidInFull:  true,
	StatusDefaulted:   true,
}

// StatusAllowsPayments reports whether a payment may be recorded while the
// application is in the given status.
func StatusAllowsPayments(status string) bool {
	return paymentAdmissionStatuses[status]
}

// IsTerminalStatus reports whether the status is one that payment mutations
// must never change.
func IsTerminalStatus(status string) bool {
	return status == StatusRejected || status == StatusCancelled
}

// DerivationInput is everything the status engine looks at. It is a plain
// value so the engine stays a pure function.
type DerivationInput struct {
	CurrentStatus    string
	RequestedAmount  decimal.Decimal
	ApprovedAmount   decimal.NullDecimal
	ApprovalDate     *time.Time
	DisbursementDate *time.Time
	Payments         []decimal.Decimal
}

// DeriveStatus computes the correct status of an application from its
// payment history and milestone timestamps.
//
// Returns ok=false when neither the approved nor the requested amount is a
// positive number: there is no basis for comparison and the caller must skip
// the status write (logging the anomaly).
//
// Rules:
//   - total >= base: paid_in_full.
//   - 0 < total < base: in_repayment, but only from a status where money has
//     already moved; otherwise the current status is kept.
//   - total == 0 (last payment removed): walk back to the most recent
//     milestone. Disbursed if a disbursement date exists, approved if an
//     approval date exists, pending_approval otherwise. Rejected and
//     cancelled applications are never resurrected by payment removal.
func DeriveStatus(in DerivationInput) (string, bool) {
	base := in.RequestedAmount
	if in.ApprovedAmount.Valid && in.ApprovedAmount.Decimal.IsPositive() {
		base = in.ApprovedAmount.Decimal
	}
	if !base.IsPositive() {
		return in.CurrentStatus, false
	}

	total := decimal.Zero
	for _, p := range in.Payments {
		total = total.Add(p)
	}

	switch {
	case total.GreaterThanOrEqual(base):
		return StatusPaidInFull, true

	case total.IsPositive():
		if moneyMovedStatuses[in.CurrentStatus] {
			return StatusInRepayment, true
		}
		return in.CurrentStatus, true

	default:
		if IsTerminalStatus(in.CurrentStatus) {
			return in.CurrentStatus, true
		}
		if in.DisbursementDate != nil {
			return StatusDisbursed, true
		}
		if in.ApprovalDate != nil {
			return StatusApproved, true
		}
		return StatusPendingApproval, true
	}
}
