package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoanStatusChanged = "loan.status_changed"
	EventTypePaymentRecorded   = "loan.payment_recorded"
	EventTypePaymentDeleted    = "loan.payment_deleted"
)

// NewLoanStatusChangedEvent is published whenever an application's status is
// written, either by the derivation engine or by a direct override.
func NewLoanStatusChangedEvent(applicationID, previousStatus, newStatus, trigger string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeLoanStatusChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"application_id":  applicationID,
			"previous_status": previousStatus,
			"new_status":      newStatus,
			"trigger":         trigger,
		},
	}
}

func NewPaymentRecordedEvent(paymentID, applicationID string, amount float64) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypePaymentRecorded,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"payment_id":     paymentID,
			"application_id": applicationID,
			"amount":         amount,
		},
	}
}

func NewPaymentDeletedEvent(paymentID, applicationID string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypePaymentDeleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"payment_id":     paymentID,
			"application_id": applicationID,
		},
	}
}
