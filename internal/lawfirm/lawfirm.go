package lawfirm

import (
	"time"
)

// FirmClient is a legal-services client of the firm, as opposed to a
// borrower of the loan company. Intake happens through the public form or
// the back office.
type FirmClient struct {
	ID           string         `gorm:"primaryKey"`
	FullName     string         `gorm:"column:full_name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	Phone        *string        `gorm:"column:phone"`
	NationalID   *string        `gorm:"column:national_id"`
	Workplace    *string        `gorm:"column:workplace"`
	CaseType     string         `gorm:"column:case_type;not null"`
	Status       string         `gorm:"column:status;not null;default:consultation"`
	RegisteredAt time.Time      `gorm:"column:registered_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	CaseLog      []CaseLogEntry `gorm:"foreignKey:FirmClientID"`
}

func (FirmClient) TableName() string {
	return "firm_clients"
}

// CaseLogEntry is a dated free-text note on a firm client's case.
type CaseLogEntry struct {
	ID           string    `gorm:"primaryKey"`
	FirmClientID string    `gorm:"column:firm_client_id;not null;index"`
	Description  string    `gorm:"column:description;not null"`
	ActionType   *string   `gorm:"column:action_type"`
	EntryDate    time.Time `gorm:"column:entry_date;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (CaseLogEntry) TableName() string {
	return "firm_case_log_entries"
}

// Firm client status enumeration.
const (
	StatusConsultation = "consultation"
	StatusActive       = "active"
	StatusPending      = "pending"
	StatusClosed       = "closed"
	StatusArchived     = "archived"
)

var firmClientStatuses = map[string]bool{
	StatusConsultation: true,
	StatusActive:       true,
	StatusPending:      true,
	StatusClosed:       true,
	StatusArchived:     true,
}

func ValidStatus(s string) bool {
	return firmClientStatuses[s]
}
