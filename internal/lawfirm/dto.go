package lawfirm

import (
	"regexp"
	"time"

	errors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/validation"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?\d{8,15}$`)
)

// RegisterFirmClientDTO is the intake payload, shared by the public form and
// the back office. Message, when present, becomes the first case log entry.
type RegisterFirmClientDTO struct {
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
	Workplace  *string `json:"workplace,omitempty"`
	CaseType   string  `json:"case_type"`
	Message    *string `json:"message,omitempty"`
}

func (dto RegisterFirmClientDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("full_name", dto.FullName).Required().MinLength(2)
	v.Field("email", dto.Email).Required().
		Matches(emailPattern, "invalid email address", errors.ErrCodeInvalidEmail)
	v.Field("case_type", dto.CaseType).Required().MinLength(2)
	if dto.Phone != nil {
		v.Field("phone", *dto.Phone).
			Matches(phonePattern, "phone number must be 8-15 digits", errors.ErrCodeInvalidPhone)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if dto.Message != nil && len(*dto.Message) > 0 && len(*dto.Message) < 5 {
		return errors.NewValidationFieldError("message", "message must be at least 5 characters", errors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateFirmClientDTO carries partial updates; nil fields stay untouched.
type UpdateFirmClientDTO struct {
	FullName   *string `json:"full_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
	Workplace  *string `json:"workplace,omitempty"`
	CaseType   *string `json:"case_type,omitempty"`
}

func (dto UpdateFirmClientDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.FullName != nil {
		v.Field("full_name", *dto.FullName).Required().MinLength(2)
	}
	if dto.Email != nil {
		v.Field("email", *dto.Email).Required().
			Matches(emailPattern, "invalid email address", errors.ErrCodeInvalidEmail)
	}
	if dto.Phone != nil {
		v.Field("phone", *dto.Phone).
			Matches(phonePattern, "phone number must be 8-15 digits", errors.ErrCodeInvalidPhone)
	}
	if dto.CaseType != nil {
		v.Field("case_type", *dto.CaseType).Required().MinLength(2)
	}
	return v.Validate()
}

type ChangeStatusDTO struct {
	Status string `json:"status"`
}

// CaseLogEntryDTO creates or edits a case log entry.
type CaseLogEntryDTO struct {
	Description string     `json:"description"`
	ActionType  *string    `json:"action_type,omitempty"`
	EntryDate   *time.Time `json:"entry_date,omitempty"`
}

func (dto CaseLogEntryDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("description", dto.Description).Required().MinLength(5).MaxLength(1000)
	return v.Validate()
}

type CaseLogEntryResponse struct {
	ID           string    `json:"id"`
	FirmClientID string    `json:"firm_client_id"`
	Description  string    `json:"description"`
	ActionType   *string   `json:"action_type,omitempty"`
	EntryDate    time.Time `json:"entry_date"`
	CreatedAt    time.Time `json:"created_at"`
}

type FirmClientResponse struct {
	ID           string                 `json:"id"`
	FullName     string                 `json:"full_name"`
	Email        string                 `json:"email"`
	Phone        *string                `json:"phone,omitempty"`
	NationalID   *string                `json:"national_id,omitempty"`
	Workplace    *string                `json:"workplace,omitempty"`
	CaseType     string                 `json:"case_type"`
	Status       string                 `json:"status"`
	RegisteredAt time.Time              `json:"registered_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	CaseLog      []CaseLogEntryResponse `json:"case_log,omitempty"`
}

// RegisterResult reports the stored client plus the human-readable outcome
// of the notification emails.
type RegisterResult struct {
	Client        FirmClientResponse `json:"client"`
	StatusMessage string             `json:"status_message"`
}

func ToCaseLogEntryResponse(e *CaseLogEntry) CaseLogEntryResponse {
	return CaseLogEntryResponse{
		ID:           e.ID,
		FirmClientID: e.FirmClientID,
		Description:  e.Description,
		ActionType:   e.ActionType,
		EntryDate:    e.EntryDate,
		CreatedAt:    e.CreatedAt,
	}
}

func ToFirmClientResponse(c *FirmClient) FirmClientResponse {
	resp := FirmClientResponse{
		ID:           c.ID,
		FullName:     c.FullName,
		Email:        c.Email,
		Phone:        c.Phone,
		NationalID:   c.NationalID,
		Workplace:    c.Workplace,
		CaseType:     c.CaseType,
		Status:       c.Status,
		RegisteredAt: c.RegisteredAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if len(c.CaseLog) > 0 {
		resp.CaseLog = make([]CaseLogEntryResponse, len(c.CaseLog))
		for i := range c.CaseLog {
			resp.CaseLog[i] = ToCaseLogEntryResponse(&c.CaseLog[i])
		}
	}
	return resp
}
