package contact

import (
	"regexp"
	"time"

	errors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/validation"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID         string    `gorm:"primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Email      string    `gorm:"column:email;not null"`
	Phone      *string   `gorm:"column:phone"`
	Subject    *string   `gorm:"column:subject"`
	Message    string    `gorm:"column:message;not null"`
	ReceivedAt time.Time `gorm:"column:received_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// SubmitContactDTO is the public form payload.
type SubmitContactDTO struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Subject *string `json:"subject,omitempty"`
	Message string  `json:"message"`
}

func (dto SubmitContactDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MinLength(2)
	v.Field("email", dto.Email).Required().
		Matches(emailPattern, "invalid email address", errors.ErrCodeInvalidEmail)
	v.Field("message", dto.Message).Required().MinLength(10)
	return v.Validate()
}

type ContactMessageResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Subject    *string   `json:"subject,omitempty"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// SubmitResult pairs the stored message with the human-readable outcome,
// which also reports whether the admin notification went out.
type SubmitResult struct {
	Message       ContactMessageResponse `json:"contact_message"`
	StatusMessage string                 `json:"status_message"`
}

func ToContactMessageResponse(m *ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Subject:    m.Subject,
		Message:    m.Message,
		ReceivedAt: m.ReceivedAt,
	}
}
