package postgres

import (
	"github.com/sierrasilva/backoffice/internal/contact"
	"gorm.io/gorm"
)

// ContactRepository implements contact.Repository using GORM
type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) contact.Repository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(m *contact.ContactMessage) error {
	return r.db.Create(m).Error
}

func (r *ContactRepository) List() ([]*contact.ContactMessage, error) {
	var messages []*contact.ContactMessage
	err := r.db.Order("received_at DESC").Find(&messages).Error
	return messages, err
}
