package postgres

import (
	"github.com/sierrasilva/backoffice/internal/document"
	"gorm.io/gorm"
)

// DocumentRepository implements document.Repository using GORM.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.Repository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(d *document.Document) error {
	return r.db.Create(d).Error
}

func (r *DocumentRepository) GetByID(id string) (*document.Document, error) {
	var doc document.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByApplication(applicationID string) ([]*document.Document, error) {
	var docs []*document.Document
	err := r.db.Where("application_id = ?", applicationID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&document.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
