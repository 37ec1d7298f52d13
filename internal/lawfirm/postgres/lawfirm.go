package postgres

import (
	"strings"

	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/lawfirm"
	"gorm.io/gorm"
)

// FirmClientRepository implements lawfirm.Repository using GORM
type FirmClientRepository struct {
	db *gorm.DB
}

func NewFirmClientRepository(db *gorm.DB) lawfirm.Repository {
	return &FirmClientRepository{db: db}
}

func (r *FirmClientRepository) Create(c *lawfirm.FirmClient) error {
	return translateDuplicateError(r.db.Create(c).Error)
}

func (r *FirmClientRepository) GetByID(id string) (*lawfirm.FirmClient, error) {
	var c lawfirm.FirmClient
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *FirmClientRepository) GetWithCaseLog(id string) (*lawfirm.FirmClient, error) {
	var c lawfirm.FirmClient
	err := r.db.Preload("CaseLog", func(db *gorm.DB) *gorm.DB {
		return db.Order("entry_date DESC")
	}).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *FirmClientRepository) List() ([]*lawfirm.FirmClient, error) {
	var clients []*lawfirm.FirmClient
	err := r.db.Order("registered_at DESC").Find(&clients).Error
	return clients, err
}

func (r *FirmClientRepository) Update(c *lawfirm.FirmClient) error {
	return translateDuplicateError(r.db.Save(c).Error)
}

func (r *FirmClientRepository) DeleteCascade(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("firm_client_id = ?", id).Delete(&lawfirm.CaseLogEntry{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&lawfirm.FirmClient{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *FirmClientRepository) CreateLogEntry(e *lawfirm.CaseLogEntry) error {
	return r.db.Create(e).Error
}

func (r *FirmClientRepository) GetLogEntry(id string) (*lawfirm.CaseLogEntry, error) {
	var e lawfirm.CaseLogEntry
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *FirmClientRepository) ListLogEntries(firmClientID string) ([]*lawfirm.CaseLogEntry, error) {
	var entries []*lawfirm.CaseLogEntry
	err := r.db.Where("firm_client_id = ?", firmClientID).
		Order("entry_date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *FirmClientRepository) UpdateLogEntry(e *lawfirm.CaseLogEntry) error {
	return r.db.Save(e).Error
}

func (r *FirmClientRepository) DeleteLogEntry(id string) error {
	res := r.db.Where("id = ?", id).Delete(&lawfirm.CaseLogEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func translateDuplicateError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if (strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")) && strings.Contains(msg, "email") {
		return apperrors.ErrDuplicateEmail
	}
	return err
}
