package postgres

import (
	"strings"
	"time"

	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/loan"
	"gorm.io/gorm"
)

// ClientRepository implements the loan.ClientRepository interface using GORM
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) loan.ClientRepository {
	return &ClientRepository{db: db}
}

// CreateWithApplication saves a client and their first application in one
// transaction so a half-registered client can never exist.
func (r *ClientRepository) CreateWithApplication(c *loan.Client, a *loan.Application) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Create(a).Error
	})
	return translateDuplicateError(err)
}

func (r *ClientRepository) GetByID(id string) (*loan.Client, error) {
	var c loan.Client
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) GetWithApplications(id string) (*loan.Client, error) {
	var c loan.Client
	err := r.db.Preload("Applications", func(db *gorm.DB) *gorm.DB {
		return db.Order("request_date DESC")
	}).Preload("Applications.Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("uploaded_at DESC")
	}).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) ListWithApplications() ([]*loan.Client, error) {
	var clients []*loan.Client
	err := r.db.Preload("Applications", func(db *gorm.DB) *gorm.DB {
		return db.Order("request_date DESC")
	}).Preload("Applications.Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("uploaded_at DESC")
	}).Order("registered_at DESC").Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) Update(c *loan.Client) error {
	return translateDuplicateError(r.db.Save(c).Error)
}

// DeleteCascade removes everything attached to the client before the client
// row itself: documents, then payments, then applications. Raw deletes keep
// this package free of imports from the payment and document packages.
func (r *ClientRepository) DeleteCascade(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		appIDs := tx.Model(&loan.Application{}).Select("id").Where("client_id = ?", id)

		if err := tx.Exec("DELETE FROM loan_documents WHERE application_id IN (?)", appIDs).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM loan_payments WHERE application_id IN (?)", appIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&loan.Application{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&loan.Client{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ApplicationRepository implements loan.ApplicationRepository using GORM
type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) loan.ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(a *loan.Application) error {
	return r.db.Create(a).Error
}

func (r *ApplicationRepository) GetByID(id string) (*loan.Application, error) {
	var a loan.Application
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) GetWithDetails(id string) (*loan.Application, error) {
	var a loan.Application
	err := r.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("uploaded_at DESC")
	}).Preload("Client").Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) GetLatestByClient(clientID string) (*loan.Application, error) {
	var a loan.Application
	err := r.db.Where("client_id = ?", clientID).
		Order("request_date DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) Update(a *loan.Application) error {
	a.UpdatedAt = time.Now()
	return r.db.Save(a).Error
}

func (r *ApplicationRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&loan.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *ApplicationRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&loan.Application{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// translateDuplicateError maps unique constraint violations onto the typed
// conflict errors. Matching on the column name in the driver message works
// for both postgres and sqlite.
func translateDuplicateError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique") && !strings.Contains(msg, "duplicate") {
		return err
	}
	switch {
	case strings.Contains(msg, "national_id"):
		return apperrors.ErrDuplicateNationalID
	case strings.Contains(msg, "email"):
		return apperrors.ErrDuplicateEmail
	case strings.Contains(msg, "tax_id"):
		return apperrors.ErrDuplicateTaxID
	}
	return err
}
