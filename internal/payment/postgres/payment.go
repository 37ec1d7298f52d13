package postgres

import (
	"github.com/sierrasilva/backoffice/internal/payment"
	"gorm.io/gorm"
)

// PaymentRepository implements the payment.Repository interface using GORM
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *payment.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByApplication(applicationID string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.db.Where("application_id = ?", applicationID).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) Update(p *payment.Payment) error {
	return r.db.Save(p).Error
}

func (r *PaymentRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&payment.Payment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
