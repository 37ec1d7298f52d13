package payment_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/events"
	"github.com/sierrasilva/backoffice/internal/loan"
	"github.com/sierrasilva/backoffice/internal/payment"
)

func TestPayment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Suite")
}

// Mock repositories for testing
type mockPaymentRepository struct {
	payments    map[string]*payment.Payment
	createError error
	listError   error
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[string]*payment.Payment)}
}

func (m *mockPaymentRepository) Create(p *payment.Payment) error {
	if m.createError != nil {
		return m.createError
	}
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepository) GetByID(id string) (*payment.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockPaymentRepository) ListByApplication(applicationID string) ([]*payment.Payment, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []*payment.Payment
	for _, p := range m.payments {
		if p.ApplicationID == applicationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) Update(p *payment.Payment) error {
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepository) Delete(id string) error {
	if _, ok := m.payments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.payments, id)
	return nil
}

type mockApplicationStore struct {
	apps              map[string]*loan.Application
	updateStatusError error
}

func newMockApplicationStore() *mockApplicationStore {
	return &mockApplicationStore{apps: make(map[string]*loan.Application)}
}

func (m *mockApplicationStore) GetByID(id string) (*loan.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *mockApplicationStore) UpdateStatus(id, status string) error {
	if m.updateStatusError != nil {
		return m.updateStatusError
	}
	if a, ok := m.apps[id]; ok {
		a.Status = status
	}
	return nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.published = append(m.published, event)
}

func (m *mockPublisher) eventTypes() []string {
	out := make([]string, len(m.published))
	for i, e := range m.published {
		out[i] = e.EventType()
	}
	return out
}

var _ = Describe("PaymentService", func() {
	var (
		service   *payment.Service
		repo      *mockPaymentRepository
		apps      *mockApplicationStore
		publisher *mockPublisher
		logger    *slog.Logger
		appID     string
	)

	newApplication := func(status string, requested string) *loan.Application {
		now := time.Now()
		return &loan.Application{
			ID:              "app-1",
			ClientID:        "client-1",
			RequestedAmount: decimal.RequireFromString(requested),
			Status:          status,
			CollateralType:  loan.CollateralVehicle,
			RequestDate:     now.Add(-48 * time.Hour),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	record := func(amount string) *payment.RecordResult {
		result, err := service.Record(appID, payment.RecordPaymentDTO{
			AmountPaid:  decimal.RequireFromString(amount),
			PaymentDate: time.Now().Add(-time.Hour),
		})
		Expect(err).ToNot(HaveOccurred())
		return result
	}

	BeforeEach(func() {
		repo = newMockPaymentRepository()
		apps = newMockApplicationStore()
		publisher = &mockPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = payment.NewService(repo, apps, publisher, logger)
		appID = "app-1"
	})

	Describe("Record", func() {
		Context("admission guard", func() {
			It("should refuse a payment while pending approval", func() {
				apps.apps[appID] = newApplication(loan.StatusPendingApproval, "50000")

				_, err := service.Record(appID, payment.RecordPaymentDTO{
					AmountPaid:  decimal.RequireFromString("100"),
					PaymentDate: time.Now(),
				})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeConflict))
				Expect(appErr.Message).To(ContainSubstring(loan.StatusPendingApproval))
			})

			It("should refuse a payment on a rejected application", func() {
				apps.apps[appID] = newApplication(loan.StatusRejected, "50000")

				_, err := service.Record(appID, payment.RecordPaymentDTO{
					AmountPaid:  decimal.RequireFromString("100"),
					PaymentDate: time.Now(),
				})

				Expect(err).To(HaveOccurred())
			})

			It("should accept a payment on a defaulted application", func() {
				apps.apps[appID] = newApplication(loan.StatusDefaulted, "50000")

				result := record("100")

				Expect(result.ApplicationStatus).To(Equal(loan.StatusInRepayment))
			})
		})

		It("should move a disbursed application to in_repayment on a partial payment", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")

			result := record("10000")

			Expect(result.ApplicationStatus).To(Equal(loan.StatusInRepayment))
			Expect(apps.apps[appID].Status).To(Equal(loan.StatusInRepayment))
		})

		It("should mark paid_in_full once payments reach the base amount", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")

			record("20000")
			result := record("30000")

			Expect(result.ApplicationStatus).To(Equal(loan.StatusPaidInFull))
		})

		It("should use the approved amount as the base when present", func() {
			app := newApplication(loan.StatusDisbursed, "80000")
			app.ApprovedAmount = decimal.NullDecimal{Decimal: decimal.RequireFromString("50000"), Valid: true}
			apps.apps[appID] = app

			result := record("50000")

			Expect(result.ApplicationStatus).To(Equal(loan.StatusPaidInFull))
		})

		It("should publish status changed and payment recorded events", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")

			record("100")

			Expect(publisher.eventTypes()).To(ConsistOf(
				events.EventTypeLoanStatusChanged,
				events.EventTypePaymentRecorded,
			))
		})

		It("should reject a non-positive amount", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")

			_, err := service.Record(appID, payment.RecordPaymentDTO{
				AmountPaid:  decimal.Zero,
				PaymentDate: time.Now(),
			})

			Expect(err).To(HaveOccurred())
		})

		It("should reject a payment date in the future", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")

			_, err := service.Record(appID, payment.RecordPaymentDTO{
				AmountPaid:  decimal.RequireFromString("100"),
				PaymentDate: time.Now().Add(24 * time.Hour),
			})

			Expect(err).To(HaveOccurred())
		})

		It("should return not found for a missing application", func() {
			_, err := service.Record("missing", payment.RecordPaymentDTO{
				AmountPaid:  decimal.RequireFromString("100"),
				PaymentDate: time.Now(),
			})

			Expect(err).To(Equal(apperrors.ErrApplicationNotFound))
		})

		It("should keep the payment when the status write fails", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")
			apps.updateStatusError = gorm.ErrInvalidDB

			_, err := service.Record(appID, payment.RecordPaymentDTO{
				AmountPaid:  decimal.RequireFromString("100"),
				PaymentDate: time.Now().Add(-time.Hour),
			})

			Expect(err).To(HaveOccurred())
			Expect(repo.payments).To(HaveLen(1))
		})
	})

	Describe("Update", func() {
		var paymentID string

		BeforeEach(func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")
			result := record("10000")
			paymentID = result.Payment.ID
		})

		It("should treat an empty patch as a no-op success", func() {
			result, err := service.Update(paymentID, payment.UpdatePaymentDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Payment.AmountPaid).To(Equal(10000.0))
			Expect(result.ApplicationStatus).To(Equal(loan.StatusInRepayment))
		})

		It("should re-derive the status after an amount change", func() {
			amount := decimal.RequireFromString("50000")
			result, err := service.Update(paymentID, payment.UpdatePaymentDTO{
				AmountPaid: &amount,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ApplicationStatus).To(Equal(loan.StatusPaidInFull))
		})

		It("should return not found for a missing payment", func() {
			_, err := service.Update("missing", payment.UpdatePaymentDTO{})

			Expect(err).To(Equal(apperrors.ErrPaymentNotFound))
		})
	})

	Describe("Delete", func() {
		It("should walk the status back to disbursed when the last payment goes", func() {
			app := newApplication(loan.StatusInRepayment, "50000")
			disbursed := time.Now().Add(-72 * time.Hour)
			app.ApprovalDate = &disbursed
			app.DisbursementDate = &disbursed
			apps.apps[appID] = app
			result := record("10000")

			status, err := service.Delete(result.Payment.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(status).To(Equal(loan.StatusDisbursed))
		})

		It("should walk back to approved when the loan was never disbursed", func() {
			app := newApplication(loan.StatusInRepayment, "50000")
			approvedAt := time.Now().Add(-72 * time.Hour)
			app.ApprovalDate = &approvedAt
			apps.apps[appID] = app
			result := record("10000")

			status, err := service.Delete(result.Payment.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(status).To(Equal(loan.StatusApproved))
		})

		It("should keep the remaining balance in in_repayment", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")
			first := record("10000")
			record("5000")

			status, err := service.Delete(first.Payment.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(status).To(Equal(loan.StatusInRepayment))
		})

		It("should publish a payment deleted event", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")
			result := record("10000")
			publisher.published = nil

			_, err := service.Delete(result.Payment.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.eventTypes()).To(ContainElement(events.EventTypePaymentDeleted))
		})

		It("should return not found for a missing payment", func() {
			_, err := service.Delete("missing")

			Expect(err).To(Equal(apperrors.ErrPaymentNotFound))
		})
	})

	Describe("ListByApplication", func() {
		It("should return the application's payments", func() {
			apps.apps[appID] = newApplication(loan.StatusDisbursed, "50000")
			record("100")
			record("200")

			payments, err := service.ListByApplication(appID)

			Expect(err).ToNot(HaveOccurred())
			Expect(payments).To(HaveLen(2))
		})

		It("should return not found for a missing application", func() {
			_, err := service.ListByApplication("missing")

			Expect(err).To(Equal(apperrors.ErrApplicationNotFound))
		})
	})
})
