package postgres_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/document"
	"github.com/sierrasilva/backoffice/internal/loan"
	"github.com/sierrasilva/backoffice/internal/loan/postgres"
	"github.com/sierrasilva/backoffice/internal/payment"
)

func TestLoanPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Loan Repository Suite")
}

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).ToNot(HaveOccurred())
	Expect(db.AutoMigrate(
		&loan.Client{},
		&loan.Application{},
		&payment.Payment{},
		&document.Document{},
	)).To(Succeed())
	return db
}

func newClient() *loan.Client {
	return &loan.Client{
		ID:           uuid.NewString(),
		FirstNames:   "María Fernanda",
		LastNames:    "Castellanos",
		NationalID:   "0801199901234",
		Phone:        "50498765432",
		Email:        "maria.castellanos@example.com",
		Workplace:    "Hospital del Valle",
		HomeAddress:  "Col. Las Mercedes, Tegucigalpa",
		RegisteredAt: time.Now(),
	}
}

func newApplication(clientID string) *loan.Application {
	now := time.Now()
	return &loan.Application{
		ID:              uuid.NewString(),
		ClientID:        clientID,
		RequestedAmount: decimal.RequireFromString("50000"),
		Status:          loan.StatusPendingApproval,
		CollateralType:  loan.CollateralVehicle,
		RequestDate:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

var _ = Describe("ClientRepository", func() {
	var (
		db      *gorm.DB
		clients loan.ClientRepository
		apps    loan.ApplicationRepository
	)

	BeforeEach(func() {
		db = openTestDB()
		clients = postgres.NewClientRepository(db)
		apps = postgres.NewApplicationRepository(db)
	})

	Describe("CreateWithApplication", func() {
		It("should persist both rows atomically", func() {
			c := newClient()
			a := newApplication(c.ID)

			Expect(clients.CreateWithApplication(c, a)).To(Succeed())

			stored, err := clients.GetWithApplications(c.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(stored.Applications).To(HaveLen(1))
			Expect(stored.Applications[0].RequestedAmount.Equal(a.RequestedAmount)).To(BeTrue())
		})

		It("should translate a duplicate national id", func() {
			first := newClient()
			Expect(clients.CreateWithApplication(first, newApplication(first.ID))).To(Succeed())

			second := newClient()
			second.ID = uuid.NewString()
			second.Email = "other@example.com"

			err := clients.CreateWithApplication(second, newApplication(second.ID))

			Expect(err).To(Equal(apperrors.ErrDuplicateNationalID))
		})

		It("should translate a duplicate email", func() {
			first := newClient()
			Expect(clients.CreateWithApplication(first, newApplication(first.ID))).To(Succeed())

			second := newClient()
			second.ID = uuid.NewString()
			second.NationalID = "0801200005678"

			err := clients.CreateWithApplication(second, newApplication(second.ID))

			Expect(err).To(Equal(apperrors.ErrDuplicateEmail))
		})
	})

	Describe("ListWithApplications", func() {
		It("should order a client's applications most recent first", func() {
			c := newClient()
			older := newApplication(c.ID)
			older.RequestDate = time.Now().Add(-48 * time.Hour)
			Expect(clients.CreateWithApplication(c, older)).To(Succeed())

			newer := newApplication(c.ID)
			Expect(apps.Create(newer)).To(Succeed())

			list, err := clients.ListWithApplications()

			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Applications).To(HaveLen(2))
			Expect(list[0].Applications[0].ID).To(Equal(newer.ID))
		})
	})

	Describe("DeleteCascade", func() {
		It("should remove applications, payments and documents with the client", func() {
			c := newClient()
			a := newApplication(c.ID)
			Expect(clients.CreateWithApplication(c, a)).To(Succeed())

			Expect(db.Create(&payment.Payment{
				ID:            uuid.NewString(),
				ApplicationID: a.ID,
				AmountPaid:    decimal.RequireFromString("1000"),
				PaymentDate:   time.Now(),
				RecordedAt:    time.Now(),
			}).Error).To(Succeed())
			Expect(db.Create(&document.Document{
				ID:            uuid.NewString(),
				ApplicationID: a.ID,
				FileName:      "contract.pdf",
				ContentType:   "application/pdf",
				SizeBytes:     1024,
				URL:           "/uploads/loans/x",
				UploadedAt:    time.Now(),
			}).Error).To(Succeed())

			Expect(clients.DeleteCascade(c.ID)).To(Succeed())

			var paymentCount, documentCount, appCount int64
			Expect(db.Model(&payment.Payment{}).Count(&paymentCount).Error).To(Succeed())
			Expect(db.Model(&document.Document{}).Count(&documentCount).Error).To(Succeed())
			Expect(db.Model(&loan.Application{}).Count(&appCount).Error).To(Succeed())
			Expect(paymentCount).To(BeZero())
			Expect(documentCount).To(BeZero())
			Expect(appCount).To(BeZero())

			_, err := clients.GetByID(c.ID)
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})

		It("should report a missing client", func() {
			Expect(clients.DeleteCascade("missing")).To(Equal(gorm.ErrRecordNotFound))
		})
	})
})

var _ = Describe("ApplicationRepository", func() {
	var (
		db      *gorm.DB
		clients loan.ClientRepository
		apps    loan.ApplicationRepository
		client  *loan.Client
	)

	BeforeEach(func() {
		db = openTestDB()
		clients = postgres.NewClientRepository(db)
		apps = postgres.NewApplicationRepository(db)

		client = newClient()
		Expect(clients.CreateWithApplication(client, newApplication(client.ID))).To(Succeed())
	})

	Describe("GetLatestByClient", func() {
		It("should return the most recently requested application", func() {
			latest := newApplication(client.ID)
			latest.RequestDate = time.Now().Add(24 * time.Hour)
			Expect(apps.Create(latest)).To(Succeed())

			got, err := apps.GetLatestByClient(client.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(latest.ID))
		})
	})

	Describe("UpdateStatus", func() {
		It("should persist the new status", func() {
			a := newApplication(client.ID)
			Expect(apps.Create(a)).To(Succeed())

			Expect(apps.UpdateStatus(a.ID, loan.StatusApproved)).To(Succeed())

			got, err := apps.GetByID(a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.Status).To(Equal(loan.StatusApproved))
		})
	})

	Describe("Exists", func() {
		It("should distinguish present from absent", func() {
			a := newApplication(client.ID)
			Expect(apps.Create(a)).To(Succeed())

			exists, err := apps.Exists(a.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = apps.Exists("missing")
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("GetWithDetails", func() {
		It("should load the owner and documents", func() {
			a := newApplication(client.ID)
			Expect(apps.Create(a)).To(Succeed())
			Expect(db.Create(&document.Document{
				ID:            uuid.NewString(),
				ApplicationID: a.ID,
				FileName:      "contract.pdf",
				ContentType:   "application/pdf",
				SizeBytes:     1024,
				URL:           "/uploads/loans/x",
				UploadedAt:    time.Now(),
			}).Error).To(Succeed())

			got, err := apps.GetWithDetails(a.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(got.Client).ToNot(BeNil())
			Expect(got.Client.Email).To(Equal(client.Email))
			Expect(got.Documents).To(HaveLen(1))
		})
	})
})
