package loan_test

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/core/events"
	"github.com/sierrasilva/backoffice/internal/loan"
)

// Mock repositories for testing
type mockClientRepository struct {
	clients     map[string]*loan.Client
	apps        *mockApplicationRepository
	createError error
	deleteError error
}

func newMockClientRepository(apps *mockApplicationRepository) *mockClientRepository {
	return &mockClientRepository{
		clients: make(map[string]*loan.Client),
		apps:    apps,
	}
}

func (m *mockClientRepository) CreateWithApplication(c *loan.Client, a *loan.Application) error {
	if m.createError != nil {
		return m.createError
	}
	m.clients[c.ID] = c
	m.apps.apps[a.ID] = a
	return nil
}

func (m *mockClientRepository) GetByID(id string) (*loan.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockClientRepository) GetWithApplications(id string) (*loan.Client, error) {
	c, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	c.Applications = m.apps.byClient(id)
	return c, nil
}

func (m *mockClientRepository) ListWithApplications() ([]*loan.Client, error) {
	out := make([]*loan.Client, 0, len(m.clients))
	for _, c := range m.clients {
		c.Applications = m.apps.byClient(c.ID)
		out = append(out, c)
	}
	return out, nil
}

func (m *mockClientRepository) Update(c *loan.Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m *mockClientRepository) DeleteCascade(id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.clients, id)
	for appID, a := range m.apps.apps {
		if a.ClientID == id {
			delete(m.apps.apps, appID)
		}
	}
	return nil
}

type mockApplicationRepository struct {
	apps        map[string]*loan.Application
	updateError error
}

func newMockApplicationRepository() *mockApplicationRepository {
	return &mockApplicationRepository{apps: make(map[string]*loan.Application)}
}

func (m *mockApplicationRepository) byClient(clientID string) []loan.Application {
	var out []loan.Application
	for _, a := range m.apps {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out
}

func (m *mockApplicationRepository) Create(a *loan.Application) error {
	m.apps[a.ID] = a
	return nil
}

func (m *mockApplicationRepository) GetByID(id string) (*loan.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (m *mockApplicationRepository) GetWithDetails(id string) (*loan.Application, error) {
	return m.GetByID(id)
}

func (m *mockApplicationRepository) GetLatestByClient(clientID string) (*loan.Application, error) {
	apps := m.byClient(clientID)
	if len(apps) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := apps[0]
	return m.apps[latest.ID], nil
}

func (m *mockApplicationRepository) Update(a *loan.Application) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.apps[a.ID] = a
	return nil
}

func (m *mockApplicationRepository) UpdateStatus(id, status string) error {
	if a, ok := m.apps[id]; ok {
		a.Status = status
	}
	return nil
}

func (m *mockApplicationRepository) Exists(id string) (bool, error) {
	_, ok := m.apps[id]
	return ok, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.published = append(m.published, event)
}

func validCreateDTO() loan.CreateClientWithApplicationDTO {
	return loan.CreateClientWithApplicationDTO{
		FirstNames:      "Carlos",
		LastNames:       "Mejía",
		NationalID:      "0801199011111",
		Phone:           "+50498765432",
		Email:           "carlos.mejia@example.com",
		Workplace:       "Ferretería Central",
		HomeAddress:     "Barrio El Centro, Comayagua",
		RequestedAmount: decimal.RequireFromString("75000"),
		CollateralType:  loan.CollateralVehicle,
		RequestDate:     time.Now().Add(-time.Hour),
	}
}

var _ = Describe("LoanService", func() {
	var (
		service    *loan.Service
		clientRepo *mockClientRepository
		appRepo    *mockApplicationRepository
		publisher  *mockPublisher
		logger     *slog.Logger
	)

	BeforeEach(func() {
		appRepo = newMockApplicationRepository()
		clientRepo = newMockClientRepository(appRepo)
		publisher = &mockPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = loan.NewService(clientRepo, appRepo, publisher, logger)
	})

	Describe("CreateClientWithApplication", func() {
		It("should create the client and a pending application together", func() {
			client, app, err := service.CreateClientWithApplication(validCreateDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(client.ID).ToNot(BeEmpty())
			Expect(app.ClientID).To(Equal(client.ID))
			Expect(app.Status).To(Equal(loan.StatusPendingApproval))
			Expect(app.ApprovedAmount.Valid).To(BeFalse())
		})

		It("should reject a malformed national ID", func() {
			dto := validCreateDTO()
			dto.NationalID = "12AB"

			_, _, err := service.CreateClientWithApplication(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("should reject a non-positive requested amount", func() {
			dto := validCreateDTO()
			dto.RequestedAmount = decimal.Zero

			_, _, err := service.CreateClientWithApplication(dto)

			Expect(err).To(HaveOccurred())
		})

		It("should surface duplicate conflicts from the repository", func() {
			clientRepo.createError = apperrors.ErrDuplicateNationalID

			_, _, err := service.CreateClientWithApplication(validCreateDTO())

			Expect(err).To(Equal(apperrors.ErrDuplicateNationalID))
		})
	})

	Describe("SetStatus", func() {
		var appID string

		BeforeEach(func() {
			_, app, err := service.CreateClientWithApplication(validCreateDTO())
			Expect(err).ToNot(HaveOccurred())
			appID = app.ID
		})

		It("should stamp the approval date on the first move to approved", func() {
			app, err := service.SetStatus(appID, loan.StatusApproved)

			Expect(err).ToNot(HaveOccurred())
			Expect(app.Status).To(Equal(loan.StatusApproved))
			Expect(app.ApprovalDate).ToNot(BeNil())
		})

		It("should not overwrite an existing approval date", func() {
			first, err := service.SetStatus(appID, loan.StatusApproved)
			Expect(err).ToNot(HaveOccurred())
			stamped := *first.ApprovalDate

			_, err = service.SetStatus(appID, loan.StatusRejected)
			Expect(err).ToNot(HaveOccurred())
			again, err := service.SetStatus(appID, loan.StatusApproved)

			Expect(err).ToNot(HaveOccurred())
			Expect(again.ApprovalDate.Equal(stamped)).To(BeTrue())
		})

		It("should stamp the disbursement date on the first move to disbursed", func() {
			app, err := service.SetStatus(appID, loan.StatusDisbursed)

			Expect(err).ToNot(HaveOccurred())
			Expect(app.DisbursementDate).ToNot(BeNil())
		})

		It("should publish a status changed event", func() {
			_, err := service.SetStatus(appID, loan.StatusApproved)

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeLoanStatusChanged))
		})

		It("should reject an unknown status", func() {
			_, err := service.SetStatus(appID, "siesta")

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidStatus))
		})

		It("should return not found for a missing application", func() {
			_, err := service.SetStatus("missing", loan.StatusApproved)

			Expect(err).To(Equal(apperrors.ErrApplicationNotFound))
		})
	})

	Describe("UpdateApplication", func() {
		var appID string

		BeforeEach(func() {
			_, app, err := service.CreateClientWithApplication(validCreateDTO())
			Expect(err).ToNot(HaveOccurred())
			appID = app.ID
		})

		It("should set the approved amount", func() {
			amount := decimal.RequireFromString("50000")
			app, err := service.UpdateApplication(appID, loan.UpdateApplicationDTO{
				ApprovedAmount: &amount,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(app.ApprovedAmount.Valid).To(BeTrue())
			Expect(app.ApprovedAmount.Decimal.String()).To(Equal("50000"))
		})

		It("should reject a non-positive approved amount", func() {
			amount := decimal.Zero
			_, err := service.UpdateApplication(appID, loan.UpdateApplicationDTO{
				ApprovedAmount: &amount,
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateClientAndLatestApplication", func() {
		var clientID string

		BeforeEach(func() {
			client, _, err := service.CreateClientWithApplication(validCreateDTO())
			Expect(err).ToNot(HaveOccurred())
			clientID = client.ID
		})

		It("should update only the client when no application fields are sent", func() {
			phone := "+50433221100"
			client, app, err := service.UpdateClientAndLatestApplication(clientID, loan.UpdateClientWithApplicationDTO{
				Phone: &phone,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(client.Phone).To(Equal(phone))
			Expect(app).To(BeNil())
		})

		It("should touch the most recent application when application fields are sent", func() {
			notes := "pays at the branch"
			_, app, err := service.UpdateClientAndLatestApplication(clientID, loan.UpdateClientWithApplicationDTO{
				PaymentNotes: &notes,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(app).ToNot(BeNil())
			Expect(*app.PaymentNotes).To(Equal(notes))
		})

		It("should create an application when the client has none and enough fields arrive", func() {
			for id, a := range appRepo.apps {
				if a.ClientID == clientID {
					delete(appRepo.apps, id)
				}
			}
			amount := decimal.RequireFromString("20000")
			collateral := loan.CollateralProperty
			requestDate := time.Now()

			_, app, err := service.UpdateClientAndLatestApplication(clientID, loan.UpdateClientWithApplicationDTO{
				RequestedAmount: &amount,
				CollateralType:  &collateral,
				RequestDate:     &requestDate,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(app).ToNot(BeNil())
			Expect(app.Status).To(Equal(loan.StatusPendingApproval))
			Expect(app.RequestedAmount.String()).To(Equal("20000"))
		})
	})

	Describe("DeleteClient", func() {
		It("should remove the client and their applications", func() {
			client, app, err := service.CreateClientWithApplication(validCreateDTO())
			Expect(err).ToNot(HaveOccurred())

			Expect(service.DeleteClient(client.ID)).To(Succeed())

			_, err = service.GetClientWithApplications(client.ID)
			Expect(err).To(Equal(apperrors.ErrClientNotFound))
			_, err = service.GetApplication(app.ID)
			Expect(err).To(Equal(apperrors.ErrApplicationNotFound))
		})

		It("should return not found for an unknown client", func() {
			Expect(service.DeleteClient("missing")).To(Equal(apperrors.ErrClientNotFound))
		})
	})

	Describe("AddApplication", func() {
		It("should attach a second application to the client", func() {
			client, _, err := service.CreateClientWithApplication(validCreateDTO())
			Expect(err).ToNot(HaveOccurred())

			app, err := service.AddApplication(client.ID, loan.AddApplicationDTO{
				RequestedAmount: decimal.RequireFromString("15000"),
				CollateralType:  loan.CollateralGuarantor,
				RequestDate:     time.Now(),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(app.ClientID).To(Equal(client.ID))
			Expect(app.Status).To(Equal(loan.StatusPendingApproval))
		})
	})
})
