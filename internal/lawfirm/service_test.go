package lawfirm_test

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	apperrors "github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/lawfirm"
)

func TestLawFirm(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LawFirm Suite")
}

type mockFirmRepository struct {
	clients     map[string]*lawfirm.FirmClient
	entries     map[string]*lawfirm.CaseLogEntry
	createError error
}

func newMockFirmRepository() *mockFirmRepository {
	return &mockFirmRepository{
		clients: make(map[string]*lawfirm.FirmClient),
		entries: make(map[string]*lawfirm.CaseLogEntry),
	}
}

func (m *mockFirmRepository) Create(c *lawfirm.FirmClient) error {
	if m.createError != nil {
		return m.createError
	}
	for _, existing := range m.clients {
		if existing.Email == c.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	m.clients[c.ID] = c
	return nil
}

func (m *mockFirmRepository) GetByID(id string) (*lawfirm.FirmClient, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockFirmRepository) GetWithCaseLog(id string) (*lawfirm.FirmClient, error) {
	c, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	clone := *c
	clone.CaseLog = nil
	for _, e := range m.entries {
		if e.FirmClientID == id {
			clone.CaseLog = append(clone.CaseLog, *e)
		}
	}
	return &clone, nil
}

func (m *mockFirmRepository) List() ([]*lawfirm.FirmClient, error) {
	out := make([]*lawfirm.FirmClient, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockFirmRepository) Update(c *lawfirm.FirmClient) error {
	if _, ok := m.clients[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.clients[c.ID] = c
	return nil
}

func (m *mockFirmRepository) DeleteCascade(id string) error {
	if _, ok := m.clients[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for entryID, e := range m.entries {
		if e.FirmClientID == id {
			delete(m.entries, entryID)
		}
	}
	delete(m.clients, id)
	return nil
}

func (m *mockFirmRepository) CreateLogEntry(e *lawfirm.CaseLogEntry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockFirmRepository) GetLogEntry(id string) (*lawfirm.CaseLogEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (m *mockFirmRepository) ListLogEntries(firmClientID string) ([]*lawfirm.CaseLogEntry, error) {
	var out []*lawfirm.CaseLogEntry
	for _, e := range m.entries {
		if e.FirmClientID == firmClientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockFirmRepository) UpdateLogEntry(e *lawfirm.CaseLogEntry) error {
	if _, ok := m.entries[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockFirmRepository) DeleteLogEntry(id string) error {
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

type mockMailer struct {
	sent      []string
	sendError error
}

func (m *mockMailer) Send(to, subject, htmlBody string) error {
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, to)
	return nil
}

var _ = Describe("LawFirmService", func() {
	var (
		service *lawfirm.Service
		repo    *mockFirmRepository
		mail    *mockMailer
	)

	strptr := func(s string) *string { return &s }

	validRegisterDTO := func() lawfirm.RegisterFirmClientDTO {
		return lawfirm.RegisterFirmClientDTO{
			FullName: "Jorge Pineda",
			Email:    "jorge.pineda@example.com",
			Phone:    strptr("50499887766"),
			CaseType: "labor dispute",
			Message:  strptr("I was dismissed without severance after eight years."),
		}
	}

	BeforeEach(func() {
		repo = newMockFirmRepository()
		mail = &mockMailer{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = lawfirm.NewService(repo, mail, "admin@sierrasilva.hn", logger)
	})

	Describe("Register", func() {
		It("should create the client in consultation status", func() {
			result, err := service.Register(validRegisterDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Client.Status).To(Equal(lawfirm.StatusConsultation))
			Expect(result.StatusMessage).To(Equal("registration received"))
		})

		It("should store the intake message as the first case log entry", func() {
			result, err := service.Register(validRegisterDTO())
			Expect(err).ToNot(HaveOccurred())

			entries, err := service.ListLogEntries(result.Client.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Description).To(ContainSubstring("dismissed without severance"))
		})

		It("should notify the client and the admin", func() {
			_, err := service.Register(validRegisterDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(mail.sent).To(ConsistOf("jorge.pineda@example.com", "admin@sierrasilva.hn"))
		})

		It("should still register when the mail backend is down", func() {
			mail.sendError = fmt.Errorf("smtp: connection refused")

			result, err := service.Register(validRegisterDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.StatusMessage).To(ContainSubstring("confirmation email could not be sent"))
			Expect(repo.clients).To(HaveLen(1))
		})

		It("should surface a duplicate email as a conflict", func() {
			_, err := service.Register(validRegisterDTO())
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Register(validRegisterDTO())

			Expect(err).To(Equal(apperrors.ErrDuplicateEmail))
		})

		It("should reject an invalid email", func() {
			dto := validRegisterDTO()
			dto.Email = "not-an-email"

			_, err := service.Register(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("should reject an invalid phone number", func() {
			dto := validRegisterDTO()
			dto.Phone = strptr("call me maybe")

			_, err := service.Register(dto)

			Expect(err).To(HaveOccurred())
		})

		It("should skip the case log when no message was sent", func() {
			dto := validRegisterDTO()
			dto.Message = nil

			result, err := service.Register(dto)
			Expect(err).ToNot(HaveOccurred())

			entries, err := service.ListLogEntries(result.Client.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("ChangeStatus", func() {
		var clientID string

		BeforeEach(func() {
			result, err := service.Register(validRegisterDTO())
			Expect(err).ToNot(HaveOccurred())
			clientID = result.Client.ID
		})

		It("should move the client through the lifecycle", func() {
			client, err := service.ChangeStatus(clientID, lawfirm.StatusActive)

			Expect(err).ToNot(HaveOccurred())
			Expect(client.Status).To(Equal(lawfirm.StatusActive))
		})

		It("should reject a status outside the closed set", func() {
			_, err := service.ChangeStatus(clientID, "litigating")

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidStatus))
		})

		It("should return not found for a missing client", func() {
			_, err := service.ChangeStatus("missing", lawfirm.StatusClosed)

			Expect(err).To(Equal(apperrors.ErrFirmClientNotFound))
		})
	})

	Describe("case log", func() {
		var clientID string

		BeforeEach(func() {
			dto := validRegisterDTO()
			dto.Message = nil
			result, err := service.Register(dto)
			Expect(err).ToNot(HaveOccurred())
			clientID = result.Client.ID
		})

		It("should add and list entries", func() {
			_, err := service.AddLogEntry(clientID, lawfirm.CaseLogEntryDTO{
				Description: "Filed the complaint with the labor court.",
			})
			Expect(err).ToNot(HaveOccurred())

			entries, err := service.ListLogEntries(clientID)

			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("should reject a description under five characters", func() {
			_, err := service.AddLogEntry(clientID, lawfirm.CaseLogEntryDTO{Description: "ok"})

			Expect(err).To(HaveOccurred())
		})

		It("should reject a description over a thousand characters", func() {
			_, err := service.AddLogEntry(clientID, lawfirm.CaseLogEntryDTO{
				Description: strings.Repeat("a", 1001),
			})

			Expect(err).To(HaveOccurred())
		})

		It("should edit an entry", func() {
			entry, err := service.AddLogEntry(clientID, lawfirm.CaseLogEntryDTO{
				Description: "Filed the complaint.",
			})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.UpdateLogEntry(entry.ID, lawfirm.CaseLogEntryDTO{
				Description: "Filed the complaint with the labor court, case 2025-441.",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Description).To(ContainSubstring("case 2025-441"))
		})

		It("should delete an entry", func() {
			entry, err := service.AddLogEntry(clientID, lawfirm.CaseLogEntryDTO{
				Description: "Filed the complaint.",
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.DeleteLogEntry(entry.ID)).To(Succeed())

			_, err = service.UpdateLogEntry(entry.ID, lawfirm.CaseLogEntryDTO{
				Description: "Should not resolve anymore.",
			})
			Expect(err).To(Equal(apperrors.ErrCaseLogNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the client with their case log", func() {
			result, err := service.Register(validRegisterDTO())
			Expect(err).ToNot(HaveOccurred())

			Expect(service.Delete(result.Client.ID)).To(Succeed())

			Expect(repo.clients).To(BeEmpty())
			Expect(repo.entries).To(BeEmpty())
		})

		It("should return not found for a missing client", func() {
			Expect(service.Delete("missing")).To(Equal(apperrors.ErrFirmClientNotFound))
		})
	})
})
