package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	errors "github.com/sierrasilva/backoffice/internal"
)

// Repository defines the data access methods for document metadata.
type Repository interface {
	Create(d *Document) error
	GetByID(id string) (*Document, error)
	ListByApplication(applicationID string) ([]*Document, error)
	Delete(id string) error
}

// ApplicationChecker verifies that the owning loan application exists before
// a document is attached to it.
type ApplicationChecker interface {
	ApplicationExists(id string) (bool, error)
}

type Service struct {
	repo    Repository
	apps    ApplicationChecker
	storage Storage
	logger  *slog.Logger
}

func NewService(repo Repository, apps ApplicationChecker, storage Storage, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		apps:    apps,
		storage: storage,
		logger:  logger,
	}
}

func (s *Service) Upload(ctx context.Context, applicationID, fileName, contentType string, size int64, r io.Reader) (*Document, error) {
	if applicationID == "" {
		return nil, errors.NewValidationFieldError("application_id", "application_id is required", errors.ErrCodeValidationFailed)
	}
	if fileName == "" {
		return nil, errors.NewValidationFieldError("file", "a file is required", errors.ErrCodeValidationFailed)
	}
	if size > MaxUploadBytes {
		return nil, errors.NewValidationFieldError("file",
			fmt.Sprintf("file exceeds the maximum size of %dMB", MaxUploadBytes>>20),
			errors.ErrCodeValidationFailed)
	}
	if !AcceptedContentTypes[contentType] {
		return nil, errors.NewValidationFieldError("file",
			"unsupported file type, allowed: PDF, JPG, PNG, WEBP",
			errors.ErrCodeValidationFailed)
	}

	exists, err := s.apps.ApplicationExists(applicationID)
	if err != nil {
		s.logger.Error("failed to check application for upload", "error", err, "application_id", applicationID)
		return nil, errors.NewInternalError("failed to store document", err)
	}
	if !exists {
		return nil, errors.ErrApplicationNotFound
	}

	url, err := s.storage.Store(ctx, applicationID, fileName, r)
	if err != nil {
		s.logger.Error("storage backend rejected upload", "error", err, "application_id", applicationID)
		return nil, errors.NewInternalError("failed to store document", err)
	}

	doc := &Document{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		FileName:      fileName,
		ContentType:   contentType,
		SizeBytes:     size,
		URL:           url,
		UploadedAt:    time.Now(),
	}

	if err := s.repo.Create(doc); err != nil {
		s.logger.Error("failed to persist document metadata", "error", err, "application_id", applicationID)
		return nil, errors.NewInternalError("failed to save document record", err)
	}

	s.logger.Info("document registered",
		"document_id", doc.ID,
		"application_id", applicationID,
		"file_name", fileName,
		"size_bytes", size)

	return doc, nil
}

func (s *Service) ListByApplication(applicationID string) ([]*Document, error) {
	if applicationID == "" {
		return nil, errors.NewValidationFieldError("application_id", "application_id is required", errors.ErrCodeValidationFailed)
	}

	docs, err := s.repo.ListByApplication(applicationID)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err, "application_id", applicationID)
		return nil, errors.NewInternalError("failed to load documents", err)
	}
	return docs, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return errors.ErrDocumentNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete document record", "error", err, "document_id", id)
		return errors.NewInternalError("failed to delete document record", err)
	}

	// Best effort: the storage backend may have nothing behind the locator.
	if err := s.storage.Remove(ctx, doc.URL); err != nil {
		s.logger.Warn("storage backend failed to remove file", "error", err, "url", doc.URL)
	}

	s.logger.Info("document record deleted", "document_id", id, "file_name", doc.FileName)
	return nil
}
