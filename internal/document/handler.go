package document

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sierrasilva/backoffice/internal/transport"
	"github.com/sierrasilva/backoffice/pkg/logger"
)

type ServiceAPI interface {
	Upload(ctx context.Context, applicationID, fileName, contentType string, size int64, r io.Reader) (*Document, error)
	ListByApplication(applicationID string) ([]*Document, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Upload accepts a multipart form with a single "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "id")
	if applicationID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	// Parse up to the size cap plus a little slack for the form envelope.
	if err := r.ParseMultipartForm(MaxUploadBytes + 1<<20); err != nil {
		h.Logger.Error("Upload: failed to parse multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "a file field is required")
		return
	}
	defer file.Close()

	doc, err := h.Service.Upload(r.Context(),
		applicationID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file)
	if err != nil {
		h.Logger.Error("Upload: service error", "error", err, "application_id", applicationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Upload: document stored",
		"document_id", doc.ID,
		"application_id", applicationID)
	h.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) ListByApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "id")
	if applicationID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	docs, err := h.Service.ListByApplication(applicationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing document ID")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("Delete: service error", "error", err, "document_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
