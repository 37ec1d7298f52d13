package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sierrasilva/backoffice/internal/transport"
	"github.com/sierrasilva/backoffice/pkg/logger"
)

type ServiceAPI interface {
	Submit(dto SubmitContactDTO) (*SubmitResult, error)
	List() ([]*ContactMessage, error)
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

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto SubmitContactDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Submit: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Submit(dto)
	if err != nil {
		h.Logger.Error("Submit: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]ContactMessageResponse, len(messages))
	for i, m := range messages {
		resp[i] = ToContactMessageResponse(m)
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": resp})
}
