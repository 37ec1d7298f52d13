package lawfirm

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sierrasilva/backoffice/internal/transport"
	"github.com/sierrasilva/backoffice/pkg/logger"
)

type ServiceAPI interface {
	Register(dto RegisterFirmClientDTO) (*RegisterResult, error)
	List() ([]*FirmClient, error)
	Get(id string) (*FirmClient, error)
	Update(id string, dto UpdateFirmClientDTO) (*FirmClient, error)
	ChangeStatus(id, status string) (*FirmClient, error)
	Delete(id string) error
	AddLogEntry(firmClientID string, dto CaseLogEntryDTO) (*CaseLogEntry, error)
	ListLogEntries(firmClientID string) ([]*CaseLogEntry, error)
	UpdateLogEntry(entryID string, dto CaseLogEntryDTO) (*CaseLogEntry, error)
	DeleteLogEntry(entryID string) error
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterFirmClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Register: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("Register: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Register: firm client registered", "firm_client_id", result.Client.ID)
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]FirmClientResponse, len(clients))
	for i, c := range clients {
		resp[i] = ToFirmClientResponse(c)
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"clients": resp})
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	client, err := h.Service.Get(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToFirmClientResponse(client))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	var dto UpdateFirmClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateClient: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.Service.Update(id, dto)
	if err != nil {
		h.Logger.Error("UpdateClient: service error", "error", err, "firm_client_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToFirmClientResponse(client))
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	var dto ChangeStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ChangeStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.Service.ChangeStatus(id, dto.Status)
	if err != nil {
		h.Logger.Error("ChangeStatus: service error", "error", err, "firm_client_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToFirmClientResponse(client))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("DeleteClient: service error", "error", err, "firm_client_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) AddLogEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	var dto CaseLogEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddLogEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.AddLogEntry(id, dto)
	if err != nil {
		h.Logger.Error("AddLogEntry: service error", "error", err, "firm_client_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToCaseLogEntryResponse(entry))
}

func (h *Handler) ListLogEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	entries, err := h.Service.ListLogEntries(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]CaseLogEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = ToCaseLogEntryResponse(e)
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": resp})
}

func (h *Handler) UpdateLogEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if entryID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing entry ID")
		return
	}

	var dto CaseLogEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateLogEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.UpdateLogEntry(entryID, dto)
	if err != nil {
		h.Logger.Error("UpdateLogEntry: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToCaseLogEntryResponse(entry))
}

func (h *Handler) DeleteLogEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if entryID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing entry ID")
		return
	}

	if err := h.Service.DeleteLogEntry(entryID); err != nil {
		h.Logger.Error("DeleteLogEntry: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
