package loan

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sierrasilva/backoffice/internal/transport"
	"github.com/sierrasilva/backoffice/pkg/logger"
)

type ServiceAPI interface {
	CreateClientWithApplication(dto CreateClientWithApplicationDTO) (*Client, *Application, error)
	ListClientsWithApplications() ([]*Client, error)
	GetClientWithApplications(id string) (*Client, error)
	UpdateClientAndLatestApplication(clientID string, dto UpdateClientWithApplicationDTO) (*Client, *Application, error)
	DeleteClient(id string) error
	GetApplication(id string) (*Application, error)
	AddApplication(clientID string, dto AddApplicationDTO) (*Application, error)
	UpdateApplication(id string, dto UpdateApplicationDTO) (*Application, error)
	SetStatus(id, status string) (*Application, error)
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

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var dto CreateClientWithApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateClient: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, app, err := h.Service.CreateClientWithApplication(dto)
	if err != nil {
		h.Logger.Error("CreateClient: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateClient: client registered",
		"client_id", client.ID,
		"application_id", app.ID)

	client.Applications = []Application{*app}
	h.WriteJSON(w, http.StatusCreated, ToClientResponse(client))
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.ListClientsWithApplications()
	if err != nil {
		h.Logger.Error("ListClients: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]ClientResponse, len(clients))
	for i, c := range clients {
		resp[i] = ToClientResponse(c)
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"clients": resp})
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	client, err := h.Service.GetClientWithApplications(clientID)
	if err != nil {
		h.Logger.Error("GetClient: service error", "error", err, "client_id", clientID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToClientResponse(client))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	var dto UpdateClientWithApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateClient: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, app, err := h.Service.UpdateClientAndLatestApplication(clientID, dto)
	if err != nil {
		h.Logger.Error("UpdateClient: service error", "error", err, "client_id", clientID)
		h.HandleServiceError(w, err)
		return
	}

	if app != nil {
		client.Applications = []Application{*app}
	}
	h.WriteJSON(w, http.StatusOK, ToClientResponse(client))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	if err := h.Service.DeleteClient(clientID); err != nil {
		h.Logger.Error("DeleteClient: service error", "error", err, "client_id", clientID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DeleteClient: client deleted", "client_id", clientID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "id")
	if appID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	app, err := h.Service.GetApplication(appID)
	if err != nil {
		h.Logger.Error("GetApplication: service error", "error", err, "application_id", appID)
		h.HandleServiceError(w, err)
		return
	}

	resp := ApplicationDetailResponse{ApplicationResponse: ToApplicationResponse(app)}
	if app.Client != nil {
		client := ToClientResponse(app.Client)
		resp.Client = &client
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddApplication(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing client ID")
		return
	}

	var dto AddApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddApplication: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.AddApplication(clientID, dto)
	if err != nil {
		h.Logger.Error("AddApplication: service error", "error", err, "client_id", clientID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("AddApplication: application created",
		"application_id", app.ID,
		"client_id", clientID)
	h.WriteJSON(w, http.StatusCreated, ToApplicationResponse(app))
}

func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "id")
	if appID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	var dto UpdateApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateApplication: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.UpdateApplication(appID, dto)
	if err != nil {
		h.Logger.Error("UpdateApplication: service error", "error", err, "application_id", appID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToApplicationResponse(app))
}

func (h *Handler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "id")
	if appID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	var dto SetStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetApplicationStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.SetStatus(appID, dto.Status)
	if err != nil {
		h.Logger.Error("SetApplicationStatus: service error", "error", err, "application_id", appID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SetApplicationStatus: status overridden",
		"application_id", appID,
		"status", app.Status)
	h.WriteJSON(w, http.StatusOK, ToApplicationResponse(app))
}
