package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sierrasilva/backoffice/internal/transport"
	"github.com/sierrasilva/backoffice/pkg/logger"
)

type ServiceAPI interface {
	Record(applicationID string, dto RecordPaymentDTO) (*RecordResult, error)
	Update(paymentID string, dto UpdatePaymentDTO) (*RecordResult, error)
	Delete(paymentID string) (string, error)
	ListByApplication(applicationID string) ([]PaymentResponse, error)
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

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "id")
	if applicationID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	var dto RecordPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RecordPayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Record(applicationID, dto)
	if err != nil {
		h.Logger.Error("RecordPayment: service error", "error", err, "application_id", applicationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RecordPayment: payment recorded",
		"payment_id", result.Payment.ID,
		"application_id", applicationID,
		"application_status", result.ApplicationStatus)
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "id")
	if applicationID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing application ID")
		return
	}

	payments, err := h.Service.ListByApplication(applicationID)
	if err != nil {
		h.Logger.Error("ListPayments: service error", "error", err, "application_id", applicationID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing payment ID")
		return
	}

	var dto UpdatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdatePayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Update(paymentID, dto)
	if err != nil {
		h.Logger.Error("UpdatePayment: service error", "error", err, "payment_id", paymentID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing payment ID")
		return
	}

	status, err := h.Service.Delete(paymentID)
	if err != nil {
		h.Logger.Error("DeletePayment: service error", "error", err, "payment_id", paymentID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DeletePayment: payment deleted",
		"payment_id", paymentID,
		"application_status", status)
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"status":             "deleted",
		"application_status": status,
	})
}
