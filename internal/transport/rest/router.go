package rest

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/sierrasilva/backoffice/internal/auth"
	"github.com/sierrasilva/backoffice/internal/contact"
	"github.com/sierrasilva/backoffice/internal/document"
	"github.com/sierrasilva/backoffice/internal/lawfirm"
	"github.com/sierrasilva/backoffice/internal/loan"
	"github.com/sierrasilva/backoffice/internal/payment"
	"github.com/sierrasilva/backoffice/internal/transport"
	"github.com/sierrasilva/backoffice/internal/transport/middleware"
	"github.com/sierrasilva/backoffice/internal/transport/swagger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	Loan     *loan.Handler
	Payment  *payment.Handler
	Document *document.Handler
	LawFirm  *lawfirm.Handler
	Contact  *contact.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authService auth.ServiceAPI, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// The WhatsApp chatbot was retired; its webhook URL stays registered so
	// stale provider callbacks get a definitive answer.
	whatsappGone := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "the WhatsApp integration has been retired",
		})
	}
	router.Get("/api/whatsapp-webhook", whatsappGone)
	router.Post("/api/whatsapp-webhook", whatsappGone)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/auth/login", h.Auth.Login)

		// Public intake endpoints for the marketing site forms.
		r.Post("/contact", h.Contact.Submit)
		r.Post("/lawfirm/intake", h.LawFirm.Register)

		// Everything else requires the admin token.
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(authService, transport.NewBaseHandler(logger)))

			pr.Get("/auth/me", h.Auth.Me)

			pr.Route("/clients", func(cr chi.Router) {
				cr.Post("/", h.Loan.CreateClient)
				cr.Get("/", h.Loan.ListClients)
				cr.Get("/{id}", h.Loan.GetClient)
				cr.Put("/{id}", h.Loan.UpdateClient)
				cr.Delete("/{id}", h.Loan.DeleteClient)
				cr.Post("/{id}/applications", h.Loan.AddApplication)
			})

			pr.Route("/applications", func(ar chi.Router) {
				ar.Get("/{id}", h.Loan.GetApplication)
				ar.Put("/{id}", h.Loan.UpdateApplication)
				ar.Patch("/{id}/status", h.Loan.SetApplicationStatus)

				ar.Post("/{id}/payments", h.Payment.RecordPayment)
				ar.Get("/{id}/payments", h.Payment.ListPayments)

				ar.Post("/{id}/documents", h.Document.Upload)
				ar.Get("/{id}/documents", h.Document.ListByApplication)
			})

			pr.Route("/payments", func(pmr chi.Router) {
				pmr.Put("/{id}", h.Payment.UpdatePayment)
				pmr.Delete("/{id}", h.Payment.DeletePayment)
			})

			pr.Delete("/documents/{id}", h.Document.Delete)

			pr.Route("/lawfirm/clients", func(lr chi.Router) {
				lr.Post("/", h.LawFirm.Register)
				lr.Get("/", h.LawFirm.ListClients)
				lr.Get("/{id}", h.LawFirm.GetClient)
				lr.Put("/{id}", h.LawFirm.UpdateClient)
				lr.Patch("/{id}/status", h.LawFirm.ChangeStatus)
				lr.Delete("/{id}", h.LawFirm.DeleteClient)
				lr.Post("/{id}/log", h.LawFirm.AddLogEntry)
				lr.Get("/{id}/log", h.LawFirm.ListLogEntries)
			})

			pr.Route("/lawfirm/log", func(lr chi.Router) {
				lr.Put("/{entryID}", h.LawFirm.UpdateLogEntry)
				lr.Delete("/{entryID}", h.LawFirm.DeleteLogEntry)
			})

			pr.Get("/contact/messages", h.Contact.ListMessages)
		})
	})
}
