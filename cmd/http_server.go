package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sierrasilva/backoffice/internal"
	"github.com/sierrasilva/backoffice/internal/auth"
	"github.com/sierrasilva/backoffice/internal/contact"
	contactpg "github.com/sierrasilva/backoffice/internal/contact/postgres"
	"github.com/sierrasilva/backoffice/internal/core/events"
	"github.com/sierrasilva/backoffice/internal/document"
	documentpg "github.com/sierrasilva/backoffice/internal/document/postgres"
	"github.com/sierrasilva/backoffice/internal/lawfirm"
	lawfirmpg "github.com/sierrasilva/backoffice/internal/lawfirm/postgres"
	"github.com/sierrasilva/backoffice/internal/loan"
	loanpg "github.com/sierrasilva/backoffice/internal/loan/postgres"
	"github.com/sierrasilva/backoffice/internal/mailer"
	"github.com/sierrasilva/backoffice/internal/payment"
	paymentpg "github.com/sierrasilva/backoffice/internal/payment/postgres"
	"github.com/sierrasilva/backoffice/internal/transport/rest"
	"github.com/sierrasilva/backoffice/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(lg)
	mail := mailer.FromConfig(config.Mail, lg)
	registerNotificationHandlers(bus, mail, config.Mail.AdminAddress, lg)

	clientRepo := loanpg.NewClientRepository(gormDB)
	appRepo := loanpg.NewApplicationRepository(gormDB)
	paymentRepo := paymentpg.NewPaymentRepository(gormDB)
	documentRepo := documentpg.NewDocumentRepository(gormDB)
	firmRepo := lawfirmpg.NewFirmClientRepository(gormDB)
	contactRepo := contactpg.NewContactRepository(gormDB)

	loanService := loan.NewService(clientRepo, appRepo, bus, lg)
	paymentService := payment.NewService(paymentRepo, appRepo, bus, lg)
	storage := document.NewSimulatedStorage(config.Storage.BaseURL, lg)
	documentService := document.NewService(documentRepo, applicationChecker{apps: appRepo}, storage, lg)
	lawfirmService := lawfirm.NewService(firmRepo, mail, config.Mail.AdminAddress, lg)
	contactService := contact.NewService(contactRepo, mail, config.Mail.AdminAddress, lg)
	authService := auth.NewService(config.Auth, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		Loan:     loan.NewHandler(loanService),
		Payment:  payment.NewHandler(paymentService),
		Document: document.NewHandler(documentService),
		LawFirm:  lawfirm.NewHandler(lawfirmService),
		Contact:  contact.NewHandler(contactService),
	}, authService, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// applicationChecker adapts the loan application repository to the narrow
// existence check the document service needs.
type applicationChecker struct {
	apps loan.ApplicationRepository
}

func (c applicationChecker) ApplicationExists(id string) (bool, error) {
	return c.apps.Exists(id)
}

// registerNotificationHandlers wires loan lifecycle events to the admin
// notification mailbox.
func registerNotificationHandlers(bus *events.EventBus, mail mailer.Mailer, adminEmail string, lg *slog.Logger) {
	if adminEmail == "" {
		lg.Warn("no admin notification address configured; loan event emails disabled")
		return
	}

	bus.Subscribe(events.EventTypeLoanStatusChanged, func(ctx context.Context, e events.Event) error {
		data, _ := e.Payload().(map[string]interface{})
		return mail.Send(adminEmail,
			"Loan application status changed",
			fmt.Sprintf("<p>Application %v moved from %v to %v (%v).</p>",
				data["application_id"], data["previous_status"], data["new_status"], data["trigger"]))
	})

	bus.Subscribe(events.EventTypePaymentRecorded, func(ctx context.Context, e events.Event) error {
		data, _ := e.Payload().(map[string]interface{})
		return mail.Send(adminEmail,
			"Payment recorded",
			fmt.Sprintf("<p>Payment %v of %v recorded on application %v.</p>",
				data["payment_id"], data["amount"], data["application_id"]))
	})
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
