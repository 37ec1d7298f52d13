package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sierrasilva/backoffice/internal/lawfirm"
	"github.com/sierrasilva/backoffice/internal/loan"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"loan_documents", "loan_payments", "loan_applications", "loan_clients", "firm_case_log_entries", "firm_clients", "contact_messages"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		// Print a hash for the default dev password so it can be dropped
		// into ADMIN_PASSWORD_HASH.
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		fmt.Println("Sample admin password hash (password123):", string(hash))

		now := time.Now()
		taxID := "08011985123452"
		client := &loan.Client{
			ID:           uuid.NewString(),
			FirstNames:   "María Fernanda",
			LastNames:    "Castellanos",
			NationalID:   "0801198512345",
			Phone:        "+50499887766",
			Email:        "maria.castellanos@example.com",
			TaxID:        &taxID,
			Workplace:    "Distribuidora del Norte",
			HomeAddress:  "Col. Las Colinas, Tegucigalpa",
			RegisteredAt: now,
		}

		var exists int64
		db.Model(&loan.Client{}).Where("email = ?", client.Email).Count(&exists)
		if exists == 0 {
			app := &loan.Application{
				ID:              uuid.NewString(),
				ClientID:        client.ID,
				RequestedAmount: decimal.NewFromInt(50000),
				Status:          loan.StatusPendingApproval,
				CollateralType:  loan.CollateralVehicle,
				RequestDate:     now,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := db.Create(client).Error; err != nil {
				log.Fatalf("failed to seed loan client: %v", err)
			}
			if err := db.Create(app).Error; err != nil {
				log.Fatalf("failed to seed loan application: %v", err)
			}
			fmt.Println("Seeded loan client:", client.Email)
		} else {
			fmt.Println("Loan client already exists:", client.Email)
		}

		db.Model(&lawfirm.FirmClient{}).Where("email = ?", "jorge.pineda@example.com").Count(&exists)
		if exists == 0 {
			firmClient := &lawfirm.FirmClient{
				ID:           uuid.NewString(),
				FullName:     "Jorge Pineda",
				Email:        "jorge.pineda@example.com",
				CaseType:     "labor",
				Status:       lawfirm.StatusConsultation,
				RegisteredAt: now,
				UpdatedAt:    now,
			}
			if err := db.Create(firmClient).Error; err != nil {
				log.Fatalf("failed to seed firm client: %v", err)
			}
			fmt.Println("Seeded firm client:", firmClient.Email)
		} else {
			fmt.Println("Firm client already exists: jorge.pineda@example.com")
		}

		fmt.Println("Seeding complete")
	},
}
