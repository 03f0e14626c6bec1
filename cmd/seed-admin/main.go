package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/config"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// seed-admin writes the admin credential record from ADMIN_USERNAME,
// ADMIN_PASSWORD and ADMIN_NAME. Re-running it rotates the password.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Admin.Password == "" {
		logger.Fatal("ADMIN_PASSWORD is required")
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), cfg.Security.BcryptCost)
	if err != nil {
		logger.Fatalf("Failed to hash admin password: %v", err)
	}

	repo := database.NewAdminConfigRepository(db)
	cred := &models.AdminCredential{
		Key:          models.AdminConfigKey,
		Username:     cfg.Admin.Username,
		PasswordHash: string(hash),
		Name:         cfg.Admin.Name,
		UpdatedAt:    time.Now(),
	}

	if err := repo.Put(cred); err != nil {
		logger.Fatalf("Failed to store admin credential: %v", err)
	}

	logger.WithField("username", cred.Username).Info("Admin credential seeded")
}
